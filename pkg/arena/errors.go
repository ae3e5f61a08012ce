package arena

import "errors"

var (
	ErrExhausted   = errors.New("arena exhausted")
	ErrTooLarge    = errors.New("allocation larger than io block")
	ErrInvalidSize = errors.New("invalid allocation size")
	ErrNotOwned    = errors.New("buffer not owned by arena")
)
