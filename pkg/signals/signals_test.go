package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	stop := make(chan struct{})
	ctx := Context(stop)
	assert.NoError(t, ctx.Err())

	close(stop)
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after stop")
	}
}
