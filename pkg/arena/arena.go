package arena

const (
	// IOBlockSize 固定I/O池中每一块的大小，能容纳一个最大长度的TLS记录及其开销
	IOBlockSize = 16992

	DefaultGeneralSize = 1024 * 256
	DefaultIOSize      = 1024 * 72
)

// Flag 内存池的属性
type Flag uint8

const (
	IOPoolFixed Flag = 1 << iota // 按IOBlockSize划分成固定大小的块
	TrackStats                   // 记录使用情况
)

func (f Flag) String() string {
	switch f {
	case 0:
		return "General"
	case IOPoolFixed:
		return "IOPoolFixed"
	case TrackStats:
		return "TrackStats"
	case IOPoolFixed | TrackStats:
		return "IOPoolFixed|TrackStats"
	default:
		return "Invalid Flag"
	}
}

// Stats 内存池使用情况，只有设置了TrackStats才会更新
type Stats struct {
	TotalAllocs  int
	TotalFrees   int
	Failures     int
	CurrentBytes int
	PeakBytes    int
}

// span 已分配的区间，按offset升序保存
type span struct {
	offset int
	length int
}

// Arena 预先分配的固定大小内存区域，整个生命周期内不会再向堆申请内存，非线程安全
type Arena struct {
	buf   []byte
	flags Flag
	spans []span
	stats Stats
}

// New 创建大小为size的内存池
func New(size int, flags Flag) *Arena {
	if size < 0 {
		size = 0
	}
	return &Arena{
		buf:   make([]byte, size),
		flags: flags,
	}
}

// Cap 内存池总容量
func (a *Arena) Cap() int {
	return len(a.buf)
}

func (a *Arena) Flags() Flag {
	return a.flags
}

// Fixed 是否是固定块大小的I/O池
func (a *Arena) Fixed() bool {
	return a.flags&IOPoolFixed != 0
}

// Blocks 固定I/O池的块数，通用池返回0
func (a *Arena) Blocks() int {
	if !a.Fixed() {
		return 0
	}
	return len(a.buf) / IOBlockSize
}

// InUse 当前已分配的字节数（固定池按整块计算）
func (a *Arena) InUse() int {
	n := 0
	for _, s := range a.spans {
		n += s.length
	}
	return n
}

// Stats 返回使用情况的快照
func (a *Arena) Stats() Stats {
	return a.stats
}

// Alloc 从内存池中分配n字节，返回的切片容量被限制为n，不会越界写到相邻的分配区间
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}

	var (
		offset, length int
		err            error
	)
	if a.Fixed() {
		offset, length, err = a.allocBlock(n)
	} else {
		offset, length, err = a.allocFirstFit(n)
	}
	if err != nil {
		a.track(func(s *Stats) { s.Failures++ })
		return nil, err
	}

	b := a.buf[offset : offset+n : offset+n]
	for i := range b {
		b[i] = 0
	}
	a.track(func(s *Stats) {
		s.TotalAllocs++
		s.CurrentBytes += length
		if s.CurrentBytes > s.PeakBytes {
			s.PeakBytes = s.CurrentBytes
		}
	})
	return b, nil
}

// Free 归还Alloc返回的切片
func (a *Arena) Free(b []byte) error {
	if len(b) == 0 {
		return ErrNotOwned
	}
	for i, s := range a.spans {
		if &a.buf[s.offset] == &b[0] {
			a.spans = append(a.spans[:i], a.spans[i+1:]...)
			a.track(func(st *Stats) {
				st.TotalFrees++
				st.CurrentBytes -= s.length
			})
			return nil
		}
	}
	return ErrNotOwned
}

// Reset 释放所有分配，统计信息保留
func (a *Arena) Reset() {
	a.spans = a.spans[:0]
	a.track(func(s *Stats) { s.CurrentBytes = 0 })
}

func (a *Arena) allocBlock(n int) (int, int, error) {
	if n > IOBlockSize {
		return 0, 0, ErrTooLarge
	}
	// spans按offset有序，第一个空出来的块号就是可用块
	next := 0
	for i, s := range a.spans {
		if s.offset != next*IOBlockSize {
			break
		}
		next = i + 1
	}
	if next >= a.Blocks() {
		return 0, 0, ErrExhausted
	}
	a.insert(next, span{offset: next * IOBlockSize, length: IOBlockSize})
	return next * IOBlockSize, IOBlockSize, nil
}

func (a *Arena) allocFirstFit(n int) (int, int, error) {
	prev := 0
	for i, s := range a.spans {
		if s.offset-prev >= n {
			a.insert(i, span{offset: prev, length: n})
			return prev, n, nil
		}
		prev = s.offset + s.length
	}
	if len(a.buf)-prev < n {
		return 0, 0, ErrExhausted
	}
	a.spans = append(a.spans, span{offset: prev, length: n})
	return prev, n, nil
}

func (a *Arena) insert(i int, s span) {
	a.spans = append(a.spans, span{})
	copy(a.spans[i+1:], a.spans[i:])
	a.spans[i] = s
}

func (a *Arena) track(fn func(*Stats)) {
	if a.flags&TrackStats != 0 {
		fn(&a.stats)
	}
}
