package ssl

import "sync"

// 返回值约定，与嵌入式TLS库的返回值保持一致
const (
	Success    = 1
	Failure    = 0
	FatalError = -1
)

// LibraryStats 全局库状态的统计信息
type LibraryStats struct {
	Inits    int
	Cleanups int
	Active   bool
}

var library struct {
	mu    sync.Mutex
	refs  int
	stats LibraryStats
}

// Init 初始化库的全局状态，可重复调用，每次调用都需要对应一次Cleanup
func Init() int {
	library.mu.Lock()
	defer library.mu.Unlock()

	library.refs++
	library.stats.Inits++
	library.stats.Active = true
	return Success
}

// Cleanup 释放一次Init，最后一次释放时关闭全局状态
func Cleanup() int {
	library.mu.Lock()
	defer library.mu.Unlock()

	if library.refs == 0 {
		return Failure
	}
	library.refs--
	if library.refs == 0 {
		library.stats.Cleanups++
		library.stats.Active = false
	}
	return Success
}

// Stats 返回全局状态的快照
func Stats() LibraryStats {
	library.mu.Lock()
	defer library.mu.Unlock()
	return library.stats
}
