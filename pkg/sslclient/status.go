package sslclient

// 各阶段函数的返回值
const (
	ExitSuccess = 0
	ExitFailure = 1
)
