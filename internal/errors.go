package internal

import "errors"

var (
	// ErrNotFound 根目录或隔离目录不存在
	ErrNotFound = errors.New("not found")

	// ErrIO 单个文件的 stat/open/read/rename 失败
	ErrIO = errors.New("io error")

	// ErrConfigMissing 需要的持久化配置不存在
	ErrConfigMissing = errors.New("config missing")

	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

	ErrCancelled = errors.New("cancelled")
)
