package internal

import "runtime"

const (
	// 配置目录名，位于用户主目录下
	ConfigDirName = ".deduck"

	// 隔离目录名，位于扫描根目录下
	QuarantineDirName = ".deduck_quarantine"

	// 隔离记录数据库默认路径
	DefaultDatabasePath = "~/.deduck/ledger.db"

	// 键值存储默认目录
	DefaultStoreDir = "~/.deduck"

	// 哈希读取缓冲区大小
	HashChunkSize = 8192

	// 默认相似度阈值（汉明距离）
	DefaultSimilarityThreshold = 10

	// 缓冲区大小
	DefaultBufferSize = 1000
)

// DefaultWorkers 默认工作线程数
var DefaultWorkers = runtime.NumCPU()

// DefaultExtensions 默认参与去重的文件扩展名
var DefaultExtensions = []string{"pdf", "png", "txt", "doc", "xlsx", "jpeg", "jpg"}

// DefaultImageExtensions 参与相似度比对的图片扩展名
var DefaultImageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff"}
