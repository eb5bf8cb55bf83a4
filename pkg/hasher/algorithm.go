package hasher

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"

	"github.com/Yuvraj-cyborg/deduck/internal"
)

// Algorithm 哈希算法。同一次运行只使用一种算法，不同算法的摘要不可比较。
type Algorithm int

const (
	// XXHash 非加密快速哈希，只作为候选过滤（快速模式）
	XXHash Algorithm = iota
	// BLAKE3 加密哈希，默认的普通模式
	BLAKE3
	// SHA256 强加密哈希，深度模式
	SHA256
)

func (a Algorithm) String() string {
	switch a {
	case XXHash:
		return "xxhash"
	case BLAKE3:
		return "blake3"
	case SHA256:
		return "sha256"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case XXHash:
		return xxhash.New(), nil
	case BLAKE3:
		return blake3.New(32, nil), nil
	case SHA256:
		return sha256.New(), nil
	}
	return nil, fmt.Errorf("%s: %w", a, internal.ErrUnknownAlgorithm)
}

// AlgorithmForMode 扫描模式到哈希算法的映射
func AlgorithmForMode(mode internal.ScanMode) (Algorithm, error) {
	switch mode {
	case internal.ScanQuick:
		return XXHash, nil
	case internal.ScanNormal:
		return BLAKE3, nil
	case internal.ScanDeep:
		return SHA256, nil
	}
	return 0, fmt.Errorf("scan mode %d: %w", int(mode), internal.ErrUnknownAlgorithm)
}
