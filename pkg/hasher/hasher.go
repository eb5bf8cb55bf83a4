package hasher

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
)

// CalculateHash 以固定大小的块流式读取文件，返回十六进制摘要
func CalculateHash(fs afero.Fs, filePath string, algo Algorithm) (string, error) {
	h, err := algo.New()
	if err != nil {
		return "", err
	}

	file, err := fs.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开文件失败 %s: %w", filePath, joinIO(err))
	}
	defer file.Close()

	buf := make([]byte, internal.HashChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{file}, buf); err != nil {
		return "", fmt.Errorf("计算哈希失败 %s: %w", filePath, joinIO(err))
	}

	digest := hex.EncodeToString(h.Sum(nil))
	logger.Get().Trace().Msgf("文件哈希计算完成: %s -> %s", filePath, digest)
	return digest, nil
}

// onlyReader 隐藏 WriterTo/ReaderFrom，保证 CopyBuffer 使用我们的缓冲区
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}

func joinIO(err error) error {
	return fmt.Errorf("%w: %w", internal.ErrIO, err)
}
