package serialize

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Whole-payload compression. A single shared encoder/decoder pair is
// enough: EncodeAll/DecodeAll are safe for concurrent use.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func zstdInit() {
	zstdOnce.Do(func() {
		zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		zstdDecoder, _ = zstd.NewReader(nil)
	})
}

func compress(data []byte) []byte {
	zstdInit()
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)))
}

func decompress(data []byte) ([]byte, error) {
	zstdInit()
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}
	return out, nil
}
