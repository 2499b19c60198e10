// Package compression adds transparent zstd compression to a da.BlobStore.
//
// Every published blob is prefixed with a 9 byte header: one flag byte
// followed by the little endian original size. Blobs that do not shrink by at
// least MinCompressionRatio are stored uncompressed behind the same header.
package compression

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/evstack/zerog-da/da"
)

// Compression constants
const (
	// CompressionHeaderSize is the size of the compression metadata header
	CompressionHeaderSize = 9 // 1 byte flags + 8 bytes original size

	// DefaultZstdLevel is the zstd level used when none is configured.
	DefaultZstdLevel = 3

	// Flags
	FlagUncompressed = 0x00
	FlagZstd         = 0x01

	// Default minimum compression ratio threshold (10% savings)
	DefaultMinCompressionRatio = 0.1

	// MaxDecompressedSize bounds the original size a header may claim and
	// the memory a single decode may use.
	MaxDecompressedSize = 1 << 30

	// maxPreallocRatio caps the up-front allocation relative to the payload;
	// the decoder grows the buffer past it when the data really is that large.
	maxPreallocRatio = 16
)

var (
	ErrInvalidHeader          = errors.New("invalid compression header")
	ErrInvalidCompressionFlag = errors.New("invalid compression flag")
	ErrDecompressionFailed    = errors.New("decompression failed")
)

// Config holds compression configuration
type Config struct {
	// Enabled controls whether compression is active
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// ZstdLevel is the compression level for zstd (1-22, default 3)
	ZstdLevel int `mapstructure:"zstd_level" yaml:"zstd_level"`

	// MinCompressionRatio is the minimum compression ratio required to store compressed data
	// If compression doesn't achieve this ratio, original data is stored uncompressed
	MinCompressionRatio float64 `mapstructure:"min_compression_ratio" yaml:"min_compression_ratio"`
}

// DefaultConfig returns a configuration optimized for zstd level 3
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		ZstdLevel:           DefaultZstdLevel,
		MinCompressionRatio: DefaultMinCompressionRatio,
	}
}

// Validate checks the level and ratio bounds.
func (c Config) Validate() error {
	if c.ZstdLevel < 1 || c.ZstdLevel > 22 {
		return fmt.Errorf("zstd level must be between 1 and 22, got %d", c.ZstdLevel)
	}
	if c.MinCompressionRatio < 0 || c.MinCompressionRatio >= 1 {
		return fmt.Errorf("min compression ratio must be in [0, 1), got %f", c.MinCompressionRatio)
	}
	return nil
}

// encoder/decoder reuse across CompressibleDA instances
var (
	poolsMu      sync.Mutex
	encoderPools = make(map[int]*sync.Pool)
	decoderPool  = &sync.Pool{
		New: func() interface{} {
			decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressedSize))
			if err != nil {
				// This should not happen
				panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
			}
			return decoder
		},
	}
)

// encoderPool returns the pool for the given level, creating it on first use.
func encoderPool(level int) *sync.Pool {
	poolsMu.Lock()
	defer poolsMu.Unlock()

	pool, ok := encoderPools[level]
	if !ok {
		pool = &sync.Pool{
			New: func() interface{} {
				encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
				if err != nil {
					panic(fmt.Sprintf("failed to create zstd encoder with level %d: %v", level, err))
				}
				return encoder
			},
		}
		encoderPools[level] = pool
	}
	return pool
}

var _ da.BlobStore = (*CompressibleDA)(nil)

// CompressibleDA wraps a BlobStore to add transparent compression support.
// Verify is passed through untouched since keys are not affected.
type CompressibleDA struct {
	base   da.BlobStore
	config Config
}

// NewCompressibleDA creates a new CompressibleDA wrapper. base may be nil when
// only the compression helpers are used.
func NewCompressibleDA(base da.BlobStore, config Config) (*CompressibleDA, error) {
	if config.Enabled {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid compression config: %w", err)
		}
	}
	return &CompressibleDA{base: base, config: config}, nil
}

// Publish compresses blob and publishes the result.
func (c *CompressibleDA) Publish(ctx context.Context, blob da.Blob) (string, error) {
	compressed, err := c.compressBlob(blob)
	if err != nil {
		return "", err
	}
	return c.base.Publish(ctx, compressed)
}

// Verify delegates to the wrapped store.
func (c *CompressibleDA) Verify(ctx context.Context, key string) (da.VerificationStatus, error) {
	return c.base.Verify(ctx, key)
}

// Retrieve fetches the blob and restores its original bytes.
func (c *CompressibleDA) Retrieve(ctx context.Context, key string) (da.Blob, error) {
	blob, err := c.base.Retrieve(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.decompressBlob(blob)
}

// compressBlob compresses a single blob using zstd
func (c *CompressibleDA) compressBlob(blob da.Blob) (da.Blob, error) {
	if !c.config.Enabled || len(blob) == 0 {
		return addCompressionHeader(blob, FlagUncompressed, uint64(len(blob))), nil
	}

	pool := encoderPool(c.config.ZstdLevel)
	encoder := pool.Get().(*zstd.Encoder)
	compressed := encoder.EncodeAll(blob, make([]byte, 0, len(blob)))
	pool.Put(encoder)

	// Check if compression is beneficial
	compressionRatio := float64(len(compressed)) / float64(len(blob))
	if compressionRatio > (1.0 - c.config.MinCompressionRatio) {
		return addCompressionHeader(blob, FlagUncompressed, uint64(len(blob))), nil
	}

	return addCompressionHeader(compressed, FlagZstd, uint64(len(blob))), nil
}

// decompressBlob decompresses a single blob
func (c *CompressibleDA) decompressBlob(blob da.Blob) (da.Blob, error) {
	flag, originalSize, payload, err := parseCompressionHeader(blob)
	if err != nil {
		return nil, err
	}

	switch flag {
	case FlagUncompressed:
		if uint64(len(payload)) != originalSize {
			return nil, fmt.Errorf("%w: size %d does not match payload %d", ErrInvalidHeader, originalSize, len(payload))
		}
		return payload, nil
	case FlagZstd:
		if !c.config.Enabled {
			return nil, errors.New("received compressed blob but compression is disabled")
		}

		if originalSize > MaxDecompressedSize {
			return nil, fmt.Errorf("%w: original size %d exceeds %d", ErrInvalidHeader, originalSize, MaxDecompressedSize)
		}

		decoder := decoderPool.Get().(*zstd.Decoder)
		decompressed, err := decoder.DecodeAll(payload, make([]byte, 0, min(originalSize, uint64(len(payload))*maxPreallocRatio)))
		decoderPool.Put(decoder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
		}

		if uint64(len(decompressed)) != originalSize {
			return nil, fmt.Errorf("decompressed size mismatch: expected %d, got %d", originalSize, len(decompressed))
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("%w: flag %d", ErrInvalidCompressionFlag, flag)
	}
}

// addCompressionHeader adds compression metadata to the blob
func addCompressionHeader(payload da.Blob, flag uint8, originalSize uint64) da.Blob {
	// Single allocation for header + payload
	result := make([]byte, CompressionHeaderSize+len(payload))
	result[0] = flag
	binary.LittleEndian.PutUint64(result[1:9], originalSize)
	copy(result[CompressionHeaderSize:], payload)
	return result
}

// parseCompressionHeader extracts compression metadata from a blob
func parseCompressionHeader(blob da.Blob) (uint8, uint64, da.Blob, error) {
	if len(blob) < CompressionHeaderSize {
		return 0, 0, nil, ErrInvalidHeader
	}

	flag := blob[0]
	originalSize := binary.LittleEndian.Uint64(blob[1:9])
	payload := blob[CompressionHeaderSize:]

	if flag != FlagUncompressed && flag != FlagZstd {
		return 0, 0, nil, fmt.Errorf("%w: flag %d", ErrInvalidCompressionFlag, flag)
	}

	return flag, originalSize, payload, nil
}

// CompressionInfo provides information about a blob's compression
type CompressionInfo struct {
	IsCompressed     bool
	Algorithm        string
	OriginalSize     uint64
	CompressedSize   uint64
	CompressionRatio float64
}

// GetCompressionInfo analyzes a blob to determine its compression status
func GetCompressionInfo(blob da.Blob) CompressionInfo {
	info := CompressionInfo{
		Algorithm:      "none",
		OriginalSize:   uint64(len(blob)),
		CompressedSize: uint64(len(blob)),
	}

	flag, originalSize, payload, err := parseCompressionHeader(blob)
	if err != nil {
		return info
	}

	info.OriginalSize = originalSize
	info.CompressedSize = uint64(len(payload))
	if flag == FlagZstd {
		info.IsCompressed = true
		info.Algorithm = "zstd"
		if originalSize > 0 {
			info.CompressionRatio = float64(len(payload)) / float64(originalSize)
		}
	}
	return info
}
