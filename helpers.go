package dhc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extension is the conventional suffix of a dhc archive
const Extension = ".dhc"

// Preset configurations for common use cases

// FastestConfig returns a configuration optimized for speed
func FastestConfig() *Config {
	c := DefaultConfig()
	c.TextAlgorithm = AlgorithmLZ4
	c.Checksums = false
	return c
}

// RecommendedConfig returns the recommended configuration for general use:
// registry selection with checksums
func RecommendedConfig() *Config {
	return DefaultConfig()
}

// BestCompressionConfig returns a configuration optimized for maximum compression
// Use for write-once/read-many archives
func BestCompressionConfig() *Config {
	c := DefaultConfig()
	c.TextAlgorithm = AlgorithmLZDictionary
	c.Level = 11
	return c
}

// CompatibleConfig returns a configuration whose text entries any zlib
// reader can inflate
func CompatibleConfig() *Config {
	c := DefaultConfig()
	c.TextAlgorithm = AlgorithmLZGeneric
	c.Level = 6
	return c
}

// LowCPUConfig returns a configuration optimized for low CPU usage
func LowCPUConfig() *Config {
	c := DefaultConfig()
	c.TextAlgorithm = AlgorithmSnappy
	c.Workers = 1
	return c
}

// NewWithRecommendedConfig creates an archiver with recommended settings
func NewWithRecommendedConfig(fsys FileSystem) (*Archiver, error) {
	return New(fsys, RecommendedConfig())
}

// NewWithFastestConfig creates an archiver optimized for speed
func NewWithFastestConfig(fsys FileSystem) (*Archiver, error) {
	return New(fsys, FastestConfig())
}

// NewWithBestCompression creates an archiver optimized for compression ratio
func NewWithBestCompression(fsys FileSystem) (*Archiver, error) {
	return New(fsys, BestCompressionConfig())
}

// Compress archives the file or directory at inputPath on the host
// filesystem with the default configuration
func Compress(inputPath string) ([]byte, error) {
	a, err := New(nil, nil)
	if err != nil {
		return nil, err
	}
	return a.Compress(inputPath)
}

// Decompress restores archive under outputRoot on the host filesystem with
// the default configuration
func Decompress(archive []byte, outputRoot string) error {
	a, err := New(nil, nil)
	if err != nil {
		return err
	}
	return a.Decompress(archive, outputRoot)
}

// CompressBytes compresses a byte slice with a lossless algorithm and level
// (0-22, 0 selects the algorithm default)
func CompressBytes(data []byte, algo AlgorithmID, level int) ([]byte, error) {
	if level < 0 || level > 22 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return compressBytes(algo, data, level)
}

// DecompressBytes decompresses a byte slice produced by CompressBytes
func DecompressBytes(data []byte, algo AlgorithmID) ([]byte, error) {
	if !algo.Lossless() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
	return decodePayload(algo, data)
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
// E.g., 0.5 means the compressed size is 50% of the original
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the percentage of space saved (0-100)
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}

// DefaultArchivePath returns the archive path used when none is given:
// the input with a trailing separator removed and Extension appended
func DefaultArchivePath(inputPath string) string {
	return filepath.Clean(inputPath) + Extension
}

// DefaultOutputRoot returns the directory an archive is restored into when
// none is given: the archive path without Extension, or with ".out"
// appended if it has no such suffix
func DefaultOutputRoot(archivePath string) string {
	if trimmed, ok := strings.CutSuffix(archivePath, Extension); ok && trimmed != "" {
		return trimmed
	}
	return archivePath + ".out"
}
