package dhc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// createCompressor creates a compressor for the specified lossless algorithm
func createCompressor(algo AlgorithmID, w io.Writer, level int) (io.WriteCloser, error) {
	switch algo {
	case AlgorithmLZGeneric:
		return createZlibCompressor(w, level)
	case AlgorithmLZDictionary:
		return createBrotliCompressor(w, level)
	case AlgorithmLZMALike:
		return createXZCompressor(w)
	case AlgorithmZstd:
		return createZstdCompressor(w, level)
	case AlgorithmLZ4:
		return createLZ4Compressor(w, level)
	case AlgorithmSnappy:
		return createSnappyCompressor(w)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

// createDecompressor creates a decompressor for the specified lossless algorithm
func createDecompressor(algo AlgorithmID, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmLZGeneric:
		return zlib.NewReader(r)
	case AlgorithmLZDictionary:
		return io.NopCloser(brotli.NewReader(r)), nil
	case AlgorithmLZMALike:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case AlgorithmZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case AlgorithmLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

func createZlibCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	switch {
	case level == 0:
		level = zlib.DefaultCompression
	case level > zlib.BestCompression:
		level = zlib.BestCompression
	}
	return zlib.NewWriterLevel(w, level)
}

func createBrotliCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	switch {
	case level == 0:
		level = brotli.DefaultCompression
	case level > brotli.BestCompression:
		level = brotli.BestCompression
	}
	return brotli.NewWriterLevel(w, level), nil
}

// xz has presets but the writer exposes no level knob worth mapping
func createXZCompressor(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

func createZstdCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	encLevel := zstd.SpeedDefault
	if level > 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(encLevel))
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func createLZ4Compressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level < 0 {
		level = 0
	}
	if level >= len(lz4Levels) {
		level = len(lz4Levels) - 1
	}
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return zw, nil
}

func createSnappyCompressor(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

// compressBytes runs data through the algorithm's streaming compressor
func compressBytes(algo AlgorithmID, data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	compressor, err := createCompressor(algo, &buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := compressor.Write(data); err != nil {
		compressor.Close()
		return nil, err
	}
	if err := compressor.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePayload checks the payload's magic bytes and decompresses it. An
// empty payload is empty data: snappy writes nothing for empty input.
func decodePayload(algo AlgorithmID, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return []byte{}, nil
	}
	if !hasCompressionMagic(algo, payload) {
		return nil, unsupportedPayload(algo, nil)
	}
	data, err := decompressBytes(algo, payload)
	if err != nil {
		return nil, unsupportedPayload(algo, err)
	}
	return data, nil
}

// decompressBytes reverses compressBytes
func decompressBytes(algo AlgorithmID, payload []byte) ([]byte, error) {
	decompressor, err := createDecompressor(algo, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()
	return io.ReadAll(decompressor)
}
