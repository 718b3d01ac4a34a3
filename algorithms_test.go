package dhc

import (
	"bytes"
	"errors"
	"testing"
)

// Test all lossless algorithms with the same data
func TestAllAlgorithms(t *testing.T) {
	testData := []byte("Hello, World! This is test data for compression algorithms. " +
		"Let's make it a bit longer to get better compression ratios. " +
		"Compression is the process of encoding information using fewer bits than the original representation.")

	algorithms := []struct {
		name  string
		algo  AlgorithmID
		level int
	}{
		{"lz-generic-default", AlgorithmLZGeneric, 0},
		{"lz-generic-level1", AlgorithmLZGeneric, 1},
		{"lz-generic-level9", AlgorithmLZGeneric, 9},
		{"lz-generic-clamped", AlgorithmLZGeneric, 22},
		{"lz-dictionary-default", AlgorithmLZDictionary, 0},
		{"lz-dictionary-level11", AlgorithmLZDictionary, 11},
		{"lzma-like", AlgorithmLZMALike, 0},
		{"zstd-default", AlgorithmZstd, 0},
		{"zstd-level3", AlgorithmZstd, 3},
		{"zstd-level19", AlgorithmZstd, 19},
		{"lz4-default", AlgorithmLZ4, 0},
		{"lz4-level9", AlgorithmLZ4, 9},
		{"lz4-clamped", AlgorithmLZ4, 22},
		{"snappy", AlgorithmSnappy, 0},
	}

	for _, tt := range algorithms {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := compressBytes(tt.algo, testData, tt.level)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}
			if !hasCompressionMagic(tt.algo, compressed) {
				t.Errorf("Payload does not start with %s magic", tt.algo)
			}

			readData, err := decodePayload(tt.algo, compressed)
			if err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}
			if !bytes.Equal(readData, testData) {
				t.Fatalf("Decompressed data does not match.\nExpected length: %d, Got length: %d",
					len(testData), len(readData))
			}
		})
	}
}

func TestLargeDataCompression(t *testing.T) {
	// Create large test data (1MB)
	testData := make([]byte, 1024*1024)
	for i := range testData {
		testData[i] = byte(i % 256)
	}

	for _, algo := range Algorithms() {
		if !algo.Lossless() {
			continue
		}
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := compressBytes(algo, testData, 0)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}
			if len(compressed) >= len(testData) {
				t.Errorf("Expected %s to shrink repetitive data, got %d bytes", algo, len(compressed))
			}
			readData, err := decodePayload(algo, compressed)
			if err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}
			if !bytes.Equal(readData, testData) {
				t.Fatalf("Large data mismatch. Expected %d bytes, got %d bytes", len(testData), len(readData))
			}
		})
	}
}

func TestEmptyDataCompression(t *testing.T) {
	for _, algo := range Algorithms() {
		if !algo.Lossless() {
			continue
		}
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := compressBytes(algo, nil, 0)
			if err != nil {
				t.Fatalf("Failed to compress empty data: %v", err)
			}
			readData, err := decodePayload(algo, compressed)
			if err != nil {
				t.Fatalf("Failed to decompress empty data: %v", err)
			}
			if len(readData) != 0 {
				t.Fatalf("Expected empty data, got %d bytes", len(readData))
			}
		})
	}
}

func TestCorruptPayload(t *testing.T) {
	garbage := []byte("this is not a compressed stream of any kind")

	// brotli has no magic bytes to reject garbage up front
	for _, algo := range []AlgorithmID{AlgorithmLZGeneric, AlgorithmLZMALike, AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy} {
		t.Run(algo.String(), func(t *testing.T) {
			_, err := decodePayload(algo, garbage)
			if !errors.Is(err, ErrUnsupportedPayload) {
				t.Fatalf("Expected ErrUnsupportedPayload, got %v", err)
			}
		})
	}
}

func TestTruncatedPayload(t *testing.T) {
	testData := bytes.Repeat([]byte("truncate me please "), 200)

	for _, algo := range []AlgorithmID{AlgorithmLZGeneric, AlgorithmLZMALike, AlgorithmZstd} {
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := compressBytes(algo, testData, 0)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}
			_, err = decodePayload(algo, compressed[:len(compressed)/2])
			if !errors.Is(err, ErrUnsupportedPayload) {
				t.Fatalf("Expected ErrUnsupportedPayload, got %v", err)
			}
		})
	}
}

func TestCreateCompressorRejectsNonLossless(t *testing.T) {
	for _, algo := range []AlgorithmID{AlgorithmAuto, AlgorithmJPEG, AlgorithmMP3} {
		var buf bytes.Buffer
		if _, err := createCompressor(algo, &buf, 0); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("createCompressor(%s): expected ErrUnsupportedAlgorithm, got %v", algo, err)
		}
		if _, err := createDecompressor(algo, &buf); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("createDecompressor(%s): expected ErrUnsupportedAlgorithm, got %v", algo, err)
		}
	}
}

func TestDetectCompression(t *testing.T) {
	testData := []byte("detect me")
	for _, algo := range []AlgorithmID{AlgorithmLZGeneric, AlgorithmLZMALike, AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy} {
		compressed, err := compressBytes(algo, testData, 0)
		if err != nil {
			t.Fatalf("Failed to compress with %s: %v", algo, err)
		}
		got, ok := DetectCompression(compressed)
		if !ok || got != algo {
			t.Errorf("DetectCompression(%s payload) = %s, %v", algo, got, ok)
		}
	}

	if _, ok := DetectCompression([]byte("plain text")); ok {
		t.Error("Expected plain text not to be detected as compressed")
	}
}
