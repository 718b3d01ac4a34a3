package dhc

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		text   AlgorithmID
	}{
		{"Fastest", FastestConfig(), AlgorithmLZ4},
		{"Recommended", RecommendedConfig(), AlgorithmAuto},
		{"BestCompression", BestCompressionConfig(), AlgorithmLZDictionary},
		{"Compatible", CompatibleConfig(), AlgorithmLZGeneric},
		{"LowCPU", LowCPUConfig(), AlgorithmSnappy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.config == nil {
				t.Fatal("Config is nil")
			}
			if tt.config.TextAlgorithm != tt.text {
				t.Errorf("Expected text algorithm %s, got %s", tt.text, tt.config.TextAlgorithm)
			}
			if _, err := New(NewMemFS(), tt.config); err != nil {
				t.Errorf("Preset does not validate: %v", err)
			}
		})
	}
}

func TestNewWithPresets(t *testing.T) {
	tests := []struct {
		name   string
		create func(FileSystem) (*Archiver, error)
	}{
		{"Recommended", NewWithRecommendedConfig},
		{"Fastest", NewWithFastestConfig},
		{"BestCompression", NewWithBestCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := NewMemFS()
			a, err := tt.create(fsys)
			if err != nil {
				t.Fatalf("Failed to create archiver: %v", err)
			}

			data := make([]byte, 2048)
			for i := range data {
				data[i] = byte('a' + i%26)
			}
			putFile(t, fsys, "in/data.txt", data)

			archive, err := a.Compress("in")
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}
			if err := a.Decompress(archive, "out"); err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}
			if got := mustRead(t, fsys, "out/data.txt"); !bytes.Equal(got, data) {
				t.Fatal("Data mismatch")
			}
			if ratio := a.GetStats().CompressionRatio(); ratio <= 0 || ratio >= 1 {
				t.Errorf("Expected ratio in (0, 1), got %f", ratio)
			}
		})
	}
}

func TestCompressBytes(t *testing.T) {
	data := bytes.Repeat([]byte("Test data for CompressBytes. "), 20)

	for _, algo := range []AlgorithmID{AlgorithmLZGeneric, AlgorithmZstd, AlgorithmSnappy} {
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := CompressBytes(data, algo, 0)
			if err != nil {
				t.Fatalf("CompressBytes failed: %v", err)
			}
			if len(compressed) >= len(data) {
				t.Errorf("Compressed size (%d) should be smaller than original (%d)", len(compressed), len(data))
			}
			decompressed, err := DecompressBytes(compressed, algo)
			if err != nil {
				t.Fatalf("DecompressBytes failed: %v", err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Error("Decompressed data doesn't match original")
			}
		})
	}

	if _, err := CompressBytes(data, AlgorithmPNG, 0); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := DecompressBytes(data, AlgorithmWebP); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestCompressBytesNegativeLevel(t *testing.T) {
	data := bytes.Repeat([]byte("negative level "), 10)

	for _, algo := range Algorithms() {
		if !algo.Lossless() {
			continue
		}
		t.Run(algo.String(), func(t *testing.T) {
			if _, err := CompressBytes(data, algo, -1); !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("Expected ErrInvalidLevel, got %v", err)
			}
		})
	}

	// Levels below the table clamp to the fastest setting
	compressed, err := compressBytes(AlgorithmLZ4, data, -5)
	if err != nil {
		t.Fatalf("Failed to compress with negative lz4 level: %v", err)
	}
	decompressed, err := decompressBytes(AlgorithmLZ4, compressed)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("Decompressed data doesn't match original")
	}
}

func TestGetCompressionRatio(t *testing.T) {
	tests := []struct {
		original   int64
		compressed int64
		ratio      float64
		percentage float64
	}{
		{1000, 500, 0.5, 50},
		{1000, 250, 0.25, 75},
		{1000, 1000, 1, 0},
		{0, 0, 0, 0},
	}

	for _, tt := range tests {
		if got := GetCompressionRatio(tt.original, tt.compressed); math.Abs(got-tt.ratio) > 1e-9 {
			t.Errorf("GetCompressionRatio(%d, %d) = %f, want %f", tt.original, tt.compressed, got, tt.ratio)
		}
		if got := GetCompressionPercentage(tt.original, tt.compressed); math.Abs(got-tt.percentage) > 1e-9 {
			t.Errorf("GetCompressionPercentage(%d, %d) = %f, want %f", tt.original, tt.compressed, got, tt.percentage)
		}
	}
}

func TestDefaultPaths(t *testing.T) {
	if got, want := DefaultArchivePath(filepath.FromSlash("photos/")), "photos.dhc"; got != want {
		t.Errorf("DefaultArchivePath = %q, want %q", got, want)
	}
	if got, want := DefaultOutputRoot("photos.dhc"), "photos"; got != want {
		t.Errorf("DefaultOutputRoot = %q, want %q", got, want)
	}
	if got, want := DefaultOutputRoot("backup.bin"), "backup.bin.out"; got != want {
		t.Errorf("DefaultOutputRoot = %q, want %q", got, want)
	}
	if got, want := DefaultOutputRoot(".dhc"), ".dhc.out"; got != want {
		t.Errorf("DefaultOutputRoot = %q, want %q", got, want)
	}
}
