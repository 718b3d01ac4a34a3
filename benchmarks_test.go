package dhc

import (
	"fmt"
	"testing"
)

// Benchmark data generators
func generateTestData(size int) []byte {
	// Generate semi-compressible data (mix of patterns and random)
	data := make([]byte, size)
	for i := range data {
		if i%4 == 0 {
			data[i] = byte(i % 256)
		} else {
			data[i] = byte(i % 64) // More repetitive for better compression
		}
	}
	return data
}

func generateHighlyCompressibleData(size int) []byte {
	// Generate highly compressible data (lots of repetition)
	data := make([]byte, size)
	pattern := []byte("The quick brown fox jumps over the lazy dog. ")
	for i := range data {
		data[i] = pattern[i%len(pattern)]
	}
	return data
}

func generateIncompressibleData(size int) []byte {
	// Generate pseudo-random data (hard to compress)
	data := make([]byte, size)
	seed := uint64(12345)
	for i := range data {
		seed = seed*1103515245 + 12345
		data[i] = byte(seed >> 16)
	}
	data[0] = 'x' // keep it classified as text
	return data
}

// Benchmark codec encode
func benchmarkEncode(b *testing.B, algo AlgorithmID, level int, data []byte) {
	config := DefaultConfig()
	config.Level = level
	if err := config.validate(); err != nil {
		b.Fatal(err)
	}
	table := NewCodecTable(config)

	b.ResetTimer()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if _, _, err := table.Encode(algo, data); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark codec decode
func benchmarkDecode(b *testing.B, algo AlgorithmID, level int, data []byte) {
	config := DefaultConfig()
	config.Level = level
	if err := config.validate(); err != nil {
		b.Fatal(err)
	}
	table := NewCodecTable(config)
	payload, meta, err := table.Encode(algo, data)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if _, err := table.Decode(payload, meta); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLosslessEncode(b *testing.B) {
	for _, size := range []int{4 * 1024, 256 * 1024, 1024 * 1024} {
		data := generateTestData(size)
		for _, algo := range Algorithms() {
			if !algo.Lossless() {
				continue
			}
			b.Run(fmt.Sprintf("%s/%dKB", algo, size/1024), func(b *testing.B) {
				benchmarkEncode(b, algo, 0, data)
			})
		}
	}
}

func BenchmarkLosslessDecode(b *testing.B) {
	for _, size := range []int{4 * 1024, 256 * 1024, 1024 * 1024} {
		data := generateTestData(size)
		for _, algo := range Algorithms() {
			if !algo.Lossless() {
				continue
			}
			b.Run(fmt.Sprintf("%s/%dKB", algo, size/1024), func(b *testing.B) {
				benchmarkDecode(b, algo, 0, data)
			})
		}
	}
}

// Level comparison benchmarks
func BenchmarkZstdLevel1Encode1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmZstd, 1, generateTestData(1024*1024))
}
func BenchmarkZstdLevel9Encode1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmZstd, 9, generateTestData(1024*1024))
}
func BenchmarkLZGenericLevel1Encode1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZGeneric, 1, generateTestData(1024*1024))
}
func BenchmarkLZGenericLevel9Encode1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZGeneric, 9, generateTestData(1024*1024))
}
func BenchmarkLZDictionaryLevel11Encode1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZDictionary, 11, generateTestData(1024*1024))
}

// Data type benchmarks
func BenchmarkLZGenericHighlyCompressible1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZGeneric, 0, generateHighlyCompressibleData(1024*1024))
}
func BenchmarkLZGenericIncompressible1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZGeneric, 0, generateIncompressibleData(1024*1024))
}
func BenchmarkLZ4Incompressible1MB(b *testing.B) {
	benchmarkEncode(b, AlgorithmLZ4, 0, generateIncompressibleData(1024*1024))
}

// Archive benchmarks
func benchmarkArchiveRoundTrip(b *testing.B, files, size int) {
	fsys := NewMemFS()
	if err := fsys.MkdirAll("bench", 0755); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < files; i++ {
		if err := writeFile(fsys, fmt.Sprintf("bench/file%03d.txt", i), generateHighlyCompressibleData(size), 0644); err != nil {
			b.Fatal(err)
		}
	}
	a, err := New(fsys, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.SetBytes(int64(files * size))

	for i := 0; i < b.N; i++ {
		archive, err := a.Compress("bench")
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Decompress(archive, "out"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkArchiveRoundTrip100x4KB(b *testing.B) { benchmarkArchiveRoundTrip(b, 100, 4*1024) }
func BenchmarkArchiveRoundTrip10x1MB(b *testing.B)  { benchmarkArchiveRoundTrip(b, 10, 1024*1024) }

func BenchmarkClassify(b *testing.B) {
	data := generateTestData(4 * 1024)
	for i := 0; i < b.N; i++ {
		Classify(data)
	}
}
