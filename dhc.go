package dhc

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/absfs/absfs"
)

// Category is the coarse content classification that drives algorithm selection
type Category uint8

const (
	CategoryText Category = iota
	CategoryImage
	CategoryAudio
)

// String returns the lower-case name of the category
func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryImage:
		return "image"
	case CategoryAudio:
		return "audio"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Config holds archiver configuration
type Config struct {
	// TextAlgorithm replaces registry selection for text entries.
	// Must be a lossless algorithm. AlgorithmAuto keeps the registry choice.
	TextAlgorithm AlgorithmID `yaml:"text_algorithm"`

	// Compression level for lossless codecs (algorithm-specific)
	// lz-generic: 1-9 (6 default)
	// lz-dictionary: 0-11 (6 default)
	// lzma-like: ignored
	// zstd: 1-22 (3 default)
	// lz4: 1-9 (fast default)
	// snappy: ignored
	Level int `yaml:"level"`

	// JPEGQuality is the quality used when re-encoding to jpeg (1-100)
	JPEGQuality int `yaml:"jpeg_quality"`

	// Checksums records a blake3 digest of every lossless entry and
	// verifies it on decompression
	Checksums bool `yaml:"checksums"`

	// Workers bounds per-entry parallelism (default: GOMAXPROCS)
	Workers int `yaml:"workers"`

	// FFmpegPath is the ffmpeg binary used by the default audio transcoder
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Transcoder overrides the audio transcode capability
	Transcoder AudioTranscoder `yaml:"-"`

	// Images overrides the image re-encode capability
	Images ImageReencoder `yaml:"-"`

	// Logger receives per-entry debug records (default: discard)
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TextAlgorithm: AlgorithmAuto,
		Level:         0,
		JPEGQuality:   75,
		Checksums:     true,
		Workers:       runtime.GOMAXPROCS(0),
		FFmpegPath:    "ffmpeg",
	}
}

// validate fills zero values and rejects settings no codec can honour
func (c *Config) validate() error {
	if c.TextAlgorithm != AlgorithmAuto && !c.TextAlgorithm.Lossless() {
		return fmt.Errorf("%w: text algorithm %s is not lossless", ErrUnsupportedAlgorithm, c.TextAlgorithm)
	}
	if c.Level < 0 || c.Level > 22 {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, c.Level)
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 75
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality %d", ErrInvalidLevel, c.JPEGQuality)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.Transcoder == nil {
		c.Transcoder = &FFmpegTranscoder{Path: c.FFmpegPath}
	}
	if c.Images == nil {
		c.Images = &StdImageReencoder{Quality: c.JPEGQuality}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return nil
}

// Stats holds archiver statistics
type Stats struct {
	ArchivesWritten int64
	ArchivesRead    int64
	EntriesEncoded  int64
	EntriesDecoded  int64

	BytesEncoded int64 // original bytes fed to codecs
	BytesStored  int64 // payload bytes produced by codecs
	BytesDecoded int64 // bytes produced by decoders

	AlgorithmCounts sync.Map // map[AlgorithmID]*int64
}

// GetAlgorithmCount returns the count for a specific algorithm
func (s *Stats) GetAlgorithmCount(algo AlgorithmID) int64 {
	if val, ok := s.AlgorithmCounts.Load(algo); ok {
		return atomic.LoadInt64(val.(*int64))
	}
	return 0
}

// IncrementAlgorithmCount increments the count for a specific algorithm
func (s *Stats) IncrementAlgorithmCount(algo AlgorithmID) {
	val, _ := s.AlgorithmCounts.LoadOrStore(algo, new(int64))
	atomic.AddInt64(val.(*int64), 1)
}

// CompressionRatio returns stored bytes over encoded bytes
func (s *Stats) CompressionRatio() float64 {
	return GetCompressionRatio(atomic.LoadInt64(&s.BytesEncoded), atomic.LoadInt64(&s.BytesStored))
}

// FileSystem is the filesystem the archiver reads inputs from and
// materializes decompressed entries into
type FileSystem interface {
	OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error)
	MkdirAll(name string, perm fs.FileMode) error
	Remove(name string) error
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// Archiver compresses files and directory trees into dhc archives and back
type Archiver struct {
	fs     FileSystem
	config *Config
	codecs *CodecTable
	logger *slog.Logger
	stats  Stats
	mu     sync.RWMutex
}

// New creates an archiver over fsys. A nil fsys uses the host filesystem
// and a nil config uses DefaultConfig.
func New(fsys FileSystem, config *Config) (*Archiver, error) {
	if fsys == nil {
		fsys = OSFS()
	}
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Archiver{
		fs:     fsys,
		config: &cfg,
		codecs: NewCodecTable(&cfg),
		logger: cfg.Logger,
	}, nil
}

// Codecs returns the codec table the archiver dispatches through
func (a *Archiver) Codecs() *CodecTable {
	return a.codecs
}

// GetStats returns current statistics
func (a *Archiver) GetStats() *Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snapshot := &Stats{
		ArchivesWritten: atomic.LoadInt64(&a.stats.ArchivesWritten),
		ArchivesRead:    atomic.LoadInt64(&a.stats.ArchivesRead),
		EntriesEncoded:  atomic.LoadInt64(&a.stats.EntriesEncoded),
		EntriesDecoded:  atomic.LoadInt64(&a.stats.EntriesDecoded),
		BytesEncoded:    atomic.LoadInt64(&a.stats.BytesEncoded),
		BytesStored:     atomic.LoadInt64(&a.stats.BytesStored),
		BytesDecoded:    atomic.LoadInt64(&a.stats.BytesDecoded),
	}
	a.stats.AlgorithmCounts.Range(func(k, v any) bool {
		n := atomic.LoadInt64(v.(*int64))
		snapshot.AlgorithmCounts.Store(k, &n)
		return true
	})
	return snapshot
}

// ResetStats resets statistics to zero
func (a *Archiver) ResetStats() {
	a.mu.Lock()
	defer a.mu.Unlock()
	atomic.StoreInt64(&a.stats.ArchivesWritten, 0)
	atomic.StoreInt64(&a.stats.ArchivesRead, 0)
	atomic.StoreInt64(&a.stats.EntriesEncoded, 0)
	atomic.StoreInt64(&a.stats.EntriesDecoded, 0)
	atomic.StoreInt64(&a.stats.BytesEncoded, 0)
	atomic.StoreInt64(&a.stats.BytesStored, 0)
	atomic.StoreInt64(&a.stats.BytesDecoded, 0)
	a.stats.AlgorithmCounts.Clear()
}
