package dhc

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// EntryMetadata is the per-entry record stored in the archive header. The
// algorithm is always present; the remaining fields are codec specific.
type EntryMetadata struct {
	Algorithm AlgorithmID `json:"algorithm" yaml:"algorithm"`

	// Single-file archives only
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Stored int64  `json:"stored,omitzero" yaml:"stored,omitempty"`

	Size     int64  `json:"size,omitzero" yaml:"size,omitempty"`
	Level    int    `json:"level,omitzero" yaml:"level,omitempty"`
	Checksum string `json:"blake3,omitempty" yaml:"blake3,omitempty"`

	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Width     int    `json:"width,omitzero" yaml:"width,omitempty"`
	Height    int    `json:"height,omitzero" yaml:"height,omitempty"`
	Rendering string `json:"rendering,omitempty" yaml:"rendering,omitempty"`
}

// Codec is a paired encode/decode transform for one algorithm. Codecs work
// on in-memory buffers only.
type Codec interface {
	Algorithm() AlgorithmID
	Encode(data []byte) ([]byte, EntryMetadata, error)
	Decode(payload []byte, meta EntryMetadata) ([]byte, error)
}

// CodecTable maps every AlgorithmID to its codec
type CodecTable struct {
	codecs [numAlgorithms]Codec
}

// NewCodecTable builds the codec table for a configuration
func NewCodecTable(config *Config) *CodecTable {
	t := &CodecTable{}
	for _, algo := range []AlgorithmID{
		AlgorithmLZGeneric, AlgorithmLZDictionary, AlgorithmLZMALike,
		AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy,
	} {
		t.codecs[algo] = &losslessCodec{algo: algo, level: config.Level, checksum: config.Checksums}
	}
	t.codecs[AlgorithmJPEG] = &imageCodec{algo: AlgorithmJPEG, target: ImageJPEG, images: config.Images}
	t.codecs[AlgorithmPNG] = &imageCodec{algo: AlgorithmPNG, target: ImagePNG, images: config.Images}
	t.codecs[AlgorithmWebP] = &imageCodec{algo: AlgorithmWebP, target: ImageWebP, images: config.Images}
	t.codecs[AlgorithmMP3] = &audioCodec{algo: AlgorithmMP3, target: AudioMP3, transcoder: config.Transcoder}
	t.codecs[AlgorithmFLAC] = &audioCodec{algo: AlgorithmFLAC, target: AudioFLAC, transcoder: config.Transcoder}
	t.codecs[AlgorithmAAC] = &audioCodec{algo: AlgorithmAAC, target: AudioAAC, transcoder: config.Transcoder}
	return t
}

// Lookup returns the codec for algo
func (t *CodecTable) Lookup(algo AlgorithmID) (Codec, error) {
	if algo >= numAlgorithms || t.codecs[algo] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
	return t.codecs[algo], nil
}

// Encode encodes data with algo
func (t *CodecTable) Encode(algo AlgorithmID, data []byte) ([]byte, EntryMetadata, error) {
	codec, err := t.Lookup(algo)
	if err != nil {
		return nil, EntryMetadata{}, err
	}
	return codec.Encode(data)
}

// Decode decodes payload with the algorithm recorded in meta
func (t *CodecTable) Decode(payload []byte, meta EntryMetadata) ([]byte, error) {
	codec, err := t.Lookup(meta.Algorithm)
	if err != nil {
		return nil, err
	}
	return codec.Decode(payload, meta)
}

// ============================================================================
// Lossless family
// ============================================================================

type losslessCodec struct {
	algo     AlgorithmID
	level    int
	checksum bool
}

func (c *losslessCodec) Algorithm() AlgorithmID { return c.algo }

func (c *losslessCodec) Encode(data []byte) ([]byte, EntryMetadata, error) {
	payload, err := compressBytes(c.algo, data, c.level)
	if err != nil {
		return nil, EntryMetadata{}, fmt.Errorf("%s compress: %w", c.algo, err)
	}
	meta := EntryMetadata{
		Algorithm: c.algo,
		Size:      int64(len(data)),
		Level:     c.level,
	}
	if c.checksum {
		meta.Checksum = digest(data)
	}
	return payload, meta, nil
}

func (c *losslessCodec) Decode(payload []byte, meta EntryMetadata) ([]byte, error) {
	data, err := decodePayload(c.algo, payload)
	if err != nil {
		return nil, err
	}
	if meta.Size != 0 && int64(len(data)) != meta.Size {
		return nil, fmt.Errorf("%w: %s produced %d bytes, expected %d", ErrChecksumMismatch, c.algo, len(data), meta.Size)
	}
	if meta.Checksum != "" && digest(data) != meta.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, c.algo)
	}
	return data, nil
}

// digest returns the hex blake3-256 of data
func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ============================================================================
// Native image formats
// ============================================================================

type imageCodec struct {
	algo   AlgorithmID
	target ImageFormat
	images ImageReencoder
}

func (c *imageCodec) Algorithm() AlgorithmID { return c.algo }

func (c *imageCodec) Encode(data []byte) ([]byte, EntryMetadata, error) {
	payload, info, err := c.images.Reencode(data, c.target)
	if err != nil {
		return nil, EntryMetadata{}, unsupportedPayload(c.algo, err)
	}
	return payload, EntryMetadata{
		Algorithm: c.algo,
		Source:    info.Source,
		Width:     info.Width,
		Height:    info.Height,
	}, nil
}

// Decode returns the payload unchanged: the stored bytes are already a
// viewable image.
func (c *imageCodec) Decode(payload []byte, _ EntryMetadata) ([]byte, error) {
	return payload, nil
}

// ============================================================================
// Audio formats
// ============================================================================

type audioCodec struct {
	algo       AlgorithmID
	target     AudioFormat
	transcoder AudioTranscoder
}

func (c *audioCodec) Algorithm() AlgorithmID { return c.algo }

func (c *audioCodec) Encode(data []byte) ([]byte, EntryMetadata, error) {
	source, ok := DetectAudioFormat(data)
	if !ok {
		return nil, EntryMetadata{}, unsupportedPayload(c.algo, nil)
	}
	payload, err := c.transcoder.Transcode(data, source, c.target)
	if err != nil {
		return nil, EntryMetadata{}, err
	}
	return payload, EntryMetadata{
		Algorithm: c.algo,
		Source:    string(source),
		Rendering: string(AudioWAV),
	}, nil
}

// Decode renders the payload as WAV rather than reproducing the original
// bytes.
func (c *audioCodec) Decode(payload []byte, _ EntryMetadata) ([]byte, error) {
	if len(payload) == 0 {
		return nil, unsupportedPayload(c.algo, nil)
	}
	return c.transcoder.Transcode(payload, c.target, AudioWAV)
}
