package dhc

import "fmt"

// AlgorithmID identifies the transform applied to an archived entry. The
// wire name is persisted in the entry metadata and is the only thing
// consulted when choosing a decoder.
type AlgorithmID uint8

const (
	AlgorithmAuto AlgorithmID = iota

	// Lossless family
	AlgorithmLZGeneric    // zlib stream
	AlgorithmLZDictionary // brotli stream
	AlgorithmLZMALike     // xz stream

	// Native image formats
	AlgorithmJPEG
	AlgorithmPNG
	AlgorithmWebP

	// Audio formats
	AlgorithmMP3
	AlgorithmFLAC
	AlgorithmAAC

	// Additional lossless codecs, never picked by the registry
	AlgorithmZstd
	AlgorithmLZ4
	AlgorithmSnappy

	numAlgorithms
)

var algorithmNames = [numAlgorithms]string{
	AlgorithmAuto:         "auto",
	AlgorithmLZGeneric:    "lz-generic",
	AlgorithmLZDictionary: "lz-dictionary",
	AlgorithmLZMALike:     "lzma-like",
	AlgorithmJPEG:         "jpeg",
	AlgorithmPNG:          "png",
	AlgorithmWebP:         "webp",
	AlgorithmMP3:          "mp3",
	AlgorithmFLAC:         "flac",
	AlgorithmAAC:          "aac",
	AlgorithmZstd:         "zstd",
	AlgorithmLZ4:          "lz4",
	AlgorithmSnappy:       "snappy",
}

// String returns the wire name of the algorithm
func (a AlgorithmID) String() string {
	if a < numAlgorithms {
		return algorithmNames[a]
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm parses a wire name
func ParseAlgorithm(name string) (AlgorithmID, error) {
	for id, n := range algorithmNames {
		if n == name {
			return AlgorithmID(id), nil
		}
	}
	return AlgorithmAuto, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// Algorithms returns every concrete algorithm in declaration order
func Algorithms() []AlgorithmID {
	algos := make([]AlgorithmID, 0, numAlgorithms-1)
	for id := AlgorithmLZGeneric; id < numAlgorithms; id++ {
		algos = append(algos, id)
	}
	return algos
}

// Lossless reports whether decode reproduces the original bytes exactly
func (a AlgorithmID) Lossless() bool {
	switch a {
	case AlgorithmLZGeneric, AlgorithmLZDictionary, AlgorithmLZMALike,
		AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler
func (a AlgorithmID) MarshalText() ([]byte, error) {
	if a == AlgorithmAuto || a >= numAlgorithms {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, a)
	}
	return []byte(algorithmNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *AlgorithmID) UnmarshalText(text []byte) error {
	id, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// candidates is the category -> ordered candidate list, fixed at build time
var candidates = [...][]AlgorithmID{
	CategoryText:  {AlgorithmLZGeneric, AlgorithmLZDictionary, AlgorithmLZMALike},
	CategoryImage: {AlgorithmJPEG, AlgorithmPNG, AlgorithmWebP},
	CategoryAudio: {AlgorithmMP3, AlgorithmFLAC, AlgorithmAAC},
}

// Candidates returns the ordered candidate algorithms for a category
func Candidates(c Category) ([]AlgorithmID, error) {
	if int(c) >= len(candidates) || len(candidates[c]) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
	out := make([]AlgorithmID, len(candidates[c]))
	copy(out, candidates[c])
	return out, nil
}

// Select returns the algorithm used for a category: always the first
// listed candidate
func Select(c Category) (AlgorithmID, error) {
	if int(c) >= len(candidates) || len(candidates[c]) == 0 {
		return AlgorithmAuto, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
	return candidates[c][0], nil
}
