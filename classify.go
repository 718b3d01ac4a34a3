package dhc

import (
	"bytes"
)

// Magic bytes consulted by Classify, in precedence order
var (
	jpegMagic      = []byte{0xff, 0xd8}
	id3Magic       = []byte("ID3")
	mpegFrameMagic = []byte{0xff, 0xfb}
)

// Classify returns the content category of data. It never fails: anything
// not recognized as an image or audio stream is text.
func Classify(data []byte) Category {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return CategoryImage
	case bytes.HasPrefix(data, id3Magic), bytes.HasPrefix(data, mpegFrameMagic):
		return CategoryAudio
	default:
		return CategoryText
	}
}

// Magic bytes for the payload formats written by the lossless codecs.
// Brotli has no signature and is not listed.
var compressionMagic = map[AlgorithmID][]byte{
	AlgorithmLZMALike: {0xfd, '7', 'z', 'X', 'Z', 0x00},                             // xz
	AlgorithmZstd:     {0x28, 0xb5, 0x2f, 0xfd},                                     // zstd
	AlgorithmLZ4:      {0x04, 0x22, 0x4d, 0x18},                                     // lz4 frame
	AlgorithmSnappy:   {0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}, // snappy framed
}

// hasCompressionMagic reports whether payload plausibly starts a stream of
// the given lossless algorithm
func hasCompressionMagic(algo AlgorithmID, payload []byte) bool {
	if algo == AlgorithmLZGeneric {
		return isZlibHeader(payload)
	}
	magic, ok := compressionMagic[algo]
	if !ok {
		return true
	}
	return bytes.HasPrefix(payload, magic)
}

// isZlibHeader checks the RFC 1950 CMF/FLG pair
func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// DetectCompression detects a lossless stream written by this package
// from its magic bytes
func DetectCompression(data []byte) (AlgorithmID, bool) {
	for _, algo := range []AlgorithmID{AlgorithmLZMALike, AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy} {
		if bytes.HasPrefix(data, compressionMagic[algo]) {
			return algo, true
		}
	}
	if isZlibHeader(data) {
		return AlgorithmLZGeneric, true
	}
	return AlgorithmAuto, false
}

// ImageFormat names an image encoding
type ImageFormat string

const (
	ImageJPEG ImageFormat = "jpeg"
	ImagePNG  ImageFormat = "png"
	ImageWebP ImageFormat = "webp"
	ImageGIF  ImageFormat = "gif"
	ImageBMP  ImageFormat = "bmp"
)

// DetectImageFormat detects an image format from magic bytes
func DetectImageFormat(data []byte) (ImageFormat, bool) {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return ImageJPEG, true
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return ImagePNG, true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ImageWebP, true
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return ImageGIF, true
	case bytes.HasPrefix(data, []byte("BM")):
		return ImageBMP, true
	}
	return "", false
}

// AudioFormat names an audio encoding understood by the transcoder
type AudioFormat string

const (
	AudioMP3  AudioFormat = "mp3"
	AudioFLAC AudioFormat = "flac"
	AudioAAC  AudioFormat = "aac"
	AudioWAV  AudioFormat = "wav"
	AudioOgg  AudioFormat = "ogg"
)

// DetectAudioFormat detects an audio container or elementary stream from
// magic bytes
func DetectAudioFormat(data []byte) (AudioFormat, bool) {
	switch {
	case bytes.HasPrefix(data, id3Magic):
		return AudioMP3, true
	case bytes.HasPrefix(data, []byte("fLaC")):
		return AudioFLAC, true
	case bytes.HasPrefix(data, []byte("OggS")):
		return AudioOgg, true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return AudioWAV, true
	case len(data) >= 2 && data[0] == 0xff && data[1]&0xf6 == 0xf0:
		// ADTS: 12-bit sync, layer 00
		return AudioAAC, true
	case len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0 && data[1]&0x06 != 0:
		// MPEG audio frame sync with a non-reserved layer
		return AudioMP3, true
	}
	return "", false
}
