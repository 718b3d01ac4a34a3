package dhc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes the decoded source of a re-encoded image
type ImageInfo struct {
	Source string
	Width  int
	Height int
}

// ImageReencoder turns an encoded image into the target encoding
type ImageReencoder interface {
	Reencode(data []byte, target ImageFormat) ([]byte, ImageInfo, error)
}

// StdImageReencoder decodes any registered image format and re-encodes it
// in pure Go. WebP output is lossless.
type StdImageReencoder struct {
	// Quality for jpeg output (1-100, default 75)
	Quality int

	// PNG compression level
	PNGLevel png.CompressionLevel
}

// Reencode implements ImageReencoder
func (r *StdImageReencoder) Reencode(data []byte, target ImageFormat) ([]byte, ImageInfo, error) {
	img, source, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	info := ImageInfo{Source: source, Width: bounds.Dx(), Height: bounds.Dy()}

	var buf bytes.Buffer
	switch target {
	case ImageJPEG:
		quality := r.Quality
		if quality == 0 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case ImagePNG:
		enc := png.Encoder{CompressionLevel: r.PNGLevel}
		err = enc.Encode(&buf, img)
	case ImageWebP:
		err = nativewebp.Encode(&buf, img, nil)
	default:
		return nil, info, fmt.Errorf("no encoder for image format %q", target)
	}
	if err != nil {
		return nil, info, fmt.Errorf("encode %s: %w", target, err)
	}
	return buf.Bytes(), info, nil
}
