package dhc

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// AudioTranscoder converts audio between formats
type AudioTranscoder interface {
	Transcode(data []byte, source, target AudioFormat) ([]byte, error)
}

// FFmpegTranscoder transcodes by piping through an ffmpeg process. No
// temporary files are written.
type FFmpegTranscoder struct {
	// Path to the ffmpeg binary (default: "ffmpeg" on PATH)
	Path string
}

// ffmpeg muxer names per output format
var ffmpegFormats = map[AudioFormat]string{
	AudioMP3:  "mp3",
	AudioFLAC: "flac",
	AudioAAC:  "adts",
	AudioWAV:  "wav",
	AudioOgg:  "ogg",
}

// Transcode implements AudioTranscoder
func (t *FFmpegTranscoder) Transcode(data []byte, source, target AudioFormat) ([]byte, error) {
	muxer, ok := ffmpegFormats[target]
	if !ok {
		return nil, fmt.Errorf("no ffmpeg muxer for %q", target)
	}
	path := t.Path
	if path == "" {
		path = "ffmpeg"
	}

	// the input format is detected from the stream itself
	cmd := exec.Command(path, "-hide_banner", "-loglevel", "error",
		"-i", "pipe:0", "-f", muxer, "pipe:1")
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrTranscoderUnavailable, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: ffmpeg %s -> %s: %s", ErrUnsupportedPayload, source, target, msg)
	}
	return stdout.Bytes(), nil
}
