package dhc

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML configuration file from fsys and overlays it on
// DefaultConfig. A nil fsys reads from the host filesystem.
//
//	text_algorithm: zstd
//	level: 9
//	jpeg_quality: 85
//	checksums: true
//	workers: 4
//	ffmpeg_path: /usr/local/bin/ffmpeg
func LoadConfig(fsys FileSystem, path string) (*Config, error) {
	if fsys == nil {
		fsys = OSFS()
	}
	data, err := readFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration onto DefaultConfig. Unknown keys
// are rejected.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// validate a copy so capability fields stay unset for New to fill
	check := *config
	if err := check.validate(); err != nil {
		return nil, err
	}
	return config, nil
}
