package dhc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// header is the decoded archive header. paths keeps member order.
type header struct {
	single bool
	paths  []string
	meta   map[string]EntryMetadata
}

// encodeHeader writes the multi-file header, a JSON object mapping each
// entry path to its metadata in entry order
func encodeHeader(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := enc.WriteToken(jsontext.String(e.Path)); err != nil {
			// duplicate member names are rejected by the encoder
			return nil, &ArchiveError{Op: "write header", Path: e.Path, Err: fmt.Errorf("%w: %w", ErrHeaderMismatch, err)}
		}
		if err := json.MarshalEncode(enc, e.Metadata); err != nil {
			return nil, &ArchiveError{Op: "write header", Path: e.Path, Err: err}
		}
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// encodeSingleHeader writes the degenerate single-file header: the entry
// metadata object itself
func encodeSingleHeader(meta EntryMetadata) ([]byte, error) {
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, &ArchiveError{Op: "write header", Path: meta.Name, Err: err}
	}
	return b, nil
}

// decodeHeader parses either header form. A top-level "algorithm" member
// holding a string marks the single-file form; in the multi-file form every
// member value is an object.
func decodeHeader(b []byte) (*header, error) {
	type member struct {
		name  string
		value jsontext.Value
	}

	dec := jsontext.NewDecoder(bytes.NewReader(b))
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, malformedHeader(err)
	}
	if tok.Kind() != '{' {
		return nil, malformedHeader(errors.New("header is not an object"))
	}

	var members []member
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, malformedHeader(err)
		}
		name := tok.String()
		val, err := dec.ReadValue()
		if err != nil {
			return nil, malformedHeader(err)
		}
		members = append(members, member{name: name, value: jsontext.Value(bytes.Clone(val))})
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, malformedHeader(err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		return nil, malformedHeader(errors.New("trailing data after header object"))
	}

	for _, m := range members {
		if m.name == "algorithm" && m.value.Kind() == '"' {
			var meta EntryMetadata
			if err := unmarshalMetadata(b, &meta); err != nil {
				return nil, &ArchiveError{Op: "read header", Err: err}
			}
			return &header{single: true, paths: []string{meta.Name}, meta: map[string]EntryMetadata{meta.Name: meta}}, nil
		}
	}

	h := &header{paths: make([]string, 0, len(members)), meta: make(map[string]EntryMetadata, len(members))}
	for _, m := range members {
		if m.value.Kind() != '{' {
			return nil, &ArchiveError{Op: "read header", Path: m.name, Err: fmt.Errorf("%w: metadata is not an object", ErrHeaderMismatch)}
		}
		var meta EntryMetadata
		if err := unmarshalMetadata(m.value, &meta); err != nil {
			return nil, &ArchiveError{Op: "read header", Path: m.name, Err: err}
		}
		h.paths = append(h.paths, m.name)
		h.meta[m.name] = meta
	}
	return h, nil
}

func unmarshalMetadata(b []byte, meta *EntryMetadata) error {
	if err := json.Unmarshal(b, meta); err != nil {
		if errors.Is(err, ErrUnsupportedAlgorithm) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrHeaderMismatch, err)
	}
	if meta.Algorithm == AlgorithmAuto {
		return fmt.Errorf("%w: metadata has no algorithm", ErrHeaderMismatch)
	}
	return nil
}

func malformedHeader(err error) error {
	return &ArchiveError{Op: "read header", Err: fmt.Errorf("%w: %w", ErrHeaderMismatch, err)}
}
