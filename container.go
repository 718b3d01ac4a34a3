package dhc

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// DefaultSingleName names the entry of a single-file archive whose header
// carries no original name
const DefaultSingleName = "data"

// Entry is one archived file: its archive-internal path (forward slashes),
// encoded payload and metadata
type Entry struct {
	Path     string
	Payload  []byte
	Metadata EntryMetadata
}

// WriteArchive serializes entries in the multi-file layout:
//
//	header_len:u32le header (path_len:u32le path payload_len:u32le payload)*
func WriteArchive(entries []Entry) ([]byte, error) {
	hdr, err := encodeHeader(entries)
	if err != nil {
		return nil, err
	}
	size := 4 + len(hdr)
	for _, e := range entries {
		size += 8 + len(e.Path) + len(e.Payload)
	}

	out, err := appendBlock(make([]byte, 0, size), hdr, "header", "")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if out, err = appendFrame(out, e.Path, e.Payload); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteSingleArchive serializes one entry in the single-file layout: the
// payload follows the header with no framing. entry.Metadata.Name is kept
// so the file can be restored under its original name.
func WriteSingleArchive(entry Entry) ([]byte, error) {
	meta := entry.Metadata
	meta.Stored = int64(len(entry.Payload))
	if meta.Name == "" {
		meta.Name = entry.Path
	}
	hdr, err := encodeSingleHeader(meta)
	if err != nil {
		return nil, err
	}
	out, err := appendBlock(make([]byte, 0, 4+len(hdr)+len(entry.Payload)), hdr, "header", "")
	if err != nil {
		return nil, err
	}
	return append(out, entry.Payload...), nil
}

// ReadArchive parses either layout and returns the entries in header order
func ReadArchive(data []byte) ([]Entry, error) {
	r := &frameReader{data: data}
	hdrBytes, err := r.block("header", "")
	if err != nil {
		return nil, err
	}
	hdr, err := decodeHeader(hdrBytes)
	if err != nil {
		return nil, err
	}
	if hdr.single {
		return readSingleBody(r, hdr.meta[hdr.paths[0]])
	}
	return readFramedBody(r, hdr)
}

func readSingleBody(r *frameReader, meta EntryMetadata) ([]Entry, error) {
	payload := r.rest()
	path := meta.Name
	if path == "" {
		path = DefaultSingleName
	}
	if meta.Stored != 0 {
		switch have := int64(len(payload)); {
		case have < meta.Stored:
			return nil, &ArchiveError{Op: "read payload", Path: path, Declared: uint64(meta.Stored), Available: uint64(have), Err: ErrTruncatedInput}
		case have > meta.Stored:
			return nil, &ArchiveError{Op: "read payload", Path: path, Declared: uint64(meta.Stored), Available: uint64(have), Err: fmt.Errorf("%w: trailing bytes after payload", ErrHeaderMismatch)}
		}
	}
	return []Entry{{Path: path, Payload: payload, Metadata: meta}}, nil
}

func readFramedBody(r *frameReader, hdr *header) ([]Entry, error) {
	index := make(map[string]int, len(hdr.paths))
	for i, p := range hdr.paths {
		index[p] = i
	}

	entries := make([]Entry, 0, len(hdr.paths))
	seen := make(map[string]bool, len(hdr.paths))
	for r.remaining() > 0 {
		path, payload, err := r.frame()
		if err != nil {
			return nil, err
		}
		meta, ok := hdr.meta[path]
		if !ok {
			return nil, &ArchiveError{Op: "read entry", Path: path, Err: fmt.Errorf("%w: path not in header", ErrHeaderMismatch)}
		}
		if seen[path] {
			return nil, &ArchiveError{Op: "read entry", Path: path, Err: fmt.Errorf("%w: duplicate entry", ErrHeaderMismatch)}
		}
		seen[path] = true
		entries = append(entries, Entry{Path: path, Payload: payload, Metadata: meta})
	}
	if len(entries) != len(hdr.paths) {
		return nil, &ArchiveError{Op: "read archive", Err: fmt.Errorf("%w: %d entries for %d header keys", ErrHeaderMismatch, len(entries), len(hdr.paths))}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return index[entries[i].Path] < index[entries[j].Path]
	})
	return entries, nil
}

// ============================================================================
// Entry framing
// ============================================================================

// maxBlockLen is the largest header, path or payload a u32 prefix can frame
var maxBlockLen uint64 = math.MaxUint32

// appendBlock appends len:u32le followed by b
func appendBlock(dst, b []byte, what, path string) ([]byte, error) {
	if uint64(len(b)) > maxBlockLen {
		return nil, &ArchiveError{Op: "write " + what, Path: path, Declared: uint64(len(b)), Err: ErrLengthOverflow}
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...), nil
}

// appendFrame appends one multi-file entry
func appendFrame(dst []byte, path string, payload []byte) ([]byte, error) {
	dst, err := appendBlock(dst, []byte(path), "path", path)
	if err != nil {
		return nil, err
	}
	return appendBlock(dst, payload, "payload", path)
}

// frameReader walks a byte buffer, failing on any length that runs past
// the end of the buffer
type frameReader struct {
	data []byte
	off  int
}

func (r *frameReader) remaining() int {
	return len(r.data) - r.off
}

func (r *frameReader) rest() []byte {
	b := r.data[r.off:]
	r.off = len(r.data)
	return b
}

// block reads len:u32le followed by that many bytes
func (r *frameReader) block(what, path string) ([]byte, error) {
	if r.remaining() < 4 {
		return nil, &ArchiveError{Op: "read " + what + " length", Path: path, Declared: 4, Available: uint64(r.remaining()), Err: ErrTruncatedInput}
	}
	n := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	if uint64(n) > uint64(r.remaining()) {
		return nil, &ArchiveError{Op: "read " + what, Path: path, Declared: uint64(n), Available: uint64(r.remaining()), Err: ErrTruncatedInput}
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

// frame reads one multi-file entry
func (r *frameReader) frame() (string, []byte, error) {
	pathBytes, err := r.block("path", "")
	if err != nil {
		return "", nil, err
	}
	path := string(pathBytes)
	payload, err := r.block("payload", path)
	if err != nil {
		return "", nil, err
	}
	return path, payload, nil
}
