package dhc

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// normalizePath normalizes a path for consistent storage/lookup
// It removes leading slashes and cleans the path
func normalizePath(name string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	name = strings.TrimPrefix(name, "/")
	if name == "" || name == "." {
		name = "."
	}
	return name
}

// parentDir returns the normalized parent of a normalized path
func parentDir(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return "."
}

// memFS is an in-memory filesystem for tests and for archiving without
// touching disk
type memFS struct {
	files map[string]*memNode
	dirs  map[string]time.Time
	mu    sync.RWMutex
}

type memNode struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory filesystem containing only its root
func NewMemFS() FileSystem {
	return &memFS{
		files: make(map[string]*memNode),
		dirs:  map[string]time.Time{".": time.Now()},
	}
}

func (mfs *memFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if _, isDir := mfs.dirs[name]; isDir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("is a directory")}
	}

	node, exists := mfs.files[name]
	if !exists {
		if flag&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		if _, ok := mfs.dirs[parentDir(name)]; !ok {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		node = &memNode{mode: perm, modTime: time.Now()}
		mfs.files[name] = node
	} else if flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}

	if flag&os.O_TRUNC != 0 {
		node.data = nil
		node.modTime = time.Now()
	}

	handle := &memFile{name: name, node: node, writable: flag&(os.O_WRONLY|os.O_RDWR) != 0}
	if flag&os.O_APPEND != 0 {
		handle.pos = int64(len(node.data))
	}
	return handle, nil
}

func (mfs *memFS) MkdirAll(name string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	var missing []string
	for dir := name; dir != "."; dir = parentDir(dir) {
		if _, isFile := mfs.files[dir]; isFile {
			return &fs.PathError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
		}
		if _, ok := mfs.dirs[dir]; !ok {
			missing = append(missing, dir)
		}
	}
	now := time.Now()
	for _, dir := range missing {
		mfs.dirs[dir] = now
	}
	return nil
}

func (mfs *memFS) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if _, exists := mfs.files[name]; exists {
		delete(mfs.files, name)
		return nil
	}
	if _, exists := mfs.dirs[name]; !exists || name == "." {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if len(mfs.children(name)) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
	}
	delete(mfs.dirs, name)
	return nil
}

func (mfs *memFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	info, ok := mfs.stat(name)
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return info, nil
}

func (mfs *memFS) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	if _, ok := mfs.dirs[name]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for _, child := range mfs.children(name) {
		info, _ := mfs.stat(child)
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// children lists the normalized paths directly under dir. Caller holds mu.
func (mfs *memFS) children(dir string) []string {
	var out []string
	for p := range mfs.files {
		if parentDir(p) == dir {
			out = append(out, p)
		}
	}
	for p := range mfs.dirs {
		if p != "." && parentDir(p) == dir {
			out = append(out, p)
		}
	}
	return out
}

// stat builds file info for a normalized path. Caller holds mu.
func (mfs *memFS) stat(name string) (*memFileInfo, bool) {
	if node, ok := mfs.files[name]; ok {
		return &memFileInfo{
			name:    filepath.Base(name),
			size:    int64(len(node.data)),
			mode:    node.mode,
			modTime: node.modTime,
		}, true
	}
	if modTime, ok := mfs.dirs[name]; ok {
		return &memFileInfo{
			name:    filepath.Base(name),
			mode:    fs.ModeDir | 0755,
			modTime: modTime,
		}, true
	}
	return nil, false
}

// ============================================================================
// memFile - absfs.File over a memNode
// ============================================================================

type memFile struct {
	name     string
	node     *memNode
	pos      int64
	writable bool
	closed   bool
	mu       sync.Mutex
}

func (mf *memFile) Read(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	if mf.pos >= int64(len(mf.node.data)) {
		return 0, io.EOF
	}
	n = copy(p, mf.node.data[mf.pos:])
	mf.pos += int64(n)
	return n, nil
}

func (mf *memFile) Write(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	n, err = mf.writeAt(p, mf.pos)
	mf.pos += int64(n)
	return n, err
}

// writeAt writes p at off, growing the file. Caller holds mu.
func (mf *memFile) writeAt(p []byte, off int64) (int, error) {
	if mf.closed {
		return 0, fs.ErrClosed
	}
	if !mf.writable {
		return 0, &fs.PathError{Op: "write", Path: mf.name, Err: fs.ErrPermission}
	}
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if end := off + int64(len(p)); end > int64(len(mf.node.data)) {
		grown := make([]byte, end)
		copy(grown, mf.node.data)
		mf.node.data = grown
	}
	n := copy(mf.node.data[off:], p)
	mf.node.modTime = time.Now()
	return n, nil
}

func (mf *memFile) Close() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.closed = true
	return nil
}

func (mf *memFile) Seek(offset int64, whence int) (int64, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}

	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = mf.pos + offset
	case io.SeekEnd:
		newPos = int64(len(mf.node.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("negative position")
	}
	mf.pos = newPos
	return newPos, nil
}

func (mf *memFile) Stat() (fs.FileInfo, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	return &memFileInfo{
		name:    filepath.Base(mf.name),
		size:    int64(len(mf.node.data)),
		mode:    mf.node.mode,
		modTime: mf.node.modTime,
	}, nil
}

func (mf *memFile) Sync() error {
	return nil
}

func (mf *memFile) Name() string {
	return mf.name
}

func (mf *memFile) ReadAt(b []byte, off int64) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if off >= int64(len(mf.node.data)) {
		return 0, io.EOF
	}
	n = copy(b, mf.node.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (mf *memFile) WriteAt(b []byte, off int64) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return mf.writeAt(b, off)
}

func (mf *memFile) WriteString(s string) (n int, err error) {
	return mf.Write([]byte(s))
}

func (mf *memFile) Truncate(size int64) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return fs.ErrClosed
	}
	if size < 0 {
		return errors.New("negative size")
	}
	if size <= int64(len(mf.node.data)) {
		mf.node.data = mf.node.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, mf.node.data)
		mf.node.data = grown
	}
	mf.node.modTime = time.Now()
	return nil
}

// Readdir is not supported on files
func (mf *memFile) Readdir(n int) ([]os.FileInfo, error) {
	return nil, os.ErrInvalid
}

// Readdirnames is not supported on files
func (mf *memFile) Readdirnames(n int) ([]string, error) {
	return nil, os.ErrInvalid
}

// ReadDir is not supported on files
func (mf *memFile) ReadDir(n int) ([]fs.DirEntry, error) {
	return nil, os.ErrInvalid
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memFileInfo) Sys() interface{}   { return nil }
