package dhc

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/absfs/absfs"
)

// osFS is the host filesystem. *os.File satisfies absfs.File.
type osFS struct{}

// OSFS returns a FileSystem backed by the host operating system
func OSFS() FileSystem {
	return osFS{}
}

func (osFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (osFS) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }
func (osFS) Remove(name string) error                     { return os.Remove(name) }
func (osFS) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (osFS) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }

// readFile reads a whole file through fsys
func readFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeFile creates or truncates name and writes data to it
func writeFile(fsys FileSystem, name string, data []byte, perm fs.FileMode) error {
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// walkFile is one regular file found under a walk root
type walkFile struct {
	rel  string // forward-slash path relative to the root
	full string // path handed to the filesystem
}

// walkFiles lists every regular file under root depth-first in lexical
// order, so repeated walks of an unmodified tree agree
func walkFiles(fsys FileSystem, root string) ([]walkFile, error) {
	var files []walkFile
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", dir, err)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			childRel := path.Join(rel, e.Name())
			switch {
			case e.IsDir():
				if err := walk(full, childRel); err != nil {
					return err
				}
			case e.Type().IsRegular():
				files = append(files, walkFile{rel: childRel, full: full})
			}
		}
		return nil
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return files, nil
}
