package dhc

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"
)

func TestMemFSFiles(t *testing.T) {
	fsys := NewMemFS()

	if _, err := fsys.OpenFile("dir/a.txt", os.O_WRONLY|os.O_CREATE, 0644); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected missing parent to fail, got %v", err)
	}
	if err := fsys.MkdirAll("dir/sub", 0755); err != nil {
		t.Fatalf("Failed to create directories: %v", err)
	}

	f, err := fsys.OpenFile("dir/a.txt", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if _, err := f.WriteString("hello world"); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := f.Seek(6, io.SeekStart); err != nil {
		t.Fatalf("Failed to seek: %v", err)
	}
	rest, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(rest) != "world" {
		t.Errorf("Expected world, got %q", rest)
	}
	if err := f.Truncate(5); err != nil {
		t.Fatalf("Failed to truncate: %v", err)
	}
	f.Close()

	if got := mustRead(t, fsys, "dir/a.txt"); string(got) != "hello" {
		t.Errorf("Expected hello, got %q", got)
	}

	ro, err := fsys.OpenFile("dir/a.txt", os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if _, err := ro.Write([]byte("x")); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected read-only write to fail, got %v", err)
	}
	ro.Close()

	if _, err := fsys.OpenFile("dir/a.txt", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644); !errors.Is(err, fs.ErrExist) {
		t.Errorf("Expected O_EXCL to fail on existing file, got %v", err)
	}
}

func TestMemFSDirectories(t *testing.T) {
	fsys := NewMemFS()
	putFile(t, fsys, "root/b.txt", []byte("b"))
	putFile(t, fsys, "root/a.txt", []byte("a"))
	if err := fsys.MkdirAll("root/sub", 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	entries, err := fsys.ReadDir("root")
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 3 || names[0] != "a.txt" || names[1] != "b.txt" || names[2] != "sub" {
		t.Errorf("Unexpected entries %v", names)
	}
	if !entries[2].IsDir() || !entries[0].Type().IsRegular() {
		t.Error("Unexpected entry types")
	}

	if err := fsys.Remove("root"); err == nil {
		t.Error("Expected removing a non-empty directory to fail")
	}
	if err := fsys.MkdirAll("root/a.txt/x", 0755); err == nil {
		t.Error("Expected MkdirAll through a file to fail")
	}
	if _, err := fsys.OpenFile("root/sub", os.O_RDONLY, 0); err == nil {
		t.Error("Expected opening a directory as a file to fail")
	}

	for _, name := range []string{"root/a.txt", "root/b.txt", "root/sub", "root"} {
		if err := fsys.Remove(name); err != nil {
			t.Fatalf("Failed to remove %s: %v", name, err)
		}
	}
	assertMissing(t, fsys, "root")
}

func TestWalkFiles(t *testing.T) {
	fsys := NewMemFS()
	putFile(t, fsys, "w/z.txt", nil)
	putFile(t, fsys, "w/a/b/c.txt", nil)
	putFile(t, fsys, "w/a/a.txt", nil)
	if err := fsys.MkdirAll("w/empty", 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	files, err := walkFiles(fsys, "w")
	if err != nil {
		t.Fatalf("Failed to walk: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, f.rel)
	}
	want := []string{"a/a.txt", "a/b/c.txt", "z.txt"}
	if len(rels) != len(want) {
		t.Fatalf("Expected %v, got %v", want, rels)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, rels)
			break
		}
	}
}
