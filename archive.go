package dhc

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Compress archives the file or directory at inputPath. A file produces a
// single-file archive; a directory produces a multi-file archive keyed by
// forward-slash paths relative to inputPath.
func (a *Archiver) Compress(inputPath string) ([]byte, error) {
	info, err := a.fs.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	var out []byte
	if info.IsDir() {
		out, err = a.compressDir(inputPath)
	} else {
		out, err = a.compressFile(inputPath, info.Name())
	}
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&a.stats.ArchivesWritten, 1)
	return out, nil
}

func (a *Archiver) compressFile(inputPath, name string) ([]byte, error) {
	data, err := readFile(a.fs, inputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	entry, err := a.encodeEntry(name, data)
	if err != nil {
		return nil, err
	}
	entry.Metadata.Name = name
	return WriteSingleArchive(entry)
}

func (a *Archiver) compressDir(root string) ([]byte, error) {
	files, err := walkFiles(a.fs, root)
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	// Entries are encoded concurrently but stored by walk index so the
	// header and body keep walk order.
	entries := make([]Entry, len(files))
	var g errgroup.Group
	g.SetLimit(a.config.Workers)
	for i, f := range files {
		g.Go(func() error {
			data, err := readFile(a.fs, f.full)
			if err != nil {
				return fmt.Errorf("read %s: %w", f.full, err)
			}
			entries[i], err = a.encodeEntry(f.rel, data)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("writing archive", "root", root, "entries", len(entries))
	return WriteArchive(entries)
}

// encodeEntry classifies data, selects an algorithm and encodes it
func (a *Archiver) encodeEntry(entryPath string, data []byte) (Entry, error) {
	category := Classify(data)
	algo, err := a.selectAlgorithm(category)
	if err != nil {
		return Entry{}, &ArchiveError{Op: "select", Path: entryPath, Err: err}
	}
	payload, meta, err := a.codecs.Encode(algo, data)
	if err != nil {
		return Entry{}, &ArchiveError{Op: "encode", Path: entryPath, Err: err}
	}

	atomic.AddInt64(&a.stats.EntriesEncoded, 1)
	atomic.AddInt64(&a.stats.BytesEncoded, int64(len(data)))
	atomic.AddInt64(&a.stats.BytesStored, int64(len(payload)))
	a.stats.IncrementAlgorithmCount(algo)
	a.logger.Debug("encoded entry",
		"path", entryPath,
		"category", category,
		"algorithm", algo,
		"size", len(data),
		"stored", len(payload))

	return Entry{Path: entryPath, Payload: payload, Metadata: meta}, nil
}

// selectAlgorithm applies the configured text override on top of the
// registry's first-candidate policy
func (a *Archiver) selectAlgorithm(category Category) (AlgorithmID, error) {
	if category == CategoryText && a.config.TextAlgorithm != AlgorithmAuto {
		return a.config.TextAlgorithm, nil
	}
	return Select(category)
}

// Decompress restores every entry of archive under outputRoot, creating
// parent directories as needed. Nothing is written unless every entry
// decodes; a failed write removes the files this call already wrote.
func (a *Archiver) Decompress(archive []byte, outputRoot string) error {
	entries, err := ReadArchive(archive)
	if err != nil {
		return err
	}

	targets := make([]string, len(entries))
	for i, e := range entries {
		if targets[i], err = resolveEntryPath(outputRoot, e.Path); err != nil {
			return err
		}
	}

	decoded := make([][]byte, len(entries))
	var g errgroup.Group
	g.SetLimit(a.config.Workers)
	for i, e := range entries {
		g.Go(func() error {
			data, err := a.codecs.Decode(e.Payload, e.Metadata)
			if err != nil {
				return &ArchiveError{Op: "decode", Path: e.Path, Err: err}
			}
			decoded[i] = data
			atomic.AddInt64(&a.stats.EntriesDecoded, 1)
			atomic.AddInt64(&a.stats.BytesDecoded, int64(len(data)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.fs.MkdirAll(outputRoot, 0755); err != nil {
		return fmt.Errorf("create output root %s: %w", outputRoot, err)
	}
	written := make([]string, 0, len(entries))
	for i, target := range targets {
		if err := a.materialize(target, decoded[i]); err != nil {
			a.rollback(written)
			return &ArchiveError{Op: "write", Path: entries[i].Path, Err: err}
		}
		written = append(written, target)
		a.logger.Debug("restored entry",
			"path", entries[i].Path,
			"algorithm", entries[i].Metadata.Algorithm,
			"size", len(decoded[i]))
	}

	atomic.AddInt64(&a.stats.ArchivesRead, 1)
	return nil
}

func (a *Archiver) materialize(target string, data []byte) error {
	if err := a.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return writeFile(a.fs, target, data, 0644)
}

// rollback removes files written by a failed Decompress, newest first
func (a *Archiver) rollback(written []string) {
	for i := len(written) - 1; i >= 0; i-- {
		if err := a.fs.Remove(written[i]); err != nil {
			a.logger.Warn("rollback failed", "path", written[i], "error", err)
		}
	}
}

// resolveEntryPath maps an archive path onto the host under root. Paths
// must be canonical, relative and free of ".." so they cannot leave root.
func resolveEntryPath(root, entryPath string) (string, error) {
	if entryPath == "" || path.Clean(entryPath) != entryPath || !filepath.IsLocal(filepath.FromSlash(entryPath)) {
		return "", &ArchiveError{Op: "resolve", Path: entryPath, Err: ErrPathEscape}
	}
	return filepath.Join(root, filepath.FromSlash(entryPath)), nil
}

// CompressFile archives inputPath and writes the archive to outputPath.
// The output is only created once the whole archive has been built.
func (a *Archiver) CompressFile(inputPath, outputPath string) error {
	archive, err := a.Compress(inputPath)
	if err != nil {
		return err
	}
	if err := a.fs.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(a.fs, outputPath, archive, fs.FileMode(0644)); err != nil {
		return fmt.Errorf("write archive %s: %w", outputPath, err)
	}
	return nil
}

// DecompressFile reads the archive at archivePath and restores it under
// outputRoot
func (a *Archiver) DecompressFile(archivePath, outputRoot string) error {
	archive, err := readFile(a.fs, archivePath)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	return a.Decompress(archive, outputRoot)
}
