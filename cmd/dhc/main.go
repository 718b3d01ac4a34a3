// dhc packs a file or directory tree into a dynamic hybrid compression
// archive and restores it.
//
//	dhc compress [flags] <input>
//	dhc decompress [flags] <archive>
//	dhc list [flags] <archive>
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/absfs/dhc"
)

// usageError exits with status 2
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return usagef("missing command")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "compress":
		return runCompress(rest, stderr)
	case "decompress":
		return runDecompress(rest, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return usagef("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  dhc compress [flags] <input>       archive a file or directory
  dhc decompress [flags] <archive>   restore an archive
  dhc list [flags] <archive>         show archive entries

Run "dhc <command> --help" for command flags.
`)
}

// archiverFlags are shared by compress and decompress
type archiverFlags struct {
	configPath    string
	textAlgorithm string
	level         int
	workers       int
	checksums     bool
	ffmpegPath    string
	verbose       bool
}

func (f *archiverFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.textAlgorithm, "text-algorithm", "", "lossless algorithm for text entries (lz-generic, lz-dictionary, lzma-like, zstd, lz4, snappy)")
	fs.IntVar(&f.level, "level", 0, "compression level for lossless codecs")
	fs.IntVar(&f.workers, "workers", 0, "entries processed in parallel (default: GOMAXPROCS)")
	fs.BoolVar(&f.checksums, "checksums", true, "record and verify blake3 digests of lossless entries")
	fs.StringVar(&f.ffmpegPath, "ffmpeg", "", "ffmpeg binary used for audio entries")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every entry")
}

// archiver builds the archiver from the config file overlaid with the
// flags that were set explicitly
func (f *archiverFlags) archiver(fs *pflag.FlagSet, stderr io.Writer) (*dhc.Archiver, error) {
	config := dhc.DefaultConfig()
	if f.configPath != "" {
		loaded, err := dhc.LoadConfig(nil, f.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if fs.Changed("text-algorithm") {
		algo, err := dhc.ParseAlgorithm(f.textAlgorithm)
		if err != nil {
			return nil, usagef("--text-algorithm: %v", err)
		}
		config.TextAlgorithm = algo
	}
	if fs.Changed("level") {
		config.Level = f.level
	}
	if fs.Changed("workers") {
		config.Workers = f.workers
	}
	if fs.Changed("checksums") {
		config.Checksums = f.checksums
	}
	if fs.Changed("ffmpeg") {
		config.FFmpegPath = f.ffmpegPath
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	config.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return dhc.New(nil, config)
}

func parseFlags(fs *pflag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, usagef("%v", err)
	}
	if fs.NArg() != want {
		return nil, usagef("%s: expected %d argument(s), got %d", fs.Name(), want, fs.NArg())
	}
	return fs.Args(), nil
}

func runCompress(args []string, stderr io.Writer) error {
	var flags archiverFlags
	var output string
	fs := pflag.NewFlagSet("compress", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	fs.StringVarP(&output, "output", "o", "", "archive path (default: <input>.dhc)")

	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	input := rest[0]
	if output == "" {
		output = dhc.DefaultArchivePath(input)
	}

	a, err := flags.archiver(fs, stderr)
	if err != nil {
		return err
	}
	if err := a.CompressFile(input, output); err != nil {
		return err
	}

	stats := a.GetStats()
	slog.New(slog.NewTextHandler(stderr, nil)).Info("archive written",
		"output", output,
		"entries", stats.EntriesEncoded,
		"bytes", stats.BytesEncoded,
		"stored", stats.BytesStored,
		"saved_pct", fmt.Sprintf("%.1f", dhc.GetCompressionPercentage(stats.BytesEncoded, stats.BytesStored)))
	return nil
}

func runDecompress(args []string, stderr io.Writer) error {
	var flags archiverFlags
	var output string
	fs := pflag.NewFlagSet("decompress", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	fs.StringVarP(&output, "output", "o", "", "output directory (default: archive path without .dhc)")

	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	archivePath := rest[0]
	if output == "" {
		output = dhc.DefaultOutputRoot(archivePath)
	}

	a, err := flags.archiver(fs, stderr)
	if err != nil {
		return err
	}
	return a.DecompressFile(archivePath, output)
}

// listing is one row of `dhc list`
type listing struct {
	Path     string            `json:"path" yaml:"path"`
	Stored   int               `json:"stored" yaml:"stored"`
	Metadata dhc.EntryMetadata `json:"metadata" yaml:"metadata"`
}

func runList(args []string, stdout, stderr io.Writer) error {
	var format string
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&format, "format", "text", "output format: text, json or yaml")

	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	data, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	entries, err := dhc.ReadArchive(data)
	if err != nil {
		return err
	}
	rows := make([]listing, len(entries))
	for i, e := range entries {
		rows[i] = listing{Path: e.Path, Stored: len(e.Payload), Metadata: e.Metadata}
	}

	switch format {
	case "text":
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tALGORITHM\tSIZE\tSTORED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Path, r.Metadata.Algorithm, r.Metadata.Size, r.Stored)
		}
		return tw.Flush()
	case "json":
		if err := json.MarshalWrite(stdout, rows, jsontext.WithIndent("  ")); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout)
		return err
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		return usagef("--format: unknown format %q", format)
	}
}
