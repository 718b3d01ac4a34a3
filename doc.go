// Package dhc builds dynamic hybrid compression archives: one file or a
// directory tree packed into a single archive that records, per entry, the
// transform that was applied, so decompression never needs outside hints.
//
// Each entry is classified by magic bytes into text, image or audio. The
// category's first candidate algorithm encodes it:
//
//   - text:  lz-generic (zlib), alternatives lz-dictionary (brotli), lzma-like (xz)
//   - image: jpeg, alternatives png, webp
//   - audio: mp3, alternatives flac, aac
//
// Text entries can instead use any lossless algorithm, including zstd, lz4
// and snappy, through Config.TextAlgorithm. Lossless entries round-trip
// exactly and carry a blake3 digest; image and audio entries are
// re-encoded and decode to a viewable or playable rendering rather than the
// original bytes.
//
// # Archive Layout
//
//	archive := header_len:u32le header body
//	single  := payload
//	multi   := (path_len:u32le path payload_len:u32le payload)*
//
// The header is JSON. A multi-file header maps each entry path to its
// metadata in archive order; a single-file header is the metadata object
// itself, identified by its top-level "algorithm" member.
//
// # Quick Start
//
//	a, _ := dhc.New(nil, dhc.RecommendedConfig())
//
//	// Archive a directory
//	archive, _ := a.Compress("photos")
//
//	// Restore it somewhere else
//	_ = a.Decompress(archive, "restored")
//
// # Filesystems
//
// Archivers read and write through FileSystem. OSFS is the host filesystem
// and NewMemFS is an in-memory one for tests or archiving without disk I/O.
//
// # Audio
//
// The default AudioTranscoder runs ffmpeg over stdin/stdout. Without ffmpeg
// audio entries fail with ErrTranscoderUnavailable; supply another
// transcoder in Config.Transcoder to avoid the dependency.
package dhc
