// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
codec.go - Snapshot Encoding and Framing

Snapshots serialize to a single JSON document, optionally framed in gzip or
zstd. The frame is chosen per backup and recorded both in the backup record
and in the file extension, so a directory scan can recover it without the
catalog:

	backup-{id}-{timestamp}.json       plain JSON
	backup-{id}-{timestamp}.json.gz    gzip frame
	backup-{id}-{timestamp}.json.zst   zstd frame

Encode writes the full document through the frame writer and closes the
frame (compressed frames buffer internally; an unclosed frame is a
truncated file). Decode is strict: anything Encode cannot have produced
fails with a *DecodeError rather than a partial result.
*/

//nolint:staticcheck // File documentation, not package doc
package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Encoding selects the on-disk frame around the JSON document.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingGzip
	EncodingZstd
)

// String returns the canonical config spelling of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingGzip:
		return "json.gz"
	case EncodingZstd:
		return "json.zst"
	default:
		return "json"
	}
}

// Ext returns the filename extension, dot included.
func (e Encoding) Ext() string {
	return "." + e.String()
}

// Compressed reports whether the encoding applies a compression frame.
func (e Encoding) Compressed() bool {
	return e == EncodingGzip || e == EncodingZstd
}

// ParseEncoding maps a config value to an Encoding. The short aliases
// ("gzip", "zstd") are accepted alongside the canonical extensions.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json", "none":
		return EncodingJSON, nil
	case "json.gz", "gz", "gzip":
		return EncodingGzip, nil
	case "json.zst", "zst", "zstd":
		return EncodingZstd, nil
	default:
		return EncodingJSON, fmt.Errorf("unknown snapshot encoding %q", s)
	}
}

// EncodingForFilename infers the encoding from a snapshot filename.
func EncodingForFilename(name string) (Encoding, bool) {
	switch {
	case strings.HasSuffix(name, ".json.gz"):
		return EncodingGzip, true
	case strings.HasSuffix(name, ".json.zst"):
		return EncodingZstd, true
	case strings.HasSuffix(name, ".json"):
		return EncodingJSON, true
	default:
		return EncodingJSON, false
	}
}

// Encode writes the snapshot document to w under the given encoding.
func Encode(w io.Writer, snap *Snapshot, enc Encoding) error {
	data, err := snap.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	switch enc {
	case EncodingJSON:
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		return nil

	case EncodingGzip:
		zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return fmt.Errorf("failed to create gzip writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close() //nolint:errcheck // Best effort cleanup on error
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip frame: %w", err)
		}
		return nil

	case EncodingZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close() //nolint:errcheck // Best effort cleanup on error
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish zstd frame: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown snapshot encoding %d", enc)
	}
}

// Decode reads a full snapshot document from r under the given encoding.
// Malformed input returns a *DecodeError; it never returns a partial
// snapshot.
func Decode(r io.Reader, enc Encoding) (*Snapshot, error) {
	fr, closeFrame, err := frameReader(r, enc)
	if err != nil {
		return nil, err
	}
	defer closeFrame()

	return decodeDocument(fr)
}

// Peek reads only the document header: id, raw timestamp text, and table
// names. Row contents are skipped, not validated. This is the shallow read
// import uses, where row-level problems deliberately stay undetected until
// restore or test-restore.
func Peek(r io.Reader, enc Encoding) (*Header, error) {
	fr, closeFrame, err := frameReader(r, enc)
	if err != nil {
		return nil, err
	}
	defer closeFrame()

	return peekDocument(fr)
}

// frameReader unwraps the compression frame. The returned func releases
// frame resources; it never fails the decode.
func frameReader(r io.Reader, enc Encoding) (io.Reader, func(), error) {
	switch enc {
	case EncodingJSON:
		return r, func() {}, nil
	case EncodingGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, &DecodeError{Msg: "bad gzip frame", Err: err}
		}
		return zr, func() { zr.Close() }, nil //nolint:errcheck // Best effort cleanup
	case EncodingZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, &DecodeError{Msg: "bad zstd frame", Err: err}
		}
		return zr, zr.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot encoding %d", enc)
	}
}
