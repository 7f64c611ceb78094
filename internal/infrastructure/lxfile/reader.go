// Package lxfile reads SCATS LX files from disk.
package lxfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingUTF16       = "utf-16"
)

// SupportedEncodings lists the encoding names accepted by NewReader.
func SupportedEncodings() []string {
	return []string{EncodingUTF8, EncodingWindows1252, EncodingUTF16}
}

// Reader loads an LX file as a slice of lines. A byte order mark, when
// present, overrides the configured encoding.
type Reader struct {
	encoding encoding.Encoding
	name     string
}

// NewReader creates a reader for the named encoding. An empty name means UTF-8.
func NewReader(name string) (*Reader, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var enc encoding.Encoding
	switch name {
	case "", EncodingUTF8, "utf8":
		name, enc = EncodingUTF8, unicode.UTF8
	case EncodingWindows1252, "cp1252":
		name, enc = EncodingWindows1252, charmap.Windows1252
	case EncodingUTF16, "utf16":
		name, enc = EncodingUTF16, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	default:
		return nil, fmt.Errorf("unsupported encoding %q (supported: %s)",
			name, strings.Join(SupportedEncodings(), ", "))
	}
	return &Reader{encoding: enc, name: name}, nil
}

// Encoding returns the configured encoding name.
func (r *Reader) Encoding() string {
	return r.name
}

// ReadLines opens path and returns its lines without terminators.
func (r *Reader) ReadLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open LX directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open LX file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	lines, err := r.ReadLinesFrom(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// ReadLinesFrom decodes lines from an arbitrary reader.
func (r *Reader) ReadLinesFrom(ctx context.Context, src io.Reader) ([]string, error) {
	decoded := transform.NewReader(src, unicode.BOMOverride(r.encoding.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		if len(lines)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
