// Package vcf provides line-level access to plain and gzipped VCF files.
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// Supported extensions.
const (
	ExtVCF  = ".vcf"
	ExtGzip = ".gz"
)

// ErrUnsupportedFileType is returned by Open for paths that end in neither
// ".vcf" nor ".gz".
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Compression is how a path's bytes are decoded.
type Compression int

const (
	Plain Compression = iota
	Gzip
)

// DetectCompression picks the decoder from the file extension.
func DetectCompression(path string) (Compression, error) {
	switch {
	case strings.HasSuffix(path, ExtVCF):
		return Plain, nil
	case strings.HasSuffix(path, ExtGzip):
		return Gzip, nil
	}
	return Plain, fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
}

// Reader yields one decoded line at a time.
type Reader struct {
	reader     *bufio.Reader
	file       afero.File
	gzipReader *gzip.Reader
	lineNumber int
	closed     bool
}

// Open opens path on fs. Files ending in ".vcf" are read as plain text and
// files ending in ".gz" are decompressed as a stream; anything else is
// rejected before the file is opened.
func Open(fs afero.Fs, path string) (*Reader, error) {
	comp, err := DetectCompression(path)
	if err != nil {
		return nil, err
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r := &Reader{file: file}
	switch comp {
	case Gzip:
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	default:
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// NewReader wraps an already-decoded stream (e.g. stdin).
func NewReader(rd io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(rd)}
}

// Next returns the next line without its terminator.
// ok is false once the stream is exhausted.
func (r *Reader) Next() (line string, ok bool, err error) {
	line, err = r.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return "", false, fmt.Errorf("read line: %w", err)
		}
		// Last line without a trailing newline.
		if line == "" {
			return "", false, nil
		}
	}
	r.lineNumber++

	return strings.TrimRight(line, "\r\n"), true, nil
}

// LineNumber returns the number of lines returned so far.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
