package source

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// readBufferSize is the read-ahead buffer between the file and the decoder.
const readBufferSize = 1 << 20

// CompressedSuffixes lists the compression extensions tried, in order, when
// the plain dump file is missing.
var CompressedSuffixes = []string{".gz", ".bz2", ".zst", ".xz"}

// readCloser pairs a decoded stream with the cleanup of every layer below it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenFile opens name in fsys and returns a reader of the decompressed
// content, chosen by file extension. The caller must Close it.
func OpenFile(fsys fs.FS, name string) (io.ReadCloser, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	rc := &readCloser{closers: []func() error{f.Close}}
	buffered := bufio.NewReaderSize(f, readBufferSize)

	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read gzip header of %s: %w", name, err)
		}
		rc.Reader = zr
		rc.closers = append(rc.closers, zr.Close)
	case ".bz2":
		rc.Reader = bzip2.NewReader(buffered)
	case ".zst":
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", name, err)
		}
		rc.Reader = zr
		rc.closers = append(rc.closers, func() error { zr.Close(); return nil })
	case ".xz":
		xr, err := xz.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read xz header of %s: %w", name, err)
		}
		rc.Reader = xr
	default:
		rc.Reader = buffered
	}

	return rc, nil
}
