package internal

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// entryHandler gets one regular archive entry. A file that is only
// compressed (notes.txt.gz) is a single entry with an empty name.
type entryHandler func(name string, open func() (io.ReadCloser, error)) error

// walkArchive makes one sequential pass over the archive at path. The
// handler may return iofs.SkipAll to stop early.
func walkArchive(ctx context.Context, path string, handle entryHandler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer f.Close()

	format, stream, err := archives.Identify(ctx, path, f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}

	switch format := format.(type) {
	case archives.Extractor:
		err = format.Extract(ctx, stream, func(ctx context.Context, info archives.FileInfo) error {
			if info.IsDir() {
				return nil
			}
			return handle(info.NameInArchive, func() (io.ReadCloser, error) { return info.Open() })
		})
	case archives.Decompressor:
		err = handle("", func() (io.ReadCloser, error) { return format.OpenReader(stream) })
		if err == iofs.SkipAll {
			err = nil
		}
	default:
		err = fmt.Errorf("unsupported format %s", format.Extension())
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}

// ListArchive returns the regular entries of the archive at path in
// archive order. Archives with more than maxArchiveFiles entries are cut.
func ListArchive(ctx context.Context, path string) ([]string, error) {
	var names []string
	err := walkArchive(ctx, path, func(name string, _ func() (io.ReadCloser, error)) error {
		if len(names) >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", path, maxArchiveFiles)
			return iofs.SkipAll
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ScanArchive is ScanFile for the listed entries of one archive. The archive
// is decompressed once and entries are matched in the order ListArchive
// returned them. The result always has one element per entry.
func ScanArchive(ctx context.Context, path string, entries []string, m Matcher) []ScanResult {
	out := make([]ScanResult, 0, len(entries))
	err := walkArchive(ctx, path, func(name string, open func() (io.ReadCloser, error)) error {
		if len(out) == len(entries) {
			return iofs.SkipAll
		}
		if name != entries[len(out)] {
			return fmt.Errorf("entry %q changed to %q since listing", entries[len(out)], name)
		}

		res := ScanResult{FilePath: path, InnerPath: name}
		rc, err := open()
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrFileAccess, err)
		} else {
			res.Lines, res.Err = scanReader(rc, m)
			rc.Close()
		}
		out = append(out, res)
		return ctx.Err()
	})

	// whatever was not reached fails with the walk error
	if err == nil {
		err = fmt.Errorf("%w: entry missing from archive", ErrFileAccess)
	}
	for i := len(out); i < len(entries); i++ {
		out = append(out, ScanResult{FilePath: path, InnerPath: entries[i], Err: err})
	}
	return out
}
