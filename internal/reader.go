package internal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// ScanFile reads the whole file at path and keeps the lines m accepts.
// Failures are reported through the result, never returned, so a bad file
// cannot take sibling scans down with it.
func ScanFile(path string, m Matcher) ScanResult {
	res := ScanResult{FilePath: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrFileAccess, err)
		return res
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrFileAccess, err)
		return res
	}
	if st.IsDir() {
		res.Err = fmt.Errorf("%w: is a directory", ErrFileAccess)
		return res
	}

	res.Lines, res.Err = scanReader(f, m)
	return res
}

// scanReader buffers the reader, rejects non UTF-8 content and returns the
// matching lines in their original order. Lines are split on '\n' with a
// trailing '\r' dropped; the last line does not need a terminator.
func scanReader(r io.Reader, m Matcher) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if !utf8.Valid(data) {
		return nil, ErrDecode
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	// a single line may be as long as the whole file
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		line := sc.Text()
		if m.Match(line) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return lines, nil
}
