package internal

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
)

// Outcome drives the exit status.
type Outcome struct {
	Matched bool
	Err     error // every per-file failure, aggregated
}

// ExitCode: 0 matched without errors, 1 nothing matched, 2 any failure.
func (o Outcome) ExitCode() int {
	switch {
	case o.Err != nil:
		return 2
	case o.Matched:
		return 0
	default:
		return 1
	}
}

// Reporter prints match blocks to out and one diagnostic line per failed
// file to errOut.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	header *color.Color // nil = plain headers
}

func NewReporter(out, errOut io.Writer, colorize bool) *Reporter {
	r := &Reporter{out: out, errOut: errOut}
	if colorize {
		r.header = color.New(color.FgMagenta, color.Bold)
		r.header.EnableColor()
	}
	return r
}

// Order returns a copy of results sorted by input position, whatever order
// they completed in.
func Order(results []ScanResult) []ScanResult {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b ScanResult) int { return cmp.Compare(a.Seq, b.Seq) })
	return ordered
}

// Report writes the grouped match report in input order.
func (r *Reporter) Report(results []ScanResult) Outcome {
	var (
		o    Outcome
		errs *multierror.Error
	)
	w := bufio.NewWriter(r.out)
	defer w.Flush()

	for _, res := range Order(results) {
		if res.Err != nil {
			fmt.Fprintf(r.errOut, "grep: %s: %v\n", res.Source(), res.Err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Source(), res.Err))
			continue
		}
		if len(res.Lines) == 0 {
			continue
		}
		o.Matched = true
		r.writeHeader(w, res.Source())
		for _, line := range res.Lines {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	o.Err = errs.ErrorOrNil()
	return o
}

func (r *Reporter) writeHeader(w io.Writer, source string) {
	if r.header == nil {
		fmt.Fprintln(w, source)
		return
	}
	r.header.Fprintln(w, source)
}

// ColorEnabled resolves --color: "always", "never" or "auto" (f is a terminal).
func ColorEnabled(when string, f *os.File) (bool, error) {
	switch when {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		return f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (want auto, always or never)", when)
	}
}
