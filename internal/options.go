package internal

import (
	"errors"
	"fmt"
	"runtime"
)

// ScanOptions - public options from CLI.
type ScanOptions struct {
	Pattern  string // may be empty: matches every line
	Mode     MatchMode
	Files    []string
	Threads  int
	Archives bool
	Progress bool
}

// Validate checks invariants.
func (o *ScanOptions) Validate() error {
	if len(o.Files) == 0 {
		return errors.New("at least one FILE is required")
	}
	if o.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", o.Threads)
	}
	if o.Mode != ExtendedRegexp && o.Mode != FixedStrings {
		return fmt.Errorf("unknown match mode %s", o.Mode)
	}
	return nil
}

// Prepare sets sensible defaults.
func (o *ScanOptions) Prepare() {
	if o.Threads <= 0 {
		o.Threads = defaultThreads()
	}
}

func defaultThreads() int { return max(32, runtime.GOMAXPROCS(0)*4) }

// poolSize never starts more workers than there are tasks.
func (o *ScanOptions) poolSize(tasks int) int {
	threads := o.Threads
	if threads <= 0 {
		threads = defaultThreads()
	}
	return max(1, min(threads, tasks))
}
