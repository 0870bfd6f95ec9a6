package internal

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// FileScanner runs one scan task per input file (an archive is one task
// covering all its entries) on a bounded worker pool and reassembles the
// results in input order.
type FileScanner struct {
	stats       *AppStats
	progressOut io.Writer
	compile     func(pattern string, mode MatchMode) (Matcher, error)
}

func NewFileScanner(stats *AppStats, progressOut io.Writer) *FileScanner {
	if stats == nil {
		stats = &AppStats{}
	}
	if progressOut == nil {
		progressOut = io.Discard
	}
	return &FileScanner{stats: stats, progressOut: progressOut, compile: Compile}
}

// ScanResult is the outcome for one file or archive entry. Seq is its
// position in the input order and is how results are matched back to their
// source.
type ScanResult struct {
	Seq       int
	FilePath  string
	InnerPath string
	Lines     []string
	Err       error
}

// Source names the file for reports: the path, or archive:entry.
func (r ScanResult) Source() string {
	if r.InnerPath != "" {
		return r.FilePath + ":" + r.InnerPath
	}
	return r.FilePath
}

func (r ScanResult) Matched() bool { return r.Err == nil && len(r.Lines) > 0 }

// Task describes a unit of work. A plain file fills one result slot; an
// archive fills one slot per entry, starting at seq.
type Task struct {
	seq       int
	path      string
	entries   []string
	isArchive bool
	err       error // set when the task is known to fail before it runs
}

func (t Task) width() int {
	if t.isArchive {
		return len(t.entries)
	}
	return 1
}

func (t Task) failed(err error) []ScanResult {
	if !t.isArchive {
		return []ScanResult{{Seq: t.seq, FilePath: t.path, Err: err}}
	}
	out := make([]ScanResult, len(t.entries))
	for i, inner := range t.entries {
		out[i] = ScanResult{Seq: t.seq + i, FilePath: t.path, InnerPath: inner, Err: err}
	}
	return out
}

// Scan is the main pipeline. The only error it returns is run-wide (invalid
// pattern, pool setup); per-file failures come back inside the results.
// When ctx ends first, every slot still outstanding gets ctx.Err().
func (fs *FileScanner) Scan(ctx context.Context, opts ScanOptions) ([]ScanResult, error) {
	// no worker can do anything without a valid matcher
	m, err := fs.compile(opts.Pattern, opts.Mode)
	if err != nil {
		return nil, err
	}
	fs.stats.Start()

	tasks, total := fs.buildTasks(ctx, opts)
	fs.stats.FilesFound.Add(int64(total))
	if total == 0 {
		return nil, nil
	}
	logrus.WithFields(logrus.Fields{"matcher": m.Desc(), "tasks": len(tasks), "files": total}).Debug("Scan planned")

	// buffered so no worker send ever blocks, even after the collector left
	results := make(chan ScanResult, total)

	pool, err := ants.NewPoolWithFunc(opts.poolSize(len(tasks)), func(i interface{}) {
		for _, res := range fs.runTask(ctx, i.(Task), opts) {
			results <- res
		}
	}, ants.WithPanicHandler(func(p interface{}) {
		logrus.Errorf("worker panic outside task: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	// Release does not wait, so a worker stuck in a read cannot hold us here
	defer pool.Release()

	go func() {
		for _, t := range tasks {
			err := ctx.Err()
			if err == nil {
				if err = pool.Invoke(t); err != nil {
					logrus.WithError(err).WithField("file", t.path).Error("submit task")
					err = fmt.Errorf("submit: %w", err)
				}
			}
			if err != nil {
				for _, res := range t.failed(err) {
					results <- res
				}
			}
		}
	}()

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(fs.progressOut),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	// periodic stats
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	out := make([]ScanResult, total)
	filled := make([]bool, total)
	received := 0
	accept := func(res ScanResult) {
		if filled[res.Seq] {
			return
		}
		out[res.Seq] = res
		filled[res.Seq] = true
		received++
		fs.stats.record(res)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

collect:
	for received < total {
		select {
		case res := <-results:
			accept(res)
		case <-ctx.Done():
			// keep what already arrived, give up on the rest
			for drained := false; !drained; {
				select {
				case res := <-results:
					accept(res)
				default:
					drained = true
				}
			}
			for _, t := range tasks {
				for _, res := range t.failed(ctx.Err()) {
					accept(res)
				}
			}
			logrus.WithFields(fs.stats.fields()).Infof("Scan interrupted: %v", ctx.Err())
			break collect
		case <-ticker.C:
			logrus.WithFields(fs.stats.fields()).Debug("Stats")
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	logrus.WithFields(fs.stats.fields()).Infof("Scan finished in %s", fs.stats.Elapsed())
	return out, nil
}

// buildTasks numbers result slots in input order. With Archives set, an
// archive input is listed up front and its entries take consecutive slots.
func (fs *FileScanner) buildTasks(ctx context.Context, opts ScanOptions) ([]Task, int) {
	tasks := make([]Task, 0, len(opts.Files))
	next := 0
	add := func(t Task) {
		t.seq = next
		next += t.width()
		tasks = append(tasks, t)
	}

	for _, path := range opts.Files {
		if !opts.Archives || !IsArchive(path) {
			add(Task{path: path})
			continue
		}
		entries, err := ListArchive(ctx, path)
		if err != nil {
			// report the archive once instead of a partial listing
			add(Task{path: path, err: err})
			continue
		}
		if len(entries) == 0 {
			logrus.WithField("archive", path).Info("Archive has no entries")
			continue
		}
		add(Task{path: path, entries: entries, isArchive: true})
	}
	return tasks, next
}

// runTask always returns exactly t.width() results, whatever happens inside.
func (fs *FileScanner) runTask(ctx context.Context, t Task, opts ScanOptions) (res []ScanResult) {
	matcher := ""
	defer func() {
		if p := recover(); p != nil {
			res = t.failed(fmt.Errorf("%w: %v", ErrWorkerPanic, p))
		}
		for _, r := range res {
			fields := logrus.Fields{"file": r.Source(), "matcher": matcher}
			if r.Err != nil {
				fields["err"] = r.Err
				logrus.WithFields(fields).Debug("Scan failed")
			} else {
				fields["matches"] = len(r.Lines)
				logrus.WithFields(fields).Debug("Scanned")
			}
		}
	}()

	if t.err != nil {
		return t.failed(t.err)
	}
	if err := ctx.Err(); err != nil {
		return t.failed(err)
	}

	// each worker owns its matcher
	m, err := fs.compile(opts.Pattern, opts.Mode)
	if err != nil {
		return t.failed(err)
	}
	matcher = m.Desc()

	if !t.isArchive {
		r := ScanFile(t.path, m)
		r.Seq = t.seq
		return []ScanResult{r}
	}
	res = ScanArchive(ctx, t.path, t.entries, m)
	for i := range res {
		res[i].Seq = t.seq + i
	}
	return res
}
