package internal

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// AppStats atomic counters for totals
type AppStats struct {
	start          time.Time
	FilesFound     atomic.Int64
	FilesProcessed atomic.Int64
	Matches        atomic.Int64
	Errors         atomic.Int64
}

func (s *AppStats) Start() {
	s.start = time.Now()
}

func (s *AppStats) Elapsed() time.Duration {
	return time.Since(s.start)
}

func (s *AppStats) record(res ScanResult) {
	s.FilesProcessed.Add(1)
	if res.Err != nil {
		s.Errors.Add(1)
		return
	}
	s.Matches.Add(int64(len(res.Lines)))
}

func (s *AppStats) fields() logrus.Fields {
	return logrus.Fields{
		"found":     s.FilesFound.Load(),
		"processed": s.FilesProcessed.Load(),
		"matches":   s.Matches.Load(),
		"errors":    s.Errors.Load(),
	}
}
