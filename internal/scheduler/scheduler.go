package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rentfair/server/internal/market"
)

// Scheduler periodically rebuilds the market average table so refreshed
// listing files are picked up without a restart. Each rebuild swaps the
// whole table atomically; readers never see a partial one.
type Scheduler struct {
	table    *market.Table
	logger   *logrus.Logger
	interval time.Duration
	dir      string
	files    []string
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler for the given table and listing files.
func NewScheduler(table *market.Table, logger *logrus.Logger, interval time.Duration, dir string, files []string) *Scheduler {
	return &Scheduler{
		table:    table,
		logger:   logger,
		interval: interval,
		dir:      dir,
		files:    files,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic rebuilds. The initial build is the caller's
// job; the first scheduled one runs after a full interval.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.rebuild()
		}
	}
}

func (s *Scheduler) rebuild() {
	s.logger.Info("Rebuilding market average table")
	if err := s.table.Build(s.dir, s.files); err != nil {
		s.logger.WithError(err).Error("Market table rebuild failed")
		return
	}
	s.logger.WithField("regions", s.table.Len()).Info("Market table rebuild completed")
}

// Stop halts the scheduler and waits for a running rebuild to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
