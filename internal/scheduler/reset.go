// Package scheduler runs the recurring weekly quota reset. The sweep is
// idempotent: a quota is only selected while its reset timestamp has elapsed,
// and resetting it advances that timestamp, so firing more often than needed is
// harmless.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/ledger"
	"github.com/mentorhub/bookings/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "scheduler"})

// SweepResult summarizes one reset sweep. Failures of individual users never
// block the rest of the sweep, so the two counts can differ.
type SweepResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
}

// RunResets resets the quota of every mentorship-active user whose reset
// timestamp has elapsed. Each user's reset runs in its own transaction.
func RunResets(ctx context.Context, gormdb *gorm.DB, now time.Time) (SweepResult, error) {
	var result SweepResult

	quotas, err := db.ListResetDueQuotas(ctx, gormdb, now)
	if err != nil {
		return result, err
	}
	result.Total = len(quotas)

	for _, quota := range quotas {
		err := gormdb.Transaction(func(tx *gorm.DB) error {
			return ledger.Reset(ctx, tx, quota.UserID, now)
		})
		if err != nil {
			log.WithFields(logrus.Fields{"user": quota.UserID}).
				Errorf("unable to reset the user's quota: %s", err.Error())
			continue
		}
		result.Succeeded++
	}

	if result.Total > 0 {
		log.WithFields(logrus.Fields{"succeeded": result.Succeeded, "total": result.Total}).
			Info("completed the weekly quota reset sweep")
	}

	return result, nil
}

// ResetScheduler periodically sweeps for quotas that are due for their weekly
// reset.
type ResetScheduler struct {
	gormdb        *gorm.DB
	checkInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// now is replaceable for tests.
	now func() time.Time
}

// NewResetScheduler creates a new reset scheduler.
func NewResetScheduler(gormdb *gorm.DB, checkInterval time.Duration) *ResetScheduler {
	return &ResetScheduler{
		gormdb:        gormdb,
		checkInterval: checkInterval,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
}

// WithClock replaces the scheduler's clock, for tests.
func (rs *ResetScheduler) WithClock(now func() time.Time) *ResetScheduler {
	rs.now = now
	return rs
}

// Start begins the recurring sweep. The first sweep runs immediately.
func (rs *ResetScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ticker = time.NewTicker(rs.checkInterval)
	rs.wg.Add(1)
	go rs.run()

	log.Infof("started the reset scheduler with a check interval of %s", rs.checkInterval)
}

// Stop halts the recurring sweep and waits for an in-flight sweep to finish.
func (rs *ResetScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Info("stopped the reset scheduler")
	}
}

// RunNow triggers an immediate sweep, for admin endpoints and tests.
func (rs *ResetScheduler) RunNow(ctx context.Context) (SweepResult, error) {
	return RunResets(ctx, rs.gormdb, rs.now())
}

func (rs *ResetScheduler) run() {
	defer rs.wg.Done()

	rs.sweep()

	for {
		select {
		case <-rs.ticker.C:
			rs.sweep()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ResetScheduler) sweep() {
	if _, err := RunResets(context.Background(), rs.gormdb, rs.now()); err != nil {
		log.Errorf("reset sweep failed: %s", err.Error())
	}
}
