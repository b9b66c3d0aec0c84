/*
scheduler.go - Background reminder digest

PURPOSE:
  Periodically recomputes today's reminders so the metrics stay current
  between dashboard views, and logs one digest line per calendar day:
  birthdays today, birthdays this week, policies due for renewal.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Opens its own store session per check, like a request would
  - Logs the digest only the first time a check runs on a new day

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetDashboard, ListBirthdays (same figures on demand)
  - dashboard/reminders.go: Reminder engine
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/samvbk/insurance-dashboard/dashboard"
	"github.com/samvbk/insurance-dashboard/records"
	"go.uber.org/zap"
)

// Digest is the result of one reminder check.
type Digest struct {
	Day               time.Time
	BirthdaysToday    int
	BirthdaysUpcoming int
	RenewalsDue       int
}

// ReminderScheduler refreshes reminder figures in the background.
type ReminderScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	logger *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	digestMu   sync.Mutex
	lastDigest time.Time
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(handler *Handler, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		Handler:       handler,
		CheckInterval: time.Hour,
		Enabled:       true,
		logger:        logger.Named("scheduler"),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled || rs.CheckInterval <= 0 {
		rs.logger.Info("disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.logger.Info("started", zap.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for a running check to finish.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.logger.Info("stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.check()

	for {
		select {
		case <-rs.ticker.C:
			rs.check()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) check() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := rs.RunNow(ctx); err != nil {
		rs.logger.Error("reminder check failed", zap.Error(err))
	}
}

// RunNow computes today's reminders, updates the gauges and logs the digest
// if this is the first check of the day.
func (rs *ReminderScheduler) RunNow(ctx context.Context) (*Digest, error) {
	h := rs.Handler
	today := h.today()

	var (
		b        *dashboard.Birthdays
		renewals []dashboard.Renewal
	)
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		if b, err = h.Reminders.Birthdays(ctx, st, today); err != nil {
			return err
		}
		renewals, err = h.Reminders.UpcomingRenewals(ctx, st, today)
		return err
	})
	if err != nil {
		return nil, err
	}

	d := &Digest{
		Day:               today,
		BirthdaysToday:    len(b.Today),
		BirthdaysUpcoming: len(b.Upcoming),
		RenewalsDue:       len(renewals),
	}
	h.metrics.RenewalsPending.Set(float64(d.RenewalsDue))
	h.metrics.BirthdaysToday.Set(float64(d.BirthdaysToday))

	if rs.firstOfDay(today) {
		rs.logger.Info("daily reminders",
			zap.String("date", today.Format(records.DisplayLayout)),
			zap.Int("birthdays_today", d.BirthdaysToday),
			zap.Int("birthdays_upcoming", d.BirthdaysUpcoming),
			zap.Int("renewals_due", d.RenewalsDue),
			zap.Int("unreadable_dobs", b.Unreadable),
		)
	}
	return d, nil
}

// firstOfDay reports whether day has not been digested yet and marks it.
func (rs *ReminderScheduler) firstOfDay(day time.Time) bool {
	rs.digestMu.Lock()
	defer rs.digestMu.Unlock()

	if day.Equal(rs.lastDigest) {
		return false
	}
	rs.lastDigest = day
	return true
}
