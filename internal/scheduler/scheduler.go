package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Scheduler provides the two scheduling capabilities the poller needs:
// one-shot deferred calls (retry and refresh follow-ups) and a repeating
// run at a fixed minute of every hour (the device-update cadence).
type Scheduler interface {
	CallLater(d time.Duration, fn func())
	HourlyAt(minute int, fn func()) error
}

// Gocron implements Scheduler on a shared gocron scheduler. Jobs run in
// singleton mode so a slow run is never re-entered by its own follow-up.
type Gocron struct {
	scheduler *gocron.Scheduler
	log       *zap.Logger
}

// New creates a Gocron scheduler in UTC.
func New(log *zap.Logger) *Gocron {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Gocron{
		scheduler: s,
		log:       log,
	}
}

// Start starts the underlying scheduler asynchronously.
func (g *Gocron) Start() {
	g.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels any future jobs.
func (g *Gocron) Stop() {
	g.scheduler.Stop()
}

// CallLater runs fn once after d. Once scheduled it always fires; there is
// no per-call cancellation.
func (g *Gocron) CallLater(d time.Duration, fn func()) {
	_, err := g.scheduler.Every(d).WaitForSchedule().LimitRunsTo(1).Do(fn)
	if err != nil {
		g.log.Error("scheduler: deferred call", zap.Duration("delay", d), zap.Error(err))
	}
}

// HourlyAt runs fn at the given minute of every hour, repeating.
func (g *Gocron) HourlyAt(minute int, fn func()) error {
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute %d out of range", minute)
	}
	_, err := g.scheduler.Cron(fmt.Sprintf("%d * * * *", minute)).Do(fn)
	return err
}
