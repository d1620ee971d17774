package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
)

const reminderTimeout = 5 * time.Minute

// ReminderSender queues expiry reminders for memberships ending within days.
type ReminderSender interface {
	SendExpiryReminders(ctx context.Context, days int) (int, error)
}

type Scheduler struct {
	cron      *cron.Cron
	reminders ReminderSender
	days      int
}

// New registers the reminder job at spec (standard five field cron syntax).
func New(reminders ReminderSender, spec string, days int) (*Scheduler, error) {
	l := cronLogger{}
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
		reminders: reminders,
		days:      days,
	}

	if _, err := s.cron.AddFunc(spec, s.RunReminders); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "reminder_days", s.days)
}

// Stop halts scheduling and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	start := time.Now()
	sent, err := s.reminders.SendExpiryReminders(ctx, s.days)
	if err != nil {
		logger.Error("expiry reminder run failed", "error", err.Error())
		return
	}
	logger.Info("expiry reminder run finished", "queued", sent, "duration", time.Since(start).String())
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
