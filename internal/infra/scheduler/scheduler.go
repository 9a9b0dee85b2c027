package scheduler

import (
	"context"
	"fmt"
	"time"

	"reminder_relay/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type bootTrigger interface {
	HandleBootCompleted(ctx context.Context, action string) bool
}

// RescheduleScheduler raises boot-completed on daemon start and on a cron schedule,
// so reminders are re-armed after restarts and periodically thereafter.
type RescheduleScheduler struct {
	cronEngine *cron.Cron
	trigger    bootTrigger
	logger     *logrus.Entry
	cronSpec   string // empty disables the periodic job
	onStart    bool
}

func NewRescheduleScheduler(
	trigger bootTrigger,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 4 * * *" (4:00 AM daily)
	onStart bool,
) *RescheduleScheduler {
	return &RescheduleScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		trigger:    trigger,
		logger:     logger,
		cronSpec:   cronSpec,
		onStart:    onStart,
	}
}

func (s *RescheduleScheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting reschedule scheduler...")

	if s.cronSpec != "" {
		_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
			s.logger.Info("Cron job triggered for periodic reschedule.")
			s.trigger.HandleBootCompleted(ctx, app.ActionBootCompleted)
		})
		if err != nil {
			return fmt.Errorf("could not add reschedule cron job %q: %w", s.cronSpec, err)
		}
	}

	if s.onStart {
		s.logger.Info("Treating daemon start as boot completed.")
		s.trigger.HandleBootCompleted(ctx, app.ActionBootCompleted)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Reschedule scheduler started.")
	return nil
}

func (s *RescheduleScheduler) Stop() {
	s.logger.Info("Stopping reschedule scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reschedule scheduler gracefully stopped.")
}
