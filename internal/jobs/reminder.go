package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"prepwise/interview/internal/notify"
	"prepwise/interview/internal/repositories"
)

// ReminderJob emails owners of scheduled interviews coming up within
// the next day. Reminders are advisory: a failed send is logged and
// never retried within the run.
type ReminderJob struct {
	schedules repositories.ScheduleRepository
	notifier  notify.Notifier
	config    *ReminderConfig
	logger    *zap.Logger
	cron      *cron.Cron
	now       func() time.Time
}

// ReminderConfig contains configuration for the reminder job
type ReminderConfig struct {
	Schedule string        // Cron schedule (e.g., "0 8 * * *" for 8 AM daily)
	Enabled  bool          // Whether to run reminders
	Window   time.Duration // How far ahead to look for upcoming slots
}

func NewReminderJob(schedules repositories.ScheduleRepository, notifier notify.Notifier, config *ReminderConfig, logger *zap.Logger) *ReminderJob {
	return &ReminderJob{
		schedules: schedules,
		notifier:  notifier,
		config:    config,
		logger:    logger,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start begins the scheduled reminder job
func (rj *ReminderJob) Start() error {
	if !rj.config.Enabled {
		rj.logger.Info("interview reminders are disabled, skipping scheduler")
		return nil
	}

	_, err := rj.cron.AddFunc(rj.config.Schedule, func() {
		if err := rj.RunOnce(context.Background()); err != nil {
			rj.logger.Error("reminder job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	rj.cron.Start()
	rj.logger.Info("interview reminder job started", zap.String("schedule", rj.config.Schedule))

	return nil
}

// Stop stops the scheduled reminder job
func (rj *ReminderJob) Stop() {
	if rj.cron != nil {
		rj.cron.Stop()
		rj.logger.Info("interview reminder job stopped")
	}
}

// RunOnce performs a single reminder sweep
func (rj *ReminderJob) RunOnce(ctx context.Context) error {
	from := rj.now().UTC()
	to := from.Add(rj.config.Window)

	upcoming, err := rj.schedules.ListDueBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list upcoming interviews: %w", err)
	}

	if len(upcoming) == 0 {
		return nil
	}

	sent := 0
	for _, schedule := range upcoming {
		subject := fmt.Sprintf("Upcoming %s interview practice", schedule.Category)
		body := fmt.Sprintf(
			"You have a %s practice interview scheduled for %s.\n\nNotes: %s\n",
			schedule.Category,
			schedule.ScheduledFor.Format("Mon, 2 Jan 2006 at 15:04 MST"),
			schedule.Notes,
		)

		// The owner id doubles as the notification address here; the
		// identity provider guarantees it is an email.
		if err := rj.notifier.Send(schedule.OwnerID, subject, body); err != nil {
			rj.logger.Warn("failed to send reminder",
				zap.String("schedule_id", schedule.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	rj.logger.Info("reminder sweep finished",
		zap.Int("upcoming", len(upcoming)),
		zap.Int("sent", sent))

	return nil
}
