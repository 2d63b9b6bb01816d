// Package scheduler holds the periodic jobs run by cmd/scheduler.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/service"
)

type Jobs struct {
	service *service.PanelService
	logger  *log.Logger
	timeout time.Duration
}

func NewJobs(service *service.PanelService, timeout time.Duration, logger *log.Logger) *Jobs {
	if logger == nil {
		logger = log.Nop()
	}
	return &Jobs{
		service: service,
		logger:  logger.WithComponent(log.ComponentScheduler),
		timeout: timeout,
	}
}

// Register schedules the digest refresh and the weekly due reminder.
// Specs use the six-field format with seconds.
func (j *Jobs) Register(c *cron.Cron, digestSpec, reminderSpec string) error {
	if _, err := c.AddFunc(digestSpec, j.runRefreshDigest); err != nil {
		return fmt.Errorf("schedule digest refresh %q: %w", digestSpec, err)
	}
	if _, err := c.AddFunc(reminderSpec, j.runDueReminders); err != nil {
		return fmt.Errorf("schedule due reminders %q: %w", reminderSpec, err)
	}
	return nil
}

func (j *Jobs) runRefreshDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_ = j.RefreshDigest(ctx)
}

func (j *Jobs) runDueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.DueReminders(ctx)
}

// RefreshDigest recomputes and stores the due-fee digest
func (j *Jobs) RefreshDigest(ctx context.Context) error {
	j.logger.InfoContext(ctx, "running job", log.FieldOperation, "refresh_digest")

	if _, err := j.service.RefreshDigest(ctx); err != nil {
		j.logger.ErrorContext(ctx, "digest refresh failed", log.FieldError, err)
		return err
	}
	return nil
}

// DueReminders logs one reminder line per student with an outstanding balance
// and returns how many were issued.
func (j *Jobs) DueReminders(ctx context.Context) (int, error) {
	j.logger.InfoContext(ctx, "running job", log.FieldOperation, "due_reminders")

	digest, err := j.service.DueFees(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "due reminder job failed", log.FieldError, err)
		return 0, err
	}

	for _, due := range digest.DueFees {
		j.logger.InfoContext(ctx, "fee reminder",
			log.FieldStudentID, due.Student.ID,
			"student", due.Student.Name,
			"roll_number", due.Student.RollNumber,
			"due_amount", due.DueAmount.StringFixed(2),
		)
	}

	j.logger.InfoContext(ctx, "due reminders issued", log.FieldCount, len(digest.DueFees))
	return len(digest.DueFees), nil
}
