package service

import (
	"context"
	"time"
)

// CleanupJob prunes read notifications on a cron schedule.
type CleanupJob struct {
	service   NotificationService
	schedule  string
	retention time.Duration
}

func NewCleanupJob(service NotificationService, schedule string, retention time.Duration) *CleanupJob {
	return &CleanupJob{service: service, schedule: schedule, retention: retention}
}

func (j *CleanupJob) Name() string {
	return "notification-cleanup"
}

func (j *CleanupJob) Schedule() string {
	return j.schedule
}

func (j *CleanupJob) Run(ctx context.Context) error {
	_, err := j.service.Cleanup(ctx, j.retention)
	return err
}
