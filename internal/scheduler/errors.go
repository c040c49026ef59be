// Package scheduler runs a maintenance task on a cron schedule.
package scheduler

import "errors"

var (
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
	ErrSchedulerNotRunning     = errors.New("scheduler is not running")
	ErrInvalidSchedule         = errors.New("invalid cron expression")
)
