package feedimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleExpiredCleanup sets up a daily job that deletes stories past their
// expiration. Listing already filters expired stories out, the job just
// keeps the tables from growing without bound.
func (f *FeedImpl) ScheduleExpiredCleanup(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	hour := f.Config.Stories.CleanupHour
	if hour < 0 || hour > 23 {
		hour = 3
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				f.Logger.Info("Context cancelled, stopping story cleanup job")
				return
			}

			f.Logger.Info("Starting scheduled expired story cleanup")

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			rowsDeleted, err := f.StoryRepo.CleanupExpired(cleanupCtx, time.Now())
			if err != nil {
				f.Logger.Error("Failed to clean up expired stories", "error", err)
				return
			}

			f.Logger.Info("Expired story cleanup completed", "rows_deleted", rowsDeleted)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule story cleanup: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		f.Logger.Info("Stopping story cleanup scheduler")
		if err := scheduler.Shutdown(); err != nil {
			f.Logger.Error("Failed to shut down cleanup scheduler", "error", err)
		}
	}()

	return nil
}
