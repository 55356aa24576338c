package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/queue"
	"taskforge-controlplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Scheduler struct {
	enqueuer queue.Enqueuer
	hour     int
	minute   int
	loc      *time.Location
	now      func() time.Time
}

func NewScheduler(cfg *config.Config, enqueuer queue.Enqueuer) *Scheduler {
	return &Scheduler{
		enqueuer: enqueuer,
		hour:     cfg.Scheduler.Hour,
		minute:   cfg.Scheduler.Minute,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

// StartScheduler runs the daily loop for the lifetime of the app when
// SCHEDULER.ENABLE is set.
func StartScheduler(lc fx.Lifecycle, cfg *config.Config, s *Scheduler) {
	if !cfg.Scheduler.Enable {
		zap.L().Info("[Scheduler] disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started daily job scheduler",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.String("timezone", s.loc.String()),
	)

	for {
		now := s.now().In(s.loc)
		next := nextRunTime(now, s.hour, s.minute)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)

		timer := time.NewTimer(sleepDuration)
		select {
		case <-timer.C:
			if err := s.EnqueueDaily(ctx, "scheduler"); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue daily run", zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

// EnqueueDaily queues one daily run per calendar day. A second enqueue for
// the same day is a no-op.
func (s *Scheduler) EnqueueDaily(ctx context.Context, trigger string) error {
	now := s.now().In(s.loc)
	payload, err := json.Marshal(DailyPayload{Trigger: trigger, At: now.UTC()})
	if err != nil {
		return err
	}

	taskID := fmt.Sprintf("daily-%s", now.Format("2006-01-02"))
	info, err := s.enqueuer.Enqueue(ctx, asynq.NewTask(taskname.DailyRun, payload),
		asynq.Queue("critical"),
		asynq.TaskID(taskID),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		zap.L().Info("[Scheduler] daily run already queued", zap.String("task_id", taskID))
		return nil
	}
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.String("task_id", taskID)}
	if info != nil {
		fields = append(fields, zap.String("queue", info.Queue))
	}
	zap.L().Info("[Scheduler] enqueued daily run", fields...)
	return nil
}

// nextRunTime returns the next hour:minute at or after now, in now's location.
func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
