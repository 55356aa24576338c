package kpi

import (
	"context"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/task"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GenerateDigest counts tasks for the daily operations digest and logs it.
func (s *Service) GenerateDigest(ctx context.Context) (*Digest, error) {
	now := s.now().UTC()
	since := now.Add(-day)
	d := &Digest{GeneratedAt: now}

	count := func(dst *int64, query string, args ...any) func() error {
		return func() error {
			tx := s.db.WithContext(ctx).Model(&task.Task{})
			if query != "" {
				tx = tx.Where(query, args...)
			}
			return tx.Count(dst).Error
		}
	}

	var g errgroup.Group
	g.Go(count(&d.TotalTasks, ""))
	g.Go(count(&d.CompletedTasks, "status = ?", task.StatusCompleted))
	g.Go(count(&d.OverdueTasks, "status = ?", task.StatusOverdue))
	g.Go(count(&d.NewTasks, "created_at >= ? AND created_at < ?", since, now))
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("failed to build digest", zap.Error(err))
		return nil, errutil.Internal("failed to build digest", err)
	}
	d.CompletionRate = percentage(d.CompletedTasks, d.TotalTasks)

	logger.FromContext(ctx).Info("daily digest generated",
		zap.Time("generated_at", d.GeneratedAt),
		zap.Int64("total_tasks", d.TotalTasks),
		zap.Int64("completed_tasks", d.CompletedTasks),
		zap.Int64("overdue_tasks", d.OverdueTasks),
		zap.Int64("new_tasks_24h", d.NewTasks),
		zap.Float64("completion_rate", d.CompletionRate),
	)
	return d, nil
}
