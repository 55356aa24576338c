package kpi

import (
	"context"
	"time"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/task"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type taskSpan struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecalculateMonthlyKPIs appends TASK_COMPLETION_RATE and AVG_COMPLETION_TIME
// for the window from the first of the current month to now. Every call adds
// two rows.
func (s *Service) RecalculateMonthlyKPIs(ctx context.Context) (*MonthlyKPIs, error) {
	zapLog := logger.FromContext(ctx)

	now := s.now()
	start := monthStart(now, s.loc)
	end := now.UTC()

	var (
		total, completed int64
		spans            []taskSpan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&task.Task{}).
			Where("created_at >= ? AND created_at <= ?", start, end).
			Count(&total).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&task.Task{}).
			Where("status = ? AND updated_at >= ? AND updated_at <= ?", task.StatusCompleted, start, end).
			Count(&completed).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&task.Task{}).
			Select("created_at, updated_at").
			Where("status = ? AND updated_at >= ? AND updated_at <= ?", task.StatusCompleted, start, end).
			Scan(&spans).Error
	})
	if err := g.Wait(); err != nil {
		zapLog.Error("failed to gather kpi inputs", zap.Error(err))
		return nil, errutil.Internal("failed to gather kpi inputs", err)
	}

	var days float64
	for _, sp := range spans {
		days += fractionalDays(sp.CreatedAt, sp.UpdatedAt)
	}

	result := &MonthlyKPIs{
		WindowStart:       start,
		CompletionRate:    percentage(completed, total),
		AvgCompletionTime: mean(days, len(spans)),
	}
	result.Metrics = []*KPIMetric{
		{ID: s.node.Generate().String(), Date: end, MetricName: MetricTaskCompletionRate, Value: result.CompletionRate, Unit: UnitPercentage},
		{ID: s.node.Generate().String(), Date: end, MetricName: MetricAvgCompletionTime, Value: result.AvgCompletionTime, Unit: UnitDays},
	}
	if err := s.metrics.BatchCreate(ctx, result.Metrics); err != nil {
		zapLog.Error("failed to store kpi metrics", zap.Error(err))
		return nil, errutil.Internal("failed to store kpi metrics", err)
	}

	zapLog.Info("kpis recalculated",
		zap.Time("window_start", start),
		zap.Float64("completion_rate", result.CompletionRate),
		zap.Float64("avg_completion_days", result.AvgCompletionTime),
	)
	return result, nil
}

func monthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).UTC()
}
