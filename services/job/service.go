package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/kpi"
	"taskforge-controlplane/services/task"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskforge_job_runs_total",
		Help: "Daily chain steps by job name and outcome.",
	}, []string{"job", "status"})
	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskforge_job_duration_seconds",
		Help:    "Duration of daily chain steps.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	overdueMarked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskforge_tasks_marked_overdue_total",
		Help: "Tasks moved to OVERDUE by the sweep.",
	})
)

func init() {
	prometheus.MustRegister(jobRuns, jobDuration, overdueMarked)
}

type Sweeper interface {
	RunOverdueSweep(ctx context.Context) (task.SweepResult, error)
}

type Reporter interface {
	GenerateDigest(ctx context.Context) (*kpi.Digest, error)
	RecalculateMonthlyKPIs(ctx context.Context) (*kpi.MonthlyKPIs, error)
}

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	sweeper  Sweeper
	reporter Reporter
}

type Params struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
	Task *task.Service
	KPI  *kpi.Service
}

func NewService(p Params) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		sweeper:  p.Task,
		reporter: p.KPI,
	}
}

type RunReport struct {
	Sweep  task.SweepResult `json:"sweep"`
	Digest *kpi.Digest      `json:"digest"`
	KPIs   *kpi.MonthlyKPIs `json:"kpis"`
	Jobs   []string         `json:"jobs"`
}

// RunDaily runs the overdue sweep, the digest and the KPI recalculation in
// that order. The first failing step stops the chain.
func (s *Service) RunDaily(ctx context.Context) (*RunReport, error) {
	report := &RunReport{}

	steps := []struct {
		name string
		run  func(ctx context.Context) (any, error)
	}{
		{NameOverdueSweep, func(ctx context.Context) (any, error) {
			res, err := s.sweeper.RunOverdueSweep(ctx)
			if err == nil {
				report.Sweep = res
				overdueMarked.Add(float64(res.Updated))
			}
			return res, err
		}},
		{NameDigest, func(ctx context.Context) (any, error) {
			d, err := s.reporter.GenerateDigest(ctx)
			report.Digest = d
			return d, err
		}},
		{NameKPIRecalculate, func(ctx context.Context) (any, error) {
			k, err := s.reporter.RecalculateMonthlyKPIs(ctx)
			report.KPIs = k
			return k, err
		}},
	}

	for _, step := range steps {
		id, err := s.runStep(ctx, step.name, step.run)
		if id != "" {
			report.Jobs = append(report.Jobs, id)
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return report, nil
}

// runStep wraps fn with a Job record. Record-keeping errors are logged and
// never fail the step.
func (s *Service) runStep(ctx context.Context, name string, fn func(context.Context) (any, error)) (string, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("job", name))

	start := time.Now()
	job := Job{
		ID:        s.node.Generate().String(),
		Name:      name,
		Status:    StatusRunning,
		StartedAt: &start,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		zapLog.Warn("failed to record job start", zap.Error(err))
		job.ID = ""
	}

	result, runErr := fn(ctx)
	elapsed := time.Since(start)
	jobDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	completed := time.Now()
	updates := map[string]any{"completed_at": completed}
	if runErr != nil {
		jobRuns.WithLabelValues(name, string(StatusFailed)).Inc()
		updates["status"] = StatusFailed
		updates["error_msg"] = runErr.Error()
		zapLog.Error("job failed", zap.Duration("duration", elapsed), zap.Error(runErr))
	} else {
		jobRuns.WithLabelValues(name, string(StatusSuccess)).Inc()
		updates["status"] = StatusSuccess
		if meta, err := json.Marshal(result); err == nil {
			updates["metadata"] = datatypes.JSON(meta)
		}
		zapLog.Info("job finished", zap.Duration("duration", elapsed))
	}

	if job.ID != "" {
		if err := s.db.WithContext(ctx).Model(&Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			zapLog.Warn("failed to record job result", zap.Error(err))
		}
	}
	return job.ID, runErr
}

// HandleDailyRun is the asynq handler for taskname.DailyRun.
func (s *Service) HandleDailyRun(ctx context.Context, t *asynq.Task) error {
	var payload DailyPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			zap.L().Error("invalid daily run payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}

	zap.L().Info("Processing daily run", zap.String("trigger", payload.Trigger), zap.Time("at", payload.At))
	if _, err := s.RunDaily(ctx); err != nil {
		zap.L().Error("daily run failed", zap.Error(err))
		return err
	}
	zap.L().Info("Finished daily run")
	return nil
}

// HandleOverdueSweep, HandleDigest and HandleKPIRecalculate run a single
// step of the chain so operators can queue them one at a time.
func (s *Service) HandleOverdueSweep(ctx context.Context, _ *asynq.Task) error {
	_, err := s.runStep(ctx, NameOverdueSweep, func(ctx context.Context) (any, error) {
		res, err := s.sweeper.RunOverdueSweep(ctx)
		if err == nil {
			overdueMarked.Add(float64(res.Updated))
		}
		return res, err
	})
	return err
}

func (s *Service) HandleDigest(ctx context.Context, _ *asynq.Task) error {
	_, err := s.runStep(ctx, NameDigest, func(ctx context.Context) (any, error) {
		return s.reporter.GenerateDigest(ctx)
	})
	return err
}

func (s *Service) HandleKPIRecalculate(ctx context.Context, _ *asynq.Task) error {
	_, err := s.runStep(ctx, NameKPIRecalculate, func(ctx context.Context) (any, error) {
		return s.reporter.RecalculateMonthlyKPIs(ctx)
	})
	return err
}

func (s *Service) ListJobs(ctx context.Context, name string, page pagination.Pagination) ([]Job, error) {
	page = page.Normalize()
	var jobs []Job
	tx := s.db.WithContext(ctx).Order("created_at DESC").Limit(page.Limit).Offset(page.Offset)
	if name != "" {
		tx = tx.Where("name = ?", name)
	}
	if err := tx.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
