package timelog

import (
	"context"
	"time"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/minio"
	"taskforge-controlplane/pkg/repository"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	store minio.ObjectStore
	loc   *time.Location

	timeLogs     repository.Repository[TimeLog]
	externalLogs repository.Repository[ExternalLog]
	tasks        repository.Repository[task.Task]
	projects     repository.Repository[project.Project]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
	Store  minio.ObjectStore
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		store: p.Store,
		loc:   p.Config.Location(),

		timeLogs:     repository.ProvideStore[TimeLog](p.DB),
		externalLogs: repository.ProvideStore[ExternalLog](p.DB),
		tasks:        repository.ProvideStore[task.Task](p.DB),
		projects:     repository.ProvideStore[project.Project](p.DB),
	}
}

// CreateTimeLog records hours of the actor against a task of the actor's
// organization.
func (s *Service) CreateTimeLog(ctx context.Context, actor auth.Actor, req CreateTimeLogRequest) (*TimeLog, error) {
	if req.TaskID == "" {
		return nil, errutil.ValidationFailed("taskId is required", nil, errutil.WithField("taskId", "required"))
	}
	if req.Hours <= 0 {
		return nil, errutil.ValidationFailed("hours must be positive", nil, errutil.WithField("hours", "must be > 0"))
	}
	if req.Date.IsZero() {
		return nil, errutil.ValidationFailed("date is required", nil, errutil.WithField("date", "required"))
	}

	t, err := s.tasks.FindOne(ctx, &task.Task{ID: req.TaskID})
	if err != nil {
		return nil, errutil.Internal("failed to get task", err)
	}
	if t == nil {
		return nil, errutil.NotFound("task not found", nil, errutil.WithField("taskId", req.TaskID))
	}

	p, err := s.projects.FindOne(ctx, &project.Project{ID: t.ProjectID})
	if err != nil {
		return nil, errutil.Internal("failed to get project", err)
	}
	if p == nil || p.OrganizationID != actor.OrganizationID {
		return nil, errutil.Forbidden("task belongs to another organization", nil)
	}

	log := &TimeLog{
		ID:     s.node.Generate().String(),
		TaskID: t.ID,
		UserID: actor.UserID,
		Hours:  req.Hours,
		Date:   req.Date.UTC(),
	}
	if err := s.timeLogs.Create(ctx, log); err != nil {
		logger.FromContext(ctx).Error("failed to create time log", zap.Error(err))
		return nil, errutil.Internal("failed to create time log", err)
	}
	return log, nil
}

// ComputeWeeklyRollup aggregates internal time logs only.
func (s *Service) ComputeWeeklyRollup(ctx context.Context, f Filter) ([]Bucket, error) {
	entries, err := s.internalEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	return WeeklyRollup(entries, s.loc), nil
}

// ComputeCombinedWeeklyRollup aggregates internal and external logs. External
// hours count for the assignee of the task they resolved to.
func (s *Service) ComputeCombinedWeeklyRollup(ctx context.Context, f Filter) (*CombinedRollup, error) {
	entries, err := s.internalEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	external, err := s.externalEntries(ctx, f)
	if err != nil {
		return nil, err
	}

	weeks := WeeklyRollup(append(entries, external...), s.loc)
	return &CombinedRollup{Weeks: weeks, Summary: Summarize(weeks)}, nil
}

type logRow struct {
	UserID string
	Hours  float64
	Date   time.Time
}

func (s *Service) internalEntries(ctx context.Context, f Filter) ([]Entry, error) {
	var rows []logRow
	tx := s.db.WithContext(ctx).Table("time_logs").
		Select("time_logs.user_id, time_logs.hours, time_logs.date").
		Joins("JOIN tasks ON tasks.id = time_logs.task_id")
	if f.UserID != "" {
		tx = tx.Where("time_logs.user_id = ?", f.UserID)
	}
	tx = s.scope(tx, "time_logs", f)

	if err := tx.Scan(&rows).Error; err != nil {
		logger.FromContext(ctx).Error("failed to load time logs", zap.Error(err))
		return nil, errutil.Internal("failed to load time logs", err)
	}
	return toEntries(rows, false), nil
}

func (s *Service) externalEntries(ctx context.Context, f Filter) ([]Entry, error) {
	var rows []logRow
	tx := s.db.WithContext(ctx).Table("external_logs").
		Select("tasks.user_id, external_logs.hours, external_logs.date").
		Joins("JOIN tasks ON tasks.id = external_logs.task_id")
	if f.UserID != "" {
		tx = tx.Where("tasks.user_id = ?", f.UserID)
	}
	tx = s.scope(tx, "external_logs", f)

	if err := tx.Scan(&rows).Error; err != nil {
		logger.FromContext(ctx).Error("failed to load external logs", zap.Error(err))
		return nil, errutil.Internal("failed to load external logs", err)
	}
	return toEntries(rows, true), nil
}

// scope applies the organization, project and date filters shared by both
// log tables. tasks must already be joined.
func (s *Service) scope(tx *gorm.DB, table string, f Filter) *gorm.DB {
	if f.OrganizationID != "" {
		sub := s.db.Model(&project.Project{}).Select("id").Where("organization_id = ?", f.OrganizationID)
		tx = tx.Where("tasks.project_id IN (?)", sub)
	}
	if f.ProjectID != "" {
		tx = tx.Where("tasks.project_id = ?", f.ProjectID)
	}
	if !f.From.IsZero() {
		tx = tx.Where(table+".date >= ?", s.dayStart(f.From))
	}
	if !f.To.IsZero() {
		tx = tx.Where(table+".date < ?", s.dayStart(f.To).AddDate(0, 0, 1))
	}
	return tx
}

func (s *Service) dayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc).UTC()
}

func toEntries(rows []logRow, external bool) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{UserID: r.UserID, Date: r.Date, Hours: r.Hours, External: external})
	}
	return out
}
