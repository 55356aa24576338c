package task

import (
	"context"
	"strings"
	"time"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/repository"
	"taskforge-controlplane/services/audit"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const auditTarget = "task"

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	audit audit.Recorder
	now   func() time.Time

	tasks     repository.Repository[Task]
	workflows repository.Repository[project.Workflow]
	projects  repository.Repository[project.Project]
	users     repository.Repository[organization.User]
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Audit audit.Recorder
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		audit: p.Audit,
		now:   time.Now,

		tasks:     repository.ProvideStore[Task](p.DB),
		workflows: repository.ProvideStore[project.Workflow](p.DB),
		projects:  repository.ProvideStore[project.Project](p.DB),
		users:     repository.ProvideStore[organization.User](p.DB),
	}
}

// CreateTask creates a PENDING task. The project is taken from the workflow
// and never from the request.
func (s *Service) CreateTask(ctx context.Context, actor auth.Actor, req CreateTaskRequest) (*Task, error) {
	zapLog := logger.FromContext(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errutil.ValidationFailed("title is required", nil, errutil.WithField("title", "required"))
	}

	if req.WorkflowID == "" {
		return nil, errutil.ValidationFailed("workflowId is required", nil, errutil.WithField("workflowId", "required"))
	}
	if req.UserID == "" {
		return nil, errutil.ValidationFailed("userId is required", nil, errutil.WithField("userId", "required"))
	}

	wf, err := s.workflows.FindOne(ctx, &project.Workflow{ID: req.WorkflowID})
	if err != nil {
		return nil, errutil.Internal("failed to get workflow", err)
	}
	if wf == nil {
		return nil, errutil.NotFound("workflow not found", nil, errutil.WithField("workflowId", req.WorkflowID))
	}

	proj, err := s.projects.FindOne(ctx, &project.Project{ID: wf.ProjectID})
	if err != nil {
		return nil, errutil.Internal("failed to get project", err)
	}
	if proj == nil {
		return nil, errutil.NotFound("project not found", nil, errutil.WithField("projectId", wf.ProjectID))
	}
	if proj.OrganizationID != actor.OrganizationID {
		return nil, errutil.Forbidden("workflow belongs to another organization", nil)
	}

	assignee, err := s.users.FindOne(ctx, &organization.User{ID: req.UserID})
	if err != nil {
		return nil, errutil.Internal("failed to get assignee", err)
	}
	if assignee == nil {
		return nil, errutil.NotFound("assignee not found", nil, errutil.WithField("userId", req.UserID))
	}
	if assignee.OrganizationID != proj.OrganizationID {
		return nil, errutil.ValidationFailed("assignee belongs to another organization", nil, errutil.WithField("userId", req.UserID))
	}

	deps := dedupe(req.Dependencies)
	if err := s.ensureTasksExist(ctx, s.db, proj.OrganizationID, deps); err != nil {
		return nil, err
	}

	t := &Task{
		ID:          s.node.Generate().String(),
		Title:       title,
		Description: req.Description,
		Status:      StatusPending,
		Deadline:    utcPtr(req.Deadline),
		WorkflowID:  wf.ID,
		ProjectID:   wf.ProjectID,
		UserID:      assignee.ID,
		Version:     1,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Dependencies").Create(t).Error; err != nil {
			return err
		}
		return replaceDependencies(tx, t.ID, deps)
	})
	if err != nil {
		zapLog.Error("failed to create task", zap.Error(err))
		return nil, errutil.Internal("failed to create task", err)
	}

	created, err := s.GetTask(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Target:   auditTarget,
		TargetID: created.ID,
		Data:     created.Snapshot(),
	})

	zapLog.Info("task created", zap.String("task_id", created.ID), zap.String("project_id", created.ProjectID))
	return created, nil
}

// GetTask returns the task with its dependencies resolved.
func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	if id == "" {
		return nil, errutil.NotFound("task not found", nil)
	}
	t, err := s.tasks.FindOne(ctx, &Task{ID: id}, option.WithPreload("Dependencies"))
	if err != nil {
		return nil, errutil.Internal("failed to get task", err)
	}
	if t == nil {
		return nil, errutil.NotFound("task not found", nil, errutil.WithField("id", id))
	}
	return t, nil
}

// GetOrganizationTask is GetTask restricted to tasks of orgID. Tasks of other
// organizations are reported as NotFound.
func (s *Service) GetOrganizationTask(ctx context.Context, orgID, id string) (*Task, error) {
	if orgID == "" || id == "" {
		return nil, errutil.NotFound("task not found", nil)
	}
	t, err := s.tasks.FindOne(ctx, &Task{ID: id}, s.inOrganization(orgID), option.WithPreload("Dependencies"))
	if err != nil {
		return nil, errutil.Internal("failed to get task", err)
	}
	if t == nil {
		return nil, errutil.NotFound("task not found", nil, errutil.WithField("id", id))
	}
	return t, nil
}

// ListTasks lists tasks of projects owned by orgID.
func (s *Service) ListTasks(ctx context.Context, orgID string, f Filter, page pagination.Pagination) ([]*Task, pagination.PageInfo, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, pagination.PageInfo{}, errutil.ValidationFailed("unknown status", nil, errutil.WithField("status", string(f.Status)))
	}

	query := &Task{
		ProjectID:  f.ProjectID,
		WorkflowID: f.WorkflowID,
		Status:     f.Status,
		UserID:     f.UserID,
	}
	tasks, err := s.tasks.Find(ctx, query,
		s.inOrganization(orgID),
		option.WithPreload("Dependencies"),
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list tasks", err)
	}
	tasks, info := pagination.BuildPageInfo(tasks, page)
	return tasks, info, nil
}

// ListUserTasks returns the tasks assigned to userID, newest first.
func (s *Service) ListUserTasks(ctx context.Context, userID string, page pagination.Pagination) ([]*Task, pagination.PageInfo, error) {
	tasks, err := s.tasks.Find(ctx, &Task{UserID: userID},
		option.WithPreload("Dependencies"),
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list user tasks", err)
	}
	tasks, info := pagination.BuildPageInfo(tasks, page)
	return tasks, info, nil
}

func (s *Service) inOrganization(orgID string) option.QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		sub := s.db.Model(&project.Project{}).Select("id").Where("organization_id = ?", orgID)
		return tx.Where("project_id IN (?)", sub)
	}
}

// ensureTasksExist reports the first id that is missing from orgID as
// NotFound.
func (s *Service) ensureTasksExist(ctx context.Context, db *gorm.DB, orgID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var found []string
	q := s.inOrganization(orgID)(db.WithContext(ctx).Model(&Task{}).Where("id IN ?", ids))
	if err := q.Pluck("id", &found).Error; err != nil {
		return errutil.Internal("failed to load dependencies", err)
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return errutil.NotFound("dependency not found", nil, errutil.WithField("dependencies", id))
		}
	}
	return nil
}

func replaceDependencies(tx *gorm.DB, taskID string, deps []string) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&TaskDependency{}).Error; err != nil {
		return err
	}
	if len(deps) == 0 {
		return nil
	}
	rows := make([]TaskDependency, 0, len(deps))
	for _, d := range deps {
		rows = append(rows, TaskDependency{TaskID: taskID, DependsOnID: d})
	}
	return tx.Create(&rows).Error
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
