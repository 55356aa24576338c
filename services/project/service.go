package project

import (
	"context"
	"strings"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/repository"
	"taskforge-controlplane/pkg/sequence"
	"taskforge-controlplane/services/organization"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	node      *snowflake.Node
	seq       sequence.Generator
	orgs      repository.Repository[organization.Organization]
	projects  repository.Repository[Project]
	workflows repository.Repository[Workflow]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
	Seq  sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:      p.Node,
		seq:       p.Seq,
		orgs:      repository.ProvideStore[organization.Organization](p.DB),
		projects:  repository.ProvideStore[Project](p.DB),
		workflows: repository.ProvideStore[Workflow](p.DB),
	}
}

// CreateProject creates a project in the actor's organization. Project codes
// are unique across the platform because external timesheets reference
// projects by code alone.
func (s *Service) CreateProject(ctx context.Context, actor auth.Actor, req CreateProjectRequest) (*Project, error) {
	zapLog := logger.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errutil.ValidationFailed("name is required", nil, errutil.WithField("name", "required"))
	}

	if actor.OrganizationID == "" {
		return nil, errutil.NotFound("organization not found", nil)
	}
	org, err := s.orgs.FindOne(ctx, &organization.Organization{ID: actor.OrganizationID})
	if err != nil {
		return nil, errutil.Internal("failed to get organization", err)
	}
	if org == nil {
		return nil, errutil.NotFound("organization not found", nil, errutil.WithField("organizationId", actor.OrganizationID))
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code, err = s.seq.NextProjectCode(ctx, org.Name)
		if err != nil {
			zapLog.Error("failed to generate project code", zap.Error(err))
			return nil, errutil.Internal("failed to generate project code", err)
		}
	}

	exist, err := s.projects.FindOne(ctx, &Project{Code: code})
	if err != nil {
		return nil, errutil.Internal("failed to check project code", err)
	}
	if exist != nil {
		return nil, errutil.Conflict("project code already in use", nil, errutil.WithField("code", code))
	}

	p := &Project{
		ID:             s.node.Generate().String(),
		Name:           name,
		Code:           code,
		OrganizationID: org.ID,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		zapLog.Error("failed to create project", zap.Error(err))
		return nil, errutil.Internal("failed to create project", err)
	}

	zapLog.Info("project created", zap.String("project_id", p.ID), zap.String("code", p.Code))
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	if id == "" {
		return nil, errutil.NotFound("project not found", nil)
	}
	p, err := s.projects.FindOne(ctx, &Project{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to get project", err)
	}
	if p == nil {
		return nil, errutil.NotFound("project not found", nil, errutil.WithField("id", id))
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context, orgID string, page pagination.Pagination) ([]*Project, pagination.PageInfo, error) {
	projects, err := s.projects.Find(ctx, &Project{OrganizationID: orgID},
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list projects", err)
	}
	projects, info := pagination.BuildPageInfo(projects, page)
	return projects, info, nil
}

func (s *Service) CreateWorkflow(ctx context.Context, actor auth.Actor, req CreateWorkflowRequest) (*Workflow, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errutil.ValidationFailed("name is required", nil, errutil.WithField("name", "required"))
	}

	p, err := s.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != actor.OrganizationID {
		return nil, errutil.Forbidden("project belongs to another organization", nil)
	}

	wf := &Workflow{
		ID:        s.node.Generate().String(),
		Name:      name,
		ProjectID: p.ID,
	}
	if err := s.workflows.Create(ctx, wf); err != nil {
		logger.FromContext(ctx).Error("failed to create workflow", zap.Error(err))
		return nil, errutil.Internal("failed to create workflow", err)
	}
	return wf, nil
}

func (s *Service) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	if id == "" {
		return nil, errutil.NotFound("workflow not found", nil)
	}
	wf, err := s.workflows.FindOne(ctx, &Workflow{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to get workflow", err)
	}
	if wf == nil {
		return nil, errutil.NotFound("workflow not found", nil, errutil.WithField("id", id))
	}
	return wf, nil
}

func (s *Service) ListWorkflows(ctx context.Context, projectID string) ([]*Workflow, error) {
	if projectID == "" {
		return nil, errutil.ValidationFailed("projectId is required", nil, errutil.WithField("projectId", "required"))
	}
	wfs, err := s.workflows.Find(ctx, &Workflow{ProjectID: projectID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}),
	)
	if err != nil {
		return nil, errutil.Internal("failed to list workflows", err)
	}
	return wfs, nil
}
