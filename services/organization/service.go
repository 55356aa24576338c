package organization

import (
	"context"
	"strings"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	node  *snowflake.Node
	orgs  repository.Repository[Organization]
	users repository.Repository[User]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:  p.Node,
		orgs:  repository.ProvideStore[Organization](p.DB),
		users: repository.ProvideStore[User](p.DB),
	}
}

func (s *Service) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	zapLog := logger.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errutil.ValidationFailed("name is required", nil, errutil.WithField("name", "required"))
	}

	slugName := req.Slug
	if slugName == "" {
		slugName = slug.Make(name)
	}
	if !slug.IsSlug(slugName) {
		return nil, errutil.ValidationFailed("slug is not valid", nil, errutil.WithField("slug", slugName))
	}

	exist, err := s.orgs.FindOne(ctx, &Organization{Slug: slugName})
	if err != nil {
		zapLog.Error("failed query organization by slug", zap.Error(err))
		return nil, errutil.Internal("failed to check existing organization", err)
	}
	if exist != nil {
		return nil, errutil.Conflict("organization already exists", nil, errutil.WithField("slug", slugName))
	}

	org := &Organization{
		ID:   s.node.Generate().String(),
		Name: name,
		Slug: slugName,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		zapLog.Error("failed to create organization", zap.Error(err))
		return nil, errutil.Internal("failed to create organization", err)
	}

	zapLog.Info("organization created", zap.String("organization_id", org.ID), zap.String("slug", org.Slug))
	return org, nil
}

func (s *Service) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	if id == "" {
		return nil, errutil.NotFound("organization not found", nil)
	}
	org, err := s.orgs.FindOne(ctx, &Organization{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to get organization", err)
	}
	if org == nil {
		return nil, errutil.NotFound("organization not found", nil, errutil.WithField("id", id))
	}
	return org, nil
}

func (s *Service) ListOrganizations(ctx context.Context, page pagination.Pagination) ([]*Organization, pagination.PageInfo, error) {
	orgs, err := s.orgs.Find(ctx, nil,
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list organizations", err)
	}
	orgs, info := pagination.BuildPageInfo(orgs, page)
	return orgs, info, nil
}

// CreateUser adds a user to an organization. Without an explicit
// organizationId the actor's own organization is used.
func (s *Service) CreateUser(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*User, error) {
	zapLog := logger.FromContext(ctx)

	if !req.Role.Valid() {
		return nil, errutil.ValidationFailed("role is not valid", nil, errutil.WithField("role", string(req.Role)))
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, errutil.ValidationFailed("name and email are required", nil)
	}

	orgID := req.OrganizationID
	if orgID == "" {
		orgID = actor.OrganizationID
	}
	if actor.OrganizationID != "" && orgID != actor.OrganizationID {
		return nil, errutil.Forbidden("cannot create users in another organization", nil)
	}
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	exist, err := s.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		return nil, errutil.Internal("failed to check existing user", err)
	}
	if exist != nil {
		return nil, errutil.Conflict("email already registered", nil, errutil.WithField("email", email))
	}

	user := &User{
		ID:             s.node.Generate().String(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Role:           req.Role,
		OrganizationID: orgID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		zapLog.Error("failed to create user", zap.Error(err))
		return nil, errutil.Internal("failed to create user", err)
	}

	zapLog.Info("user created", zap.String("user_id", user.ID), zap.String("organization_id", orgID))
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, errutil.NotFound("user not found", nil)
	}
	user, err := s.users.FindOne(ctx, &User{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, errutil.NotFound("user not found", nil, errutil.WithField("id", id))
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, orgID string, page pagination.Pagination) ([]*User, pagination.PageInfo, error) {
	users, err := s.users.Find(ctx, &User{OrganizationID: orgID},
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list users", err)
	}
	users, info := pagination.BuildPageInfo(users, page)
	return users, info, nil
}
