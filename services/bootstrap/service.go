package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/repository"
	"taskforge-controlplane/services/audit"
	"taskforge-controlplane/services/job"
	"taskforge-controlplane/services/kpi"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"
	"taskforge-controlplane/services/timelog"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the control plane, in dependency order.
func Models() []any {
	return []any{
		&organization.Organization{},
		&organization.User{},
		&project.Project{},
		&project.Workflow{},
		&task.Task{},
		&task.TaskDependency{},
		&timelog.TimeLog{},
		&timelog.ExternalLog{},
		&kpi.KPIMetric{},
		&audit.AuditLog{},
		&job.Job{},
	}
}

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	config *config.Config
	orgs   repository.Repository[organization.Organization]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		config: p.Config,
		orgs:   repository.ProvideStore[organization.Organization](p.DB),
	}
}

// Migrate brings the schema up to date and makes sure the default
// organization exists.
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		zap.L().Error("[bootstrap] auto migrate failed", zap.Error(err))
		return fmt.Errorf("auto migrate: %w", err)
	}
	zap.L().Info("[bootstrap] schema migrated", zap.Int("models", len(Models())))

	_, err := s.EnsureDefaultOrganization(ctx)
	return err
}

// EnsureDefaultOrganization creates the organization named by
// PLATFORM.ORGANIZATION_NAME unless a default one already exists. It returns
// nil when no name is configured.
func (s *Service) EnsureDefaultOrganization(ctx context.Context) (*organization.Organization, error) {
	name := strings.TrimSpace(s.config.Platform.OrganizationName)
	if name == "" {
		zap.L().Info("[bootstrap] PLATFORM.ORGANIZATION_NAME not set, skipping default organization")
		return nil, nil
	}

	exist, err := s.orgs.FindOne(ctx, &organization.Organization{IsDefault: true})
	if err != nil {
		zap.L().Error("[bootstrap] Error checking organization", zap.Error(err))
		return nil, fmt.Errorf("check default organization: %w", err)
	}
	if exist != nil {
		zap.L().Info("[bootstrap] Default organization already exists", zap.String("organization_name", exist.Name))
		return exist, nil
	}

	org := &organization.Organization{
		ID:        s.node.Generate().String(),
		Name:      name,
		Slug:      slug.Make(name),
		IsDefault: true,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create default organization: %w", err)
	}

	zap.L().Info("[bootstrap] Default organization created",
		zap.String("organization_id", org.ID),
		zap.String("slug", org.Slug),
	)
	return org, nil
}
