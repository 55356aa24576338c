package kpi

import (
	"context"
	"time"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/repository"
	"taskforge-controlplane/services/organization"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	loc  *time.Location
	now  func() time.Time

	orgs    repository.Repository[organization.Organization]
	metrics repository.Repository[KPIMetric]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		loc:  p.Config.Location(),
		now:  time.Now,

		orgs:    repository.ProvideStore[organization.Organization](p.DB),
		metrics: repository.ProvideStore[KPIMetric](p.DB),
	}
}

// ListKPIMetrics reads the stored series, newest first. An empty name lists
// every metric.
func (s *Service) ListKPIMetrics(ctx context.Context, metricName string, page pagination.Pagination) ([]*KPIMetric, pagination.PageInfo, error) {
	rows, err := s.metrics.Find(ctx, &KPIMetric{MetricName: metricName},
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{SortBy: "date", OrderBy: "desc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list kpi metrics", err)
	}
	rows, info := pagination.BuildPageInfo(rows, page)
	return rows, info, nil
}
