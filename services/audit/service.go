package audit

import (
	"context"

	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	logs repository.Repository[AuditLog]
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{logs: repository.ProvideStore[AuditLog](p.DB)}
}

type ListFilter struct {
	Target   string `form:"target"`
	TargetID string `form:"targetId"`
	pagination.Pagination
}

// ListAuditLogs returns entries newest first.
func (s *Service) ListAuditLogs(ctx context.Context, f ListFilter) ([]*AuditLog, pagination.PageInfo, error) {
	logs, err := s.logs.Find(ctx, &AuditLog{Target: f.Target, TargetID: f.TargetID},
		option.ApplyPagination(f.Pagination),
		option.WithSortBy(option.QuerySortBy{SortBy: "timestamp", OrderBy: "desc"}),
	)
	if err != nil {
		return nil, pagination.PageInfo{}, errutil.Internal("failed to list audit logs", err)
	}
	logs, info := pagination.BuildPageInfo(logs, f.Pagination)
	return logs, info, nil
}
