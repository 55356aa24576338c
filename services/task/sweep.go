package task

import (
	"context"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunOverdueSweep marks every task past its deadline as OVERDUE unless it is
// already COMPLETED or OVERDUE. A second run with no new overdue tasks
// updates nothing.
func (s *Service) RunOverdueSweep(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()

	res := s.db.WithContext(ctx).Model(&Task{}).
		Where("deadline IS NOT NULL AND deadline < ?", now).
		Where("status NOT IN ?", []Status{StatusCompleted, StatusOverdue}).
		Updates(map[string]any{
			"status":     StatusOverdue,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		logger.FromContext(ctx).Error("overdue sweep failed", zap.Error(res.Error))
		return SweepResult{}, errutil.Internal("failed to run overdue sweep", res.Error)
	}

	logger.FromContext(ctx).Info("overdue sweep finished", zap.Int64("updated", res.RowsAffected))
	return SweepResult{Updated: res.RowsAffected}, nil
}
