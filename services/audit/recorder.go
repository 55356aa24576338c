package audit

//go:generate mockgen -source=recorder.go -destination=mock_recorder.go -package=audit

import (
	"context"
	"encoding/json"

	"taskforge-controlplane/pkg/logger"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder writes audit entries. Record never fails the caller: errors are
// logged and dropped.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type dbRecorder struct {
	db   *gorm.DB
	node *snowflake.Node
}

type Params struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewRecorder(p Params) Recorder {
	return &dbRecorder{db: p.DB, node: p.Node}
}

func (r *dbRecorder) Record(ctx context.Context, e Entry) {
	zapLog := logger.FromContext(ctx).With(
		zap.String("action", string(e.Action)),
		zap.String("target", e.Target),
		zap.String("target_id", e.TargetID),
	)

	data, err := json.Marshal(e.Data)
	if err != nil {
		zapLog.Warn("failed to encode audit data", zap.Error(err))
		data = []byte("null")
	}

	entry := AuditLog{
		ID:       r.node.Generate().String(),
		UserID:   e.UserID,
		Action:   e.Action,
		Target:   e.Target,
		TargetID: e.TargetID,
		Data:     datatypes.JSON(data),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		zapLog.Error("failed to write audit log", zap.Error(err))
		return
	}
	zapLog.Debug("audit log written", zap.String("audit_id", entry.ID))
}
