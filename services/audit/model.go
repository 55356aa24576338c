package audit

import (
	"time"

	"gorm.io/datatypes"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

type AuditLog struct {
	ID        string         `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	UserID    string         `gorm:"column:user_id;type:varchar(32);index" json:"userId"`
	Action    Action         `gorm:"column:action;type:varchar(16);not null" json:"action"`
	Target    string         `gorm:"column:target;type:varchar(64);index:idx_audit_target" json:"target"`
	TargetID  string         `gorm:"column:target_id;type:varchar(32);index:idx_audit_target" json:"targetId"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	Timestamp time.Time      `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// Entry is what callers hand to a Recorder. Data is marshalled as JSON.
type Entry struct {
	UserID   string
	Action   Action
	Target   string
	TargetID string
	Data     any
}

// Change is the conventional payload for UPDATE entries.
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}
