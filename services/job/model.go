package job

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const (
	NameOverdueSweep   = "overdue_sweep"
	NameDigest         = "daily_digest"
	NameKPIRecalculate = "kpi_recalculate"
)

// Job is an execution record of one step of the daily chain.
type Job struct {
	ID          string         `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Name        string         `gorm:"column:name;type:varchar(64);index;not null" json:"name"`
	Status      Status         `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	ErrorMsg    string         `gorm:"column:error_msg;type:text" json:"errorMsg,omitempty"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"startedAt,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completedAt,omitempty"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// DailyPayload is the asynq payload of taskname.DailyRun.
type DailyPayload struct {
	Trigger string    `json:"trigger"`
	At      time.Time `json:"at"`
}
