package timelog

import (
	"time"
)

type TimeLog struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	TaskID    string    `gorm:"column:task_id;type:varchar(32);index;not null" json:"taskId"`
	UserID    string    `gorm:"column:user_id;type:varchar(32);index;not null" json:"userId"`
	Hours     float64   `gorm:"column:hours;not null" json:"hours"`
	Date      time.Time `gorm:"column:date;index;not null" json:"date"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// ExternalLog is time imported from an outside timesheet. It has no user;
// hours are attributed to the assignee of the task it resolved to.
type ExternalLog struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	TaskID      string    `gorm:"column:task_id;type:varchar(32);index;not null" json:"taskId"`
	Hours       float64   `gorm:"column:hours;not null" json:"hours"`
	Date        time.Time `gorm:"column:date;index;not null" json:"date"`
	ProjectCode string    `gorm:"column:project_code;type:varchar(64);index" json:"projectCode"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

type CreateTimeLogRequest struct {
	TaskID string    `json:"taskId" binding:"required"`
	Hours  float64   `json:"hours"`
	Date   time.Time `json:"date"`
}

// Filter narrows the logs fed into a rollup. OrganizationID is always set
// from the caller; From and To are inclusive calendar dates.
type Filter struct {
	OrganizationID string    `form:"-"`
	UserID         string    `form:"userId"`
	ProjectID      string    `form:"projectId"`
	From           time.Time `form:"from" time_format:"2006-01-02"`
	To             time.Time `form:"to" time_format:"2006-01-02"`
}

type ExternalLogUpload struct {
	FileName string
	Content  []byte
}

type SkippedRow struct {
	Line        int    `json:"line"`
	ProjectCode string `json:"projectCode"`
	Reason      string `json:"reason"`
}

type IngestResult struct {
	ProcessedRecords int          `json:"processedRecords"`
	CreatedRecords   int          `json:"createdRecords"`
	Skipped          []SkippedRow `json:"skipped"`
	ArchiveKey       string       `json:"archiveKey,omitempty"`
}
