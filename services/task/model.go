package task

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOverdue    Status = "OVERDUE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	default:
		return false
	}
}

// Gated reports whether entering s requires every dependency to be COMPLETED.
func (s Status) Gated() bool {
	return s == StatusInProgress || s == StatusCompleted
}

type Task struct {
	ID           string     `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Title        string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description  string     `gorm:"column:description;type:text" json:"description"`
	Status       Status     `gorm:"column:status;type:varchar(20);index;not null;default:'PENDING'" json:"status"`
	Deadline     *time.Time `gorm:"column:deadline;index" json:"deadline,omitempty"`
	WorkflowID   string     `gorm:"column:workflow_id;type:varchar(32);index;not null" json:"workflowId"`
	ProjectID    string     `gorm:"column:project_id;type:varchar(32);index;not null" json:"projectId"`
	UserID       string     `gorm:"column:user_id;type:varchar(32);index" json:"userId"`
	Version      int64      `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updatedAt"`
	Dependencies []*Task    `gorm:"many2many:task_dependencies;joinForeignKey:TaskID;joinReferences:DependsOnID" json:"dependencies,omitempty"`
}

// TaskDependency is a row of the task_dependencies join table: TaskID
// depends on DependsOnID.
type TaskDependency struct {
	TaskID      string `gorm:"column:task_id;primaryKey;type:varchar(32)"`
	DependsOnID string `gorm:"column:depends_on_id;primaryKey;type:varchar(32)"`
}

func (TaskDependency) TableName() string {
	return "task_dependencies"
}

func (t *Task) DependencyIDs() []string {
	ids := make([]string, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		ids = append(ids, d.ID)
	}
	return ids
}

// Snapshot is the audited view of a task.
type Snapshot struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	UserID       string     `json:"userId"`
	Dependencies []string   `json:"dependencies"`
}

func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Deadline:     t.Deadline,
		UserID:       t.UserID,
		Dependencies: t.DependencyIDs(),
	}
}

type CreateTaskRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	WorkflowID   string     `json:"workflowId" binding:"required"`
	UserID       string     `json:"userId" binding:"required"`
	Deadline     *time.Time `json:"deadline"`
	Dependencies []string   `json:"dependencies"`
}

// UpdateTaskRequest carries a partial update. Nil fields are left unchanged;
// a non-nil empty Dependencies clears the dependency set.
type UpdateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *Status    `json:"status"`
	Deadline     *time.Time `json:"deadline"`
	Dependencies *[]string  `json:"dependencies"`
}

type Filter struct {
	ProjectID  string `form:"projectId"`
	WorkflowID string `form:"workflowId"`
	Status     Status `form:"status"`
	UserID     string `form:"userId"`
}

type SweepResult struct {
	Updated int64 `json:"updated"`
}
