package project

import "time"

type Project struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Name           string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Code           string    `gorm:"column:code;type:varchar(64);uniqueIndex;not null" json:"code"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(32);index;not null" json:"organizationId"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

type Workflow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ProjectID string    `gorm:"column:project_id;type:varchar(32);index;not null" json:"projectId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
	// Code is generated from the organization name when empty.
	Code string `json:"code"`
}

type CreateWorkflowRequest struct {
	Name      string `json:"name" binding:"required"`
	ProjectID string `json:"projectId" binding:"required"`
}
