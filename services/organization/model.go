package organization

import (
	"time"

	"taskforge-controlplane/pkg/auth"
)

type Organization struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"column:slug;type:varchar(255);uniqueIndex" json:"slug"`
	IsDefault bool      `gorm:"column:is_default;default:false" json:"isDefault"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

type User struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Name           string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Role           auth.Role `gorm:"column:role;type:varchar(20);not null" json:"role"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(32);index;not null" json:"organizationId"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

type CreateUserRequest struct {
	Name           string    `json:"name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Role           auth.Role `json:"role" binding:"required"`
	OrganizationID string    `json:"organizationId"`
}
