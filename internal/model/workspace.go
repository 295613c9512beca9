package model

import (
	"github.com/google/uuid"
)

type Workspace struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"size:255;not null" json:"name"`

	// Relations
	Documents []Document `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (Workspace) TableName() string {
	return "workspaces"
}
