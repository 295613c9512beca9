package model

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the fixed width of the chunk embedding column.
// It must match the dimensionality of whichever embedding provider is
// configured; writes with a different width are rejected before storage.
const EmbeddingDimensions = 768

type Document struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid;index" json:"workspace_id,omitempty"`
	Title       string     `gorm:"size:500;not null" json:"title"`

	// Relations
	Chunks []DocumentChunk `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"chunks,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentChunk struct {
	BaseModel
	DocumentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"document_id"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
