package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/model"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *WorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *WorkspaceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&workspaces).Error
	return workspaces, err
}

// Delete removes a workspace and cascades to its documents and their chunks
func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docIDs := tx.Model(&model.Document{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("document_id IN (?)", docIDs).Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Workspace{}, "id = ?", id).Error
	})
}
