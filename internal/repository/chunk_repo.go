package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ChunkSearchResult is one retrieval hit, nearest first.
type ChunkSearchResult struct {
	Content       string  `gorm:"column:content"`
	DocumentTitle string  `gorm:"column:title"`
	Distance      float64 `gorm:"column:distance"`
}

func (r *ChunkRepository) Create(ctx context.Context, chunk *model.DocumentChunk) error {
	return r.db.WithContext(ctx).Create(chunk).Error
}

func (r *ChunkRepository) CountByDocumentID(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

// SearchByDocument returns the k chunks of one document nearest to the query
// embedding by cosine distance. Ties break on insertion order then id, so
// result order is deterministic.
func (r *ChunkRepository) SearchByDocument(ctx context.Context, documentID uuid.UUID, query pgvector.Vector, k int) ([]ChunkSearchResult, error) {
	var results []ChunkSearchResult
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.content, documents.title, document_chunks.embedding <=> ? AS distance", query).
		Joins("INNER JOIN documents ON documents.id = document_chunks.document_id AND documents.deleted_at IS NULL").
		Where("document_chunks.document_id = ?", documentID).
		Where("document_chunks.embedding IS NOT NULL").
		Where("document_chunks.deleted_at IS NULL").
		Order("distance ASC, document_chunks.created_at ASC, document_chunks.id ASC").
		Limit(k).
		Find(&results).Error
	return results, err
}

// SearchByWorkspace returns the k chunks nearest to the query embedding
// across every document in the workspace.
func (r *ChunkRepository) SearchByWorkspace(ctx context.Context, workspaceID uuid.UUID, query pgvector.Vector, k int) ([]ChunkSearchResult, error) {
	var results []ChunkSearchResult
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.content, documents.title, document_chunks.embedding <=> ? AS distance", query).
		Joins("INNER JOIN documents ON documents.id = document_chunks.document_id AND documents.deleted_at IS NULL").
		Where("documents.workspace_id = ?", workspaceID).
		Where("document_chunks.embedding IS NOT NULL").
		Where("document_chunks.deleted_at IS NULL").
		Order("distance ASC, document_chunks.created_at ASC, document_chunks.id ASC").
		Limit(k).
		Find(&results).Error
	return results, err
}
