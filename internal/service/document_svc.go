package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/pkg/redis"
)

type documentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Document, error)
	FindByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]model.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentService struct {
	documents documentStore
	cache     *redis.DocListCache
}

func NewDocumentService(documents documentStore, cache *redis.DocListCache) *DocumentService {
	return &DocumentService{documents: documents, cache: cache}
}

// List returns the user's documents, served from the listing cache when warm
func (s *DocumentService) List(ctx context.Context, userID uuid.UUID) ([]model.Document, error) {
	if s.cache != nil {
		var cached []model.Document
		hit, err := s.cache.GetUserListing(ctx, userID, &cached)
		if err != nil {
			log.Printf("document listing cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	docs, err := s.documents.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUserListing(ctx, userID, docs); err != nil {
			log.Printf("document listing cache write failed: %v", err)
		}
	}
	return docs, nil
}

// ListByWorkspace returns a workspace's documents, cache-first
func (s *DocumentService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Document, error) {
	if s.cache != nil {
		var cached []model.Document
		hit, err := s.cache.GetWorkspaceListing(ctx, workspaceID, &cached)
		if err != nil {
			log.Printf("document listing cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	docs, err := s.documents.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWorkspaceListing(ctx, workspaceID, docs); err != nil {
			log.Printf("document listing cache write failed: %v", err)
		}
	}
	return docs, nil
}

// Get returns the document, or ErrNotFound when it does not exist or
// belongs to another user.
func (s *DocumentService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	return doc, nil
}

// Delete removes the document and its chunks, then drops stale listings
func (s *DocumentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID, doc.WorkspaceID); err != nil {
			log.Printf("failed to invalidate document listing cache: %v", err)
		}
	}
	return nil
}
