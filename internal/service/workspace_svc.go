package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/pkg/redis"
)

type workspaceStore interface {
	Create(ctx context.Context, ws *model.Workspace) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type WorkspaceService struct {
	workspaces workspaceStore
	cache      *redis.DocListCache
}

func NewWorkspaceService(workspaces workspaceStore, cache *redis.DocListCache) *WorkspaceService {
	return &WorkspaceService{workspaces: workspaces, cache: cache}
}

func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, name string) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: workspace name is required", ErrValidation)
	}

	ws := &model.Workspace{UserID: userID, Name: name}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

func (s *WorkspaceService) List(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	return s.workspaces.FindByUserID(ctx, userID)
}

// Get returns the workspace, or ErrNotFound when it does not exist or
// belongs to another user.
func (s *WorkspaceService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Workspace, error) {
	ws, err := s.workspaces.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: workspace %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if ws.UserID != userID {
		return nil, fmt.Errorf("%w: workspace %s", ErrNotFound, id)
	}
	return ws, nil
}

// Delete removes the workspace, its documents and their chunks, then drops
// stale document listings. The cascade changes what the user-scoped listing
// should return, so the user key is invalidated along with the workspace key.
func (s *WorkspaceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.workspaces.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID, &id); err != nil {
			log.Printf("failed to invalidate document listing cache: %v", err)
		}
	}
	return nil
}
