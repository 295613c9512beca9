package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/studyhub/rag/internal/repository"
)

// Scope selects the chunks eligible for one retrieval: a single document or
// every document in a workspace. Exactly one field is set.
type Scope struct {
	DocumentID  *uuid.UUID
	WorkspaceID *uuid.UUID
}

func DocumentScope(id uuid.UUID) Scope {
	return Scope{DocumentID: &id}
}

func WorkspaceScope(id uuid.UUID) Scope {
	return Scope{WorkspaceID: &id}
}

// RetrievedChunk is one retrieval hit with its source document title.
type RetrievedChunk struct {
	Content       string
	DocumentTitle string
	Distance      float64
}

type chunkSearcher interface {
	SearchByDocument(ctx context.Context, documentID uuid.UUID, query pgvector.Vector, k int) ([]repository.ChunkSearchResult, error)
	SearchByWorkspace(ctx context.Context, workspaceID uuid.UUID, query pgvector.Vector, k int) ([]repository.ChunkSearchResult, error)
}

// RetrievalService ranks stored chunks by cosine distance to a query vector.
type RetrievalService struct {
	chunks chunkSearcher
}

func NewRetrievalService(chunks chunkSearcher) *RetrievalService {
	return &RetrievalService{chunks: chunks}
}

// Retrieve returns up to k chunks in scope, nearest first. An empty scope
// yields an empty slice, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, scope Scope, query pgvector.Vector, k int) ([]RetrievedChunk, error) {
	var (
		results []repository.ChunkSearchResult
		err     error
	)
	switch {
	case scope.DocumentID != nil:
		results, err = s.chunks.SearchByDocument(ctx, *scope.DocumentID, query, k)
	case scope.WorkspaceID != nil:
		results, err = s.chunks.SearchByWorkspace(ctx, *scope.WorkspaceID, query, k)
	default:
		return nil, fmt.Errorf("%w: retrieval scope must name a document or a workspace", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	retrieved := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, RetrievedChunk{
			Content:       r.Content,
			DocumentTitle: r.DocumentTitle,
			Distance:      r.Distance,
		})
	}
	return retrieved, nil
}
