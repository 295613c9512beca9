package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/pkg/redis"
)

// Embedder turns text into a fixed-dimension vector, falling back across
// providers internally.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

// TextExtractor turns an uploaded binary into plain text.
type TextExtractor interface {
	ExtractText(mimeType string, data []byte) (string, error)
}

type documentCreator interface {
	Create(ctx context.Context, doc *model.Document) error
}

type chunkCreator interface {
	Create(ctx context.Context, chunk *model.DocumentChunk) error
}

// IngestService coordinates extraction, chunking, embedding and persistence
// for one uploaded document.
type IngestService struct {
	extractor TextExtractor
	chunker   *Chunker
	embedder  Embedder
	docs      documentCreator
	chunks    chunkCreator
	cache     *redis.DocListCache
}

func NewIngestService(extractor TextExtractor, chunker *Chunker, embedder Embedder, docs documentCreator, chunks chunkCreator, cache *redis.DocListCache) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		docs:      docs,
		chunks:    chunks,
		cache:     cache,
	}
}

// Ingest runs the pipeline: validate and extract, persist the document row,
// then embed and store each chunk sequentially. Sequential on purpose: the
// embedding providers are rate limited and one in-flight call per ingestion
// keeps us under their quotas.
//
// Failure policy per chunk: if the FIRST chunk fails to embed the whole
// ingestion aborts (the document is likely unembeddable entirely); a later
// chunk's failure is logged and skipped, leaving the document searchable
// with partial coverage.
func (s *IngestService) Ingest(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID, filename, mimeType string, data []byte) (*model.Document, error) {
	text, err := s.extractor.ExtractText(mimeType, data)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Title:       filename,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	chunks := s.chunker.Split(text)
	log.Printf("ingesting document %s: %d chunks from %d chars", doc.ID, len(chunks), len(text))

	stored := 0
	for i, content := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, content)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("embedding failed on first chunk of document %s: %w", doc.ID, err)
			}
			log.Printf("skipping chunk %d of document %s: %v", i, doc.ID, err)
			continue
		}

		chunk := &model.DocumentChunk{
			DocumentID: doc.ID,
			Content:    content,
			Embedding:  &embedding,
		}
		if err := s.chunks.Create(ctx, chunk); err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to store first chunk of document %s: %w", doc.ID, err)
			}
			log.Printf("failed to store chunk %d of document %s: %v", i, doc.ID, err)
			continue
		}
		stored++
	}

	if stored < len(chunks) {
		log.Printf("document %s ingested with partial coverage: %d of %d chunks", doc.ID, stored, len(chunks))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID, workspaceID); err != nil {
			log.Printf("failed to invalidate document listing cache: %v", err)
		}
	}

	return doc, nil
}
