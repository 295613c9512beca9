package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/pkg/redis"
)

// memKV backs a DocListCache in tests without a redis server
type memKV struct {
	entries map[string]string
}

func newMemKV() *memKV {
	return &memKV{entries: make(map[string]string)}
}

func (s *memKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *memKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s.entries[key] = string(value.([]byte))
	return nil
}

func (s *memKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

type memDocumentStore struct {
	byID        map[uuid.UUID]*model.Document
	listCalls   int
	wsListCalls int
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{byID: make(map[uuid.UUID]*model.Document)}
}

func (s *memDocumentStore) add(userID uuid.UUID, workspaceID *uuid.UUID, title string) *model.Document {
	doc := &model.Document{UserID: userID, WorkspaceID: workspaceID, Title: title}
	doc.ID = uuid.New()
	s.byID[doc.ID] = doc
	return doc
}

func (s *memDocumentStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	doc, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return doc, nil
}

func (s *memDocumentStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Document, error) {
	s.listCalls++
	var docs []model.Document
	for _, d := range s.byID {
		if d.UserID == userID {
			docs = append(docs, *d)
		}
	}
	return docs, nil
}

func (s *memDocumentStore) FindByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]model.Document, error) {
	s.wsListCalls++
	var docs []model.Document
	for _, d := range s.byID {
		if d.WorkspaceID != nil && *d.WorkspaceID == workspaceID {
			docs = append(docs, *d)
		}
	}
	return docs, nil
}

func (s *memDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func TestDocumentList_SecondReadServedFromCache(t *testing.T) {
	store := newMemDocumentStore()
	svc := NewDocumentService(store, redis.NewDocListCache(newMemKV(), 0))
	userID := uuid.New()
	store.add(userID, nil, "notes.pdf")

	first, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// One DB read: the second listing came out of the cache
	assert.Equal(t, 1, store.listCalls)
}

func TestDocumentList_CorruptCacheEntryFallsBackToStore(t *testing.T) {
	store := newMemDocumentStore()
	kv := newMemKV()
	svc := NewDocumentService(store, redis.NewDocListCache(kv, 0))
	userID := uuid.New()
	store.add(userID, nil, "notes.pdf")

	kv.entries[redis.DocListKeyPrefix+"user:"+userID.String()] = "{not json"

	docs, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, store.listCalls)
}

func TestDocumentDelete_InvalidatesListings(t *testing.T) {
	store := newMemDocumentStore()
	kv := newMemKV()
	svc := NewDocumentService(store, redis.NewDocListCache(kv, 0))
	userID := uuid.New()
	workspaceID := uuid.New()
	doc := store.add(userID, &workspaceID, "notes.pdf")

	// Warm both listings
	_, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	_, err = svc.ListByWorkspace(context.Background(), workspaceID)
	require.NoError(t, err)
	require.Len(t, kv.entries, 2)

	require.NoError(t, svc.Delete(context.Background(), userID, doc.ID))
	assert.Empty(t, kv.entries)

	// The next listing goes back to the store and sees the deletion
	docs, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 2, store.listCalls)
}

func TestDocumentGet_OtherUsersDocumentNotFound(t *testing.T) {
	store := newMemDocumentStore()
	svc := NewDocumentService(store, nil)
	doc := store.add(uuid.New(), nil, "notes.pdf")

	_, err := svc.Get(context.Background(), uuid.New(), doc.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
