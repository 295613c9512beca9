package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/middleware"
	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/service"
)

// stubDocStore serves every lookup with a fixed error
type stubDocStore struct {
	err error
}

func (s stubDocStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	return nil, s.err
}

func (s stubDocStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Document, error) {
	return nil, s.err
}

func (s stubDocStore) FindByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]model.Document, error) {
	return nil, s.err
}

func (s stubDocStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

type stubWorkspaceStore struct {
	err error
}

func (s stubWorkspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	return s.err
}

func (s stubWorkspaceStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	return nil, s.err
}

func (s stubWorkspaceStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	return nil, s.err
}

func (s stubWorkspaceStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func newIdentityRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	})
	return r
}

func postChat(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"question":"what is raft?"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestDocumentChat_UnknownDocumentIsNotFound(t *testing.T) {
	docSvc := service.NewDocumentService(stubDocStore{err: gorm.ErrRecordNotFound}, nil)
	h := NewDocumentHandler(docSvc, nil, nil, nil, 10<<20)
	r := newIdentityRouter(uuid.New())
	r.POST("/documents/:id/chat", h.Chat)

	w := postChat(r, "/documents/"+uuid.NewString()+"/chat")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentChat_StoreFailureIsNotReportedAsMissing(t *testing.T) {
	docSvc := service.NewDocumentService(stubDocStore{err: errors.New("connection refused")}, nil)
	h := NewDocumentHandler(docSvc, nil, nil, nil, 10<<20)
	r := newIdentityRouter(uuid.New())
	r.POST("/documents/:id/chat", h.Chat)

	w := postChat(r, "/documents/"+uuid.NewString()+"/chat")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWorkspaceChat_StoreFailureIsNotReportedAsMissing(t *testing.T) {
	workspaceSvc := service.NewWorkspaceService(stubWorkspaceStore{err: errors.New("connection refused")}, nil)
	h := NewWorkspaceHandler(workspaceSvc, nil, nil)
	r := newIdentityRouter(uuid.New())
	r.POST("/workspaces/:id/chat", h.Chat)

	w := postChat(r, "/workspaces/"+uuid.NewString()+"/chat")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWorkspaceDocuments_UnknownWorkspaceIsNotFound(t *testing.T) {
	workspaceSvc := service.NewWorkspaceService(stubWorkspaceStore{err: gorm.ErrRecordNotFound}, nil)
	h := NewWorkspaceHandler(workspaceSvc, nil, nil)
	r := newIdentityRouter(uuid.New())
	r.GET("/workspaces/:id/documents", h.Documents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/"+uuid.NewString()+"/documents", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceDocuments_StoreFailureIsNotReportedAsMissing(t *testing.T) {
	workspaceSvc := service.NewWorkspaceService(stubWorkspaceStore{err: errors.New("connection refused")}, nil)
	h := NewWorkspaceHandler(workspaceSvc, nil, nil)
	r := newIdentityRouter(uuid.New())
	r.GET("/workspaces/:id/documents", h.Documents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/"+uuid.NewString()+"/documents", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
