package handler

import (
	"errors"
	"io"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studyhub/rag/internal/middleware"
	"github.com/studyhub/rag/internal/pkg/response"
	"github.com/studyhub/rag/internal/service"
)

type DocumentHandler struct {
	docSvc        *service.DocumentService
	ingestSvc     *service.IngestService
	chatSvc       *service.ChatService
	workspaceSvc  *service.WorkspaceService
	maxUploadSize int64
}

func NewDocumentHandler(docSvc *service.DocumentService, ingestSvc *service.IngestService, chatSvc *service.ChatService, workspaceSvc *service.WorkspaceService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		docSvc:        docSvc,
		ingestSvc:     ingestSvc,
		chatSvc:       chatSvc,
		workspaceSvc:  workspaceSvc,
		maxUploadSize: maxUploadSize,
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		response.BadRequest(c, "file exceeds maximum upload size")
		return
	}

	var workspaceID *uuid.UUID
	if wid := c.PostForm("workspace_id"); wid != "" {
		id, err := uuid.Parse(wid)
		if err != nil {
			response.BadRequest(c, "invalid workspace_id")
			return
		}
		// The workspace must exist and belong to the caller
		if _, err := h.workspaceSvc.Get(c.Request.Context(), userID, id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				response.NotFound(c, "workspace")
				return
			}
			log.Printf("get workspace failed: %v", err)
			response.InternalError(c, "Failed to load workspace")
			return
		}
		workspaceID = &id
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		response.BadRequest(c, "file exceeds maximum upload size")
		return
	}

	doc, err := h.ingestSvc.Ingest(
		c.Request.Context(),
		userID,
		workspaceID,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		handlePipelineError(c, err, "Failed to process document")
		return
	}

	response.Created(c, gin.H{"document_id": doc.ID})
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	docs, err := h.docSvc.List(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list documents failed: %v", err)
		response.InternalError(c, "Failed to list documents")
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	doc, err := h.docSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "document")
			return
		}
		log.Printf("get document failed: %v", err)
		response.InternalError(c, "Failed to load document")
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.docSvc.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "document")
			return
		}
		log.Printf("delete document failed: %v", err)
		response.InternalError(c, "Failed to delete document")
		return
	}
	response.NoContent(c)
}

type ChatRequest struct {
	Question   string `json:"question" binding:"required"`
	DeepSearch bool   `json:"deep_search"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (h *DocumentHandler) Chat(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "question is required")
		return
	}

	if _, err := h.docSvc.Get(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "document")
			return
		}
		log.Printf("get document failed: %v", err)
		response.InternalError(c, "Failed to load document")
		return
	}

	answer, err := h.chatSvc.Ask(c.Request.Context(), service.DocumentScope(id), req.Question, false)
	if err != nil {
		handlePipelineError(c, err, "Failed to generate answer")
		return
	}
	response.Success(c, ChatResponse{Answer: answer})
}

// handlePipelineError maps pipeline errors to HTTP responses. Provider
// failures are logged with full detail but reported to the caller with a
// short, credential-free message.
func handlePipelineError(c *gin.Context, err error, genericMessage string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrExtraction):
		response.UnprocessableEntity(c, "Failed to extract text from the document")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "resource")
	case errors.Is(err, service.ErrProviderExhausted):
		log.Printf("provider error: %v", err)
		response.Error(c, 502, "PROVIDER_ERROR", genericMessage)
	default:
		log.Printf("pipeline error: %v", err)
		response.InternalError(c, genericMessage)
	}
}
