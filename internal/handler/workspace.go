package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studyhub/rag/internal/middleware"
	"github.com/studyhub/rag/internal/pkg/response"
	"github.com/studyhub/rag/internal/service"
)

type WorkspaceHandler struct {
	workspaceSvc *service.WorkspaceService
	docSvc       *service.DocumentService
	chatSvc      *service.ChatService
}

func NewWorkspaceHandler(workspaceSvc *service.WorkspaceService, docSvc *service.DocumentService, chatSvc *service.ChatService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceSvc: workspaceSvc,
		docSvc:       docSvc,
		chatSvc:      chatSvc,
	}
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}

	ws, err := h.workspaceSvc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Printf("create workspace failed: %v", err)
		response.InternalError(c, "Failed to create workspace")
		return
	}
	response.Created(c, ws)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	workspaces, err := h.workspaceSvc.List(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list workspaces failed: %v", err)
		response.InternalError(c, "Failed to list workspaces")
		return
	}
	response.Success(c, workspaces)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workspace id")
		return
	}

	ws, err := h.workspaceSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "workspace")
			return
		}
		log.Printf("get workspace failed: %v", err)
		response.InternalError(c, "Failed to load workspace")
		return
	}
	response.Success(c, ws)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workspace id")
		return
	}

	if err := h.workspaceSvc.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "workspace")
			return
		}
		log.Printf("delete workspace failed: %v", err)
		response.InternalError(c, "Failed to delete workspace")
		return
	}
	response.NoContent(c)
}

func (h *WorkspaceHandler) Documents(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workspace id")
		return
	}

	if _, err := h.workspaceSvc.Get(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "workspace")
			return
		}
		log.Printf("get workspace failed: %v", err)
		response.InternalError(c, "Failed to load workspace")
		return
	}

	docs, err := h.docSvc.ListByWorkspace(c.Request.Context(), id)
	if err != nil {
		log.Printf("list workspace documents failed: %v", err)
		response.InternalError(c, "Failed to list documents")
		return
	}
	response.Success(c, docs)
}

func (h *WorkspaceHandler) Chat(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid workspace id")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "question is required")
		return
	}

	if _, err := h.workspaceSvc.Get(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "workspace")
			return
		}
		log.Printf("get workspace failed: %v", err)
		response.InternalError(c, "Failed to load workspace")
		return
	}

	answer, err := h.chatSvc.Ask(c.Request.Context(), service.WorkspaceScope(id), req.Question, req.DeepSearch)
	if err != nil {
		handlePipelineError(c, err, "Failed to generate answer")
		return
	}
	response.Success(c, ChatResponse{Answer: answer})
}
