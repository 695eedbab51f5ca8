package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/shared/server/respond"
)

type chatRequest struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message"`
	Context    string `json:"context"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Message  string `json:"message"`
	Response string `json:"response"`
	ChatID   string `json:"chat_id"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.chat)
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if id := strings.TrimSpace(req.DocumentID); id != "" {
		c.Set(respond.DocumentIDKey, id)
	}

	turn, err := h.Svc.Reply(c.Request.Context(), Request{
		DocumentID: req.DocumentID,
		Message:    req.Message,
		Context:    req.Context,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "message is required", nil)
		case errors.Is(err, ErrUpstream):
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "chat failed: "+err.Error(), err)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "chat failed", err)
		}
		return
	}

	respond.OK(c, ChatResponse{
		Message:  turn.Message,
		Response: turn.Response,
		ChatID:   turn.ID,
	})
}
