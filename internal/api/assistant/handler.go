package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/service"
)

// Handler handles commentary and chat requests
type Handler struct {
	commentaryService *service.CommentaryService
	chatService       *service.ChatService
	state             *service.State
}

// NewHandler creates a new assistant handler
func NewHandler(commentaryService *service.CommentaryService, chatService *service.ChatService, state *service.State) *Handler {
	return &Handler{
		commentaryService: commentaryService,
		chatService:       chatService,
		state:             state,
	}
}

// RegisterRoutes registers assistant routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/commentary", h.Commentary)

	chat := r.Group("/chat")
	{
		chat.POST("", h.Chat)
		chat.GET("", h.History)
	}
}

// Commentary requests a one-shot assessment of the loaded statement. AI
// failures are returned as 200 with kind set.
func (h *Handler) Commentary(c *gin.Context) {
	if !h.state.Loaded() {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrNoStatement.Error()})
		return
	}

	commentary := h.commentaryService.RequestCommentary(c.Request.Context(), h.state.Snapshot.Document)
	c.JSON(http.StatusOK, commentary)
}

// Chat handles a user turn
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Send(c.Request.Context(), h.state, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns the displayed conversation
func (h *Handler) History(c *gin.Context) {
	turns, err := h.chatService.History(h.state)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoStatement):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
