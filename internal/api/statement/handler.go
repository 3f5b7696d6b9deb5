package statement

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/service"
)

// Handler handles statement upload and retrieval
type Handler struct {
	analysisService *service.AnalysisService
	state           *service.State
}

// NewHandler creates a new statement handler
func NewHandler(analysisService *service.AnalysisService, state *service.State) *Handler {
	return &Handler{
		analysisService: analysisService,
		state:           state,
	}
}

// RegisterRoutes registers statement routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	statement := r.Group("/statement")
	{
		statement.POST("", h.Upload)
		statement.GET("", h.Get)
		statement.DELETE("", h.Clear)
		statement.GET("/export", h.Export)
	}
}

// Upload processes a new statement file. Any failure leaves the state idle.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer src.Close()

	snapshot, err := h.analysisService.Load(c.Request.Context(), h.state, src, file.Filename)
	if err != nil {
		kind := domain.KindOf(err)
		c.JSON(statusFor(kind), gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusCreated, snapshot.View())
}

// Get returns the loaded statement
func (h *Handler) Get(c *gin.Context) {
	if !h.state.Loaded() {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNoStatement.Error()})
		return
	}
	c.JSON(http.StatusOK, h.state.Snapshot.View())
}

// Clear unloads the statement and resets the conversation
func (h *Handler) Clear(c *gin.Context) {
	h.analysisService.Reset(h.state, service.ResetNoFile)
	c.Status(http.StatusNoContent)
}

// Export downloads the processed statement as xlsx
func (h *Handler) Export(c *gin.Context) {
	if !h.state.Loaded() {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNoStatement.Error()})
		return
	}

	data, err := service.BuildStatementXLSX(h.state.Snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFilename(h.state.Snapshot)))
	c.Data(http.StatusOK, service.ExportContentType, data)
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindStructural:
		return http.StatusUnprocessableEntity
	case domain.KindUnreadableFile:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

