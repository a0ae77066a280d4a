package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskportal/internal/model"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityReader is satisfied by the Postgres and the in-memory activity
// repositories.
type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
}

type ActivityHandler struct {
	repo   ActivityReader
	logger *zap.Logger
}

func NewActivityHandler(repo ActivityReader, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{repo: repo, logger: logger}
}

// List returns the newest audit entries. ?limit= caps the count.
func (h *ActivityHandler) List(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "ListActivity", err, "", "Failed to fetch activity")
		return
	}
	c.JSON(http.StatusOK, entries)
}
