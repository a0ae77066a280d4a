package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskportal/internal/repository"
	"taskportal/internal/service"
	"taskportal/pkg/logger"
)

// respondError writes the {"error": "..."} body the portal client reads.
// fallback is used for unexpected failures so internals never leak.
func respondError(c *gin.Context, log *zap.Logger, op string, err error, notFound, fallback string) {
	log = logger.WithTrace(c.Request.Context(), log)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn(op+": validation failed", zap.String("field", verr.Field), zap.String("reason", verr.Message))
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, repository.ErrNotFound):
		log.Warn(op+": not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoleMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error(op+": failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
