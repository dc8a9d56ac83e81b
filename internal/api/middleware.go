package api

import (
	stderrors "errors"
	"net/http"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/gin-gonic/gin"
)

func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var (
			apiErr   *errors.APIError
			notFound *errors.NotFoundError
			dbErr    *errors.DatabaseError
		)
		switch {
		case stderrors.As(err, &apiErr):
			logger.Warn("API error: %v", apiErr)
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		case stderrors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		case stderrors.As(err, &dbErr):
			logger.Error("Database error: %v", dbErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		case errors.IsTransient(err):
			logger.Warn("Upstream unavailable: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upstream unavailable"})
		default:
			logger.Error("Unexpected error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		c.Abort()
	}
}
