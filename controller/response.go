package controller

import (
	"net/http"

	"imagegallery/apperror"
	"imagegallery/logger"
	"imagegallery/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError writes {"error": message}. Causes of server-side failures
// are logged, never sent to the client.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	fields := logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(middlewares.RequestIDKey),
	}

	appErr, ok := apperror.From(err)
	if !ok {
		logger.LogError(log, "unhandled error", err, fields)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.LogError(log, appErr.Message, err, fields)
	}
	c.JSON(status, gin.H{"error": appErr.Message})
}
