package middlewares

import (
	"context"
	"net/http"
	"strings"

	"imagegallery/apperror"
	"imagegallery/logger"
	"imagegallery/models"
	"imagegallery/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, *models.User, error)
}

// Session resolves the session cookie, or a Bearer header for API clients,
// and stores the session and user ids in the request context. Anonymous
// and invalid sessions pass through; RequireUser enforces authentication.
// A store failure aborts the request with its error status.
func Session(auth Authenticator, cookieName string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !apperror.Is(err, apperror.AuthError) {
				abortWithError(c, log, err)
				return
			}
			c.Next()
			return
		}

		ctx := utils.WithSessionID(c.Request.Context(), session.ID)
		ctx = utils.WithUserID(ctx, user.ID.Hex())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.UserIDFromContext(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, log logrus.FieldLogger, err error) {
	logger.LogError(log, "session lookup failed", err, logrus.Fields{"request_id": c.GetString(RequestIDKey)})

	status, msg := http.StatusInternalServerError, "Internal server error"
	if appErr, ok := apperror.From(err); ok {
		status, msg = appErr.StatusCode(), appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}
