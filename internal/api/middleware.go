package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDKey       = "userID"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := apperrors.NewInternalError(fmt.Errorf("panic: %v", recovered))
		logger.WithContext(c.Request.Context()).Error("Panic while serving request", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(apperrors.HTTPStatus(err), errorResponse{
			Error: apperrors.PublicMessage(err),
			Kind:  string(apperrors.TypeOf(err)),
		})
	})
}

func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithContext(c.Request.Context()).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization", "X-Client-Info", "Apikey", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cors.New(cfg)
}

// authMiddleware resolves the bearer token to a user id. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted too.
func authMiddleware(identity domain.IdentityProvider, fail func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			fail(c, apperrors.NewAuthenticationError(nil))
			return
		}

		userID, err := identity.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			if apperrors.TypeOf(err) != apperrors.ErrorTypeAuthentication {
				err = apperrors.NewAuthenticationError(err)
			}
			fail(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
