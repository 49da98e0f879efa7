package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextUserIDKey    = "userID"
	contextRequestIDKey = "requestID"
)

// requestIDMiddleware tags every request with a unique id, echoed in the
// response header and attached to error logs for correlation.
func (s *Server) requestIDMiddleware(ctx *gin.Context) {
	id := uuid.NewString()
	ctx.Set(contextRequestIDKey, id)
	ctx.Header("X-Request-Id", id)
	ctx.Next()
}

// authMiddleware resolves the bearer token into a user id and stores it in
// the request context. Everything behind it can assume an authenticated
// caller.
func (s *Server) authMiddleware(ctx *gin.Context) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is required"})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header format must be Bearer {token}"})
		return
	}

	userID, err := s.users.ResolveIdentity(ctx.Request.Context(), parts[1])
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	ctx.Set(contextUserIDKey, userID)
	ctx.Next()
}

// currentUserID returns the authenticated user id stored by authMiddleware.
func currentUserID(ctx *gin.Context) string {
	return ctx.GetString(contextUserIDKey)
}
