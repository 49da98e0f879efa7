package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlebedeva/projectdock/internal/common"
)

// statusFromError maps the service outcome taxonomy onto HTTP status codes,
// one kind to one code.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrUpstreamStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(ctx *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx.Request.Context(), "request failed",
			"request_id", ctx.GetString(contextRequestIDKey), "path", ctx.FullPath(), "error", err.Error())
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
