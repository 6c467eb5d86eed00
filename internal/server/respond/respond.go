// Package respond maps service errors onto HTTP responses.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/common"
)

// genericFailure is shown when the cause must not leak to the client.
const genericFailure = "حدث خطأ في الخادم، حاول لاحقًا"

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidAction),
		errors.Is(err, common.ErrInvalidUser),
		errors.Is(err, common.ErrInvalidSortKey),
		errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error writes err as JSON. Client errors carry their message, server errors
// carry failureMsg (or a generic text) and are logged with the cause.
func Error(c *gin.Context, err error, failureMsg string) {
	status := Status(err)
	if status < http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	if failureMsg == "" {
		failureMsg = genericFailure
	}
	_ = c.Error(err)
	log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.AbortWithStatusJSON(status, gin.H{"error": failureMsg})
}

// BadRequest rejects malformed input that never reached a service.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
