package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
	"github.com/parkos/parklot/internal/service/auth"
)

// identityKey is where the auth middleware stashes the verified caller.
const identityKey = "identity"

// writeError translates service errors into HTTP responses. Business-rule
// violations map to 409 so clients can distinguish them from bad input.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": models.ErrInvalidCredentials.Error()})
	case errors.Is(err, models.ErrNotShiftOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": models.ErrNotShiftOwner.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrNoActiveShift),
		errors.Is(err, models.ErrShiftAlreadyActive),
		errors.Is(err, models.ErrShiftNotActive),
		errors.Is(err, models.ErrDuplicateEntry),
		errors.Is(err, models.ErrExitBeforeEntry),
		errors.Is(err, models.ErrUnconfirmedDiscrepancy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isReconciliationUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reconciliation unavailable"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isReconciliationUnavailable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "reconciliation unavailable")
}

// Caller returns the authenticated operator stored by the auth middleware.
func Caller(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*auth.Identity)
	return identity
}

// SetCaller stores the verified identity for downstream handlers.
func SetCaller(c *gin.Context, identity *auth.Identity) {
	c.Set(identityKey, identity)
}

// callerName returns the authenticated operator's username for audit fields.
func callerName(c *gin.Context) string {
	if identity := Caller(c); identity != nil {
		return identity.Username
	}
	return ""
}
