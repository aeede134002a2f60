package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pronostix/internal/services"
)

// respondError maps a service error to an HTTP status and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPredictionNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrNoStakeOnWinner),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrDeadlineInPast),
		errors.Is(err, services.ErrNotEnoughOptions),
		errors.Is(err, services.ErrDuplicateOption),
		errors.Is(err, services.ErrPredictionMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPredictionResolved),
		errors.Is(err, services.ErrPredictionClosed),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrItemAlreadyOwned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrItemNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
