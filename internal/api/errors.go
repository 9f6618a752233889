package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"money_transfer/internal/domain" // Domain errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// statusFor maps a ledger error to the HTTP status returned to the client
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSelfTransferNotAllowed),
		errors.Is(err, domain.ErrInvalidFeeRate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrIneligibleAccount),
		errors.Is(err, domain.ErrReceiverIneligible):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrReceiverNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrAlreadySuspended),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as an {"error": ...} body. Internal
// errors are not echoed to the client.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	body := gin.H{"error": err.Error()}
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		body["retryable"] = true // Client may resubmit
	}
	c.JSON(status, body)
}
