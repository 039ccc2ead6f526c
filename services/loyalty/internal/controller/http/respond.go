package http

import (
	"net/http"

	"pointstack/services/loyalty/internal/entity"

	"github.com/gin-gonic/gin"
)

// respondError maps the ledger error taxonomy onto HTTP statuses. Retryable
// serialization conflicts are flagged so POS clients know to retry once;
// every other failure is terminal for the caller.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	retryable := false

	switch {
	case entity.IsValidation(err):
		status = http.StatusBadRequest
	case entity.IsNotFound(err):
		status = http.StatusNotFound
	case entity.IsConflict(err):
		status = http.StatusConflict
	case entity.IsRetryable(err):
		status = http.StatusConflict
		retryable = true
	}

	body := gin.H{"error": err.Error()}
	if retryable {
		body["retryable"] = true
	}
	c.JSON(status, body)
}
