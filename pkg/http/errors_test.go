package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError("query failed", http.StatusInternalServerError).WithError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "query failed: connection refused", err.Error())

	bad := BadRequestError("days must be a number").WithDetails([]ValidationError{{Field: "days", Code: "ERR_BIND"}})
	assert.Equal(t, http.StatusBadRequest, bad.Status)
	assert.Len(t, bad.Details, 1)
	assert.Equal(t, "days must be a number", bad.Error())

	assert.Equal(t, http.StatusTooManyRequests, TooManyRequestsError("slow down").Status)
}
