package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTooManyRequestsIncludesWait(t *testing.T) {
	err := TooManyRequests("Slow down", 90*time.Second)

	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Contains(t, err.Message, "retry in 1m30s")

	noWait := TooManyRequests("Slow down", 0)
	assert.Equal(t, "Slow down", noWait.Message)
}

func TestIs(t *testing.T) {
	err := NotFound("Item", nil)

	assert.True(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(err, "FORBIDDEN"))
	assert.False(t, Is(fmt.Errorf("plain"), "NOT_FOUND"))

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, Is(wrapped, "NOT_FOUND"))
}
