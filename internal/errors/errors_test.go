package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitedEnvelope(t *testing.T) {
	envelope := NewRateLimitedError("cooldown active")
	assert.Equal(t, "RATE_LIMITED", envelope.Code)
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusFromEnvelope(envelope))
}

func TestHTTPStatusFromCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode("NO_SUCH_CODE"))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromEnvelope(nil))
}
