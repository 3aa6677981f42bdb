package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsTolerateNilCause(t *testing.T) {
	tests := []struct {
		name string
		err  *StandardError
	}{
		{"search query failed", NewSearchQueryFailedError("count", nil)},
		{"connection failed", NewElasticsearchConnectionFailedError(nil)},
		{"indexing failed", NewIndexingFailedError(nil)},
		{"cache unavailable", NewCacheUnavailableError(nil)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.err)
			assert.NotEmpty(t, tc.err.Details)
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	cause := fmt.Errorf("the socket closed")
	err := NewSearchQueryFailedError("search", cause)

	assert.ErrorIs(t, err, NewSearchQueryFailedError("other", nil))
	assert.NotErrorIs(t, err, NewSearchTimeoutError("search"))
}

func TestClientErrorClassification(t *testing.T) {
	assert.True(t, IsClientError(NewInvalidQueryError("value too long")))
	assert.False(t, IsClientError(NewSearchTimeoutError("count")))
	assert.False(t, IsClientError(fmt.Errorf("plain")))

	assert.Equal(t, http.StatusBadRequest, StatusOf(NewInvalidQueryError("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(fmt.Errorf("plain")))
}

func TestCacheEntryCorrupt(t *testing.T) {
	err := NewCacheEntryCorruptError("browse:abc123")

	assert.Equal(t, ErrCodeCacheEntryCorrupt, err.Code)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Details, "browse:abc123")
}
