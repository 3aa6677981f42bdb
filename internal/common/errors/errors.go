// Package errors provides standardized error handling for the catalog browser.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeDocumentInvalid   ErrorCode = "DOCUMENT_INVALID"
	ErrCodeIndexingFailed    ErrorCode = "INDEXING_FAILED"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeCacheEntryCorrupt ErrorCode = "CACHE_ENTRY_CORRUPT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"httpStatus"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// IsClientError reports whether err represents bad caller input (an HTTP
// 4xx-equivalent condition) rather than an engine or infrastructure failure.
func IsClientError(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.HTTPStatus >= 400 && se.HTTPStatus < 500
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not a
// StandardError.
func StatusOf(err error) int {
	var se *StandardError
	if errors.As(err, &se) && se.HTTPStatus != 0 {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ==========================
// 2. Error Constructors
// ==========================

// errDetail renders a cause for the Details field, tolerating a nil cause.
func errDetail(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// NewInvalidQueryError creates a non-retryable client error for bad filter input.
func NewInvalidQueryError(details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeInvalidQuery,
		Message:    "Invalid request.",
		Details:    details,
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
		Timestamp:  time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeElasticsearchConnectionFailed,
		Message:    "Elasticsearch connection error",
		Details:    errDetail(err),
		Retryable:  true,
		HTTPStatus: http.StatusBadGateway,
		Timestamp:  time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeSearchQueryFailed,
		Message:    "Elasticsearch query error",
		Details:    fmt.Sprintf("operation: %s, error: %s", operation, errDetail(err)),
		Retryable:  true,
		HTTPStatus: http.StatusBadGateway,
		Timestamp:  time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:       ErrCodeSearchTimeout,
		Message:    "Elasticsearch query timeout",
		Details:    fmt.Sprintf("operation: %s", operation),
		Retryable:  true,
		HTTPStatus: http.StatusGatewayTimeout,
		Timestamp:  time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:       ErrCodeIndexNotFound,
		Message:    "Elasticsearch index not found",
		Details:    fmt.Sprintf("indexName: %s", indexName),
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
	}
}

// NewDocumentInvalidError creates a non-retryable schema validation error.
func NewDocumentInvalidError(documentID, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeDocumentInvalid,
		Message:    "Catalog document failed schema validation",
		Details:    details,
		Retryable:  false,
		HTTPStatus: http.StatusUnprocessableEntity,
		Metadata:   map[string]interface{}{"documentId": documentID},
		Timestamp:  time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable bulk indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeIndexingFailed,
		Message:    "Failed to index catalog documents",
		Details:    errDetail(err),
		Retryable:  true,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache connectivity error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeCacheUnavailable,
		Message:    "Browse cache unavailable",
		Details:    errDetail(err),
		Retryable:  true,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
	}
}

// NewCacheEntryCorruptError flags a cache entry that failed to decode. The
// entry is dropped and recomputed, so the condition is not retryable.
func NewCacheEntryCorruptError(key string) *StandardError {
	return &StandardError{
		Code:       ErrCodeCacheEntryCorrupt,
		Message:    "Browse cache entry is not decodable",
		Details:    fmt.Sprintf("key: %s", key),
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
	}
}
