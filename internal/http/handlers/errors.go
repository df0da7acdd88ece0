// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes the error code taxonomy that is mapped to HTTP
// responses (via the `fail()` helper in this package). Two families coexist:
//
//   - Transport codes are lowercase snake_case and mirror common HTTP status
//     semantics (bad_request, not_found, method_not_allowed). They cover
//     failures that happen before a dispatch operation runs.
//   - Dispatch codes are the UPPER_SNAKE kinds produced by the services layer
//     (CHANNEL_NOT_FOUND, UNSUPPORTED_MEDIA_TYPE, …). They pass through
//     unchanged so clients can branch on the same identifiers that appear in
//     per-message failure records.
//
// All error responses include both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "CHANNEL_NOT_FOUND",
//	  "message": "channel connection 7 not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ianampudia11/go-omni-inbox/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// statusForKind maps a services error kind to its HTTP status. Kinds describe
// caller mistakes as 4xx; only adapter/infrastructure failures surface as 500.
func statusForKind(k services.Kind) int {
	switch k {
	case services.KindValidation,
		services.KindChannelInactive,
		services.KindUnsupportedOperation,
		services.KindUnsupportedMediaType,
		services.KindAudioConversionFailed,
		services.KindBatchSizeExceeded:
		return http.StatusBadRequest
	case services.KindChannelNotFound:
		return http.StatusNotFound
	case services.KindAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// failDispatch writes the error envelope for a services-layer failure, using
// the kind as the stable wire code.
func failDispatch(c *gin.Context, err error) {
	kind := services.KindOf(err)
	fail(c, statusForKind(kind), string(kind), services.MessageOf(err))
}
