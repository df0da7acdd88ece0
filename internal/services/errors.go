// Package services implements the dispatch core: channel access validation,
// contact/conversation identity resolution, the dispatch router with its
// capability gating, and the batch coordinator. This file defines the typed
// error taxonomy shared by all of them.
//
// Every predictable failure carries a closed Kind so callers branch on
// values, never on error-message text. Translation into HTTP status codes is
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure. The set is closed; handlers map each
// kind to exactly one HTTP status.
type Kind string

// Error kinds.
const (
	// KindValidation marks malformed input, caught before any resolution step.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindChannelNotFound: no channel connection with the requested id exists.
	KindChannelNotFound Kind = "CHANNEL_NOT_FOUND"
	// KindAccessDenied: the connection exists but belongs to another tenant.
	KindAccessDenied Kind = "ACCESS_DENIED"
	// KindChannelInactive: the connection is not in the active state.
	KindChannelInactive Kind = "CHANNEL_INACTIVE"
	// KindUnsupportedOperation: the channel's capability entry excludes the
	// requested operation (template/interactive on a non-WhatsApp channel).
	KindUnsupportedOperation Kind = "UNSUPPORTED_OPERATION"
	// KindUnsupportedMediaType: the media kind is excluded for this channel.
	KindUnsupportedMediaType Kind = "UNSUPPORTED_MEDIA_TYPE"
	// KindAudioConversionFailed: the adapter signalled a media-transcoding
	// failure (a client problem, not a platform one).
	KindAudioConversionFailed Kind = "AUDIO_CONVERSION_FAILED"
	// KindBatchSizeExceeded: the batch exceeds the maximum item count; the
	// whole request is rejected before anything dispatches.
	KindBatchSizeExceeded Kind = "BATCH_SIZE_EXCEEDED"
	// KindDispatchFailed: generic adapter failure.
	KindDispatchFailed Kind = "DISPATCH_FAILED"
)

// Error is the typed failure returned by every service method. Err, when
// set, preserves the underlying cause for errors.Is/As chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// E constructs a typed error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef constructs a typed error with a formatted message.
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind of err. Untyped errors classify as
// KindDispatchFailed: anything a collaborator raises without a kind is an
// adapter/infrastructure failure from the caller's point of view.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindDispatchFailed
}

// MessageOf extracts the human-readable message of err, falling back to
// err.Error() for untyped errors.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
