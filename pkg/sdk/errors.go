package pixdex

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the service's error codes.
// Use errors.Is() to check.
var (
	ErrInvalidImage       = errors.New("pixdex: invalid image")
	ErrInvalidRequest     = errors.New("pixdex: invalid request")
	ErrPayloadTooLarge    = errors.New("pixdex: payload too large")
	ErrEncoderRejected    = errors.New("pixdex: encoder rejected image")
	ErrEncoderUnavailable = errors.New("pixdex: encoder unavailable")
	ErrRebuildInProgress  = errors.New("pixdex: rebuild already in progress")
	ErrInternal           = errors.New("pixdex: internal server error")
)

var codeSentinels = map[string]error{
	"invalid_image":       ErrInvalidImage,
	"invalid_request":     ErrInvalidRequest,
	"payload_too_large":   ErrPayloadTooLarge,
	"encoder_rejected":    ErrEncoderRejected,
	"encoder_unavailable": ErrEncoderUnavailable,
	"rebuild_in_progress": ErrRebuildInProgress,
	"internal":            ErrInternal,
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pixdex: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the error code to its sentinel so errors.Is works.
func (e *APIError) Unwrap() error {
	if s, ok := codeSentinels[e.Code]; ok {
		return s
	}
	return nil
}
