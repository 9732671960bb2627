package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage signals an upload that does not decode as a supported image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrEncoderRejected signals that the encoder refused an otherwise valid payload.
	ErrEncoderRejected = errors.New("encoder rejected payload")
	// ErrEncoderUnavailable signals an encoder transport or server failure.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrEncoderAuth signals an encoder authentication failure.
	ErrEncoderAuth = errors.New("encoder authentication failed")
	// ErrEncoderThrottled signals an encoder rate limit hit.
	ErrEncoderThrottled = errors.New("encoder throttled")

	// ErrCacheCorrupt signals an unreadable or internally inconsistent catalog cache file.
	ErrCacheCorrupt = errors.New("catalog cache corrupt")
	// ErrCacheStale signals a cache file built with a different encoder model or dimension.
	ErrCacheStale = errors.New("catalog cache stale")
	// ErrEmptyCatalog signals a build that produced zero usable entries.
	ErrEmptyCatalog = errors.New("catalog has no usable entries")
	// ErrRebuildInProgress signals that a catalog rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)

// EncodingError wraps a per-image catalog build failure with the product it belongs to.
type EncodingError struct {
	ProductID string
	ImagePath string
	Err       error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode product %s (%s): %v", e.ProductID, e.ImagePath, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// NewEncodingError creates an EncodingError for a catalog build failure.
func NewEncodingError(productID, imagePath string, err error) error {
	return &EncodingError{ProductID: productID, ImagePath: imagePath, Err: err}
}
