package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrFormatUnrecognized    = errors.New("format unrecognized")
	ErrNormalizationQuality  = errors.New("normalization quality below threshold")
	ErrMissingRequiredSource = errors.New("required source missing")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidConfig         = errors.New("invalid configuration")
)
