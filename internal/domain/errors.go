package domain

import "errors"

var (
	// ErrInvalidLuminance indicates a luminance value is negative or not a number
	ErrInvalidLuminance = errors.New("luminance value must be a non-negative number")

	// ErrSampleNotFound indicates the store holds no matching sample
	ErrSampleNotFound = errors.New("sample not found")

	// ErrNoActiveSurface indicates nothing is currently observable
	ErrNoActiveSurface = errors.New("no active surface")

	// ErrCaptureUnavailable indicates the screenshot source cannot capture right now
	ErrCaptureUnavailable = errors.New("capture unavailable")

	// ErrMalformedCapture indicates a capture payload is not the expected image encoding
	ErrMalformedCapture = errors.New("malformed capture payload")

	// ErrInvalidRange indicates a time range whose end precedes its start
	ErrInvalidRange = errors.New("range end precedes start")
)
