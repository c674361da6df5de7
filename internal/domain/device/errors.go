package device

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates one connector failed during discovery or control.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedResponse indicates an upstream body with unexpected shape. It
	// is a kind of ErrBackendUnavailable.
	ErrMalformedResponse = fmt.Errorf("malformed upstream response: %w", ErrBackendUnavailable)
	// ErrAllBackendsUnavailable indicates a discovery cycle where every connector failed.
	ErrAllBackendsUnavailable = errors.New("all backends unavailable")
	// ErrDeviceNotFound indicates a device absent after a permitted re-discovery.
	ErrDeviceNotFound = errors.New("not available")
	// ErrRetryExhausted indicates the miss tracker refused another re-discovery.
	ErrRetryExhausted = errors.New("no more tries")
	// ErrUnsupportedOperation indicates a state query or action not defined for a device.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrUnknownPlatform indicates a device whose platform has no handler.
	ErrUnknownPlatform = errors.New("unknown device platform")
)
