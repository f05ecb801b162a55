package domain

import "errors"

var (
	// ErrProviderUnavailable marks upstream transport errors, timeouts,
	// non-2xx responses, and malformed payloads. Always absorbed at the
	// aggregation boundary.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNotFound marks an upstream that reports no data for a symbol.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientHistory marks a candle series shorter than
	// MinIndicatorHistory.
	ErrInsufficientHistory = errors.New("insufficient candle history")

	// ErrInvalidArgument marks caller errors (empty symbol, unknown
	// asset class). The only error Aggregate propagates.
	ErrInvalidArgument = errors.New("invalid argument")
)
