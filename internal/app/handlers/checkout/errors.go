package checkout

import (
	"errors"

	"riide/internal/domain/pricing"
)

var (
	ErrEstimateMismatch = errors.New("checkout: client estimate does not match server estimate")
	ErrPaymentsFailed   = errors.New("checkout: payment provider unavailable")
)

// EstimateMismatchError carries the authoritative estimate back to the client so it can
// refresh its quote.
type EstimateMismatchError struct {
	Server pricing.Estimate
}

func (e *EstimateMismatchError) Error() string { return ErrEstimateMismatch.Error() }

func (e *EstimateMismatchError) Unwrap() error { return ErrEstimateMismatch }
