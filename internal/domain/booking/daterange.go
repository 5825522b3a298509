package booking

import (
	"errors"
	"fmt"

	"riide/internal/domain/shared/daterange"
)

// MaxRentalDays bounds the days a single rental or quote may cover.
const MaxRentalDays = 365

var (
	ErrStartInPast  = errors.New("booking: start date is in the past")
	ErrRangeTooLong = fmt.Errorf("booking: rental longer than %d days", MaxRentalDays)
)

// ValidateRequestedRange checks a rental window requested at civil date today.
func ValidateRequestedRange(dr daterange.DateRange, today daterange.Date) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if err := ValidateLength(dr); err != nil {
		return err
	}
	if dr.Start.Before(today) {
		return ErrStartInPast
	}
	return nil
}

// ValidateLength rejects ranges covering more than MaxRentalDays. Inverted ranges are
// zero-length and pass.
func ValidateLength(dr daterange.DateRange) error {
	if dr.Len() > MaxRentalDays {
		return ErrRangeTooLong
	}
	return nil
}
