package pricing

import (
	"errors"
	"fmt"
	"strings"

	"riide/internal/domain/fleet"
	"riide/internal/domain/shared/daterange"
)

var ErrInvalidPeriod = errors.New("pricing: invalid demand period")

// Scope selects the vehicle types a demand period applies to.
type Scope string

const (
	ScopeCar Scope = Scope(fleet.TypeCar)
	ScopeVan Scope = Scope(fleet.TypeVan)
	ScopeAll Scope = "all"
)

func (s Scope) matches(t fleet.Type) bool {
	return s == ScopeAll || string(s) == string(t)
}

// DemandPeriod is a named surge window. Start and End are both inclusive.
type DemandPeriod struct {
	Name   string         `json:"name" yaml:"name"`
	Start  daterange.Date `json:"start" yaml:"start"`
	End    daterange.Date `json:"end" yaml:"end"`
	Scope  Scope          `json:"category" yaml:"category"`
	Factor float64        `json:"factor" yaml:"factor"`
}

func (p DemandPeriod) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidPeriod)
	}
	if _, err := daterange.New(p.Start, p.End); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPeriod, name, err)
	}
	switch p.Scope {
	case ScopeCar, ScopeVan, ScopeAll:
	default:
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidPeriod, name, p.Scope)
	}
	if p.Factor <= 0 {
		return fmt.Errorf("%w: %s: factor must be positive", ErrInvalidPeriod, name)
	}
	return nil
}

func (p DemandPeriod) covers(d daterange.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// DemandCalendar is the immutable set of configured demand periods.
type DemandCalendar struct {
	periods []DemandPeriod
}

func NewDemandCalendar(periods []DemandPeriod) (DemandCalendar, error) {
	for _, p := range periods {
		if err := p.Validate(); err != nil {
			return DemandCalendar{}, err
		}
	}
	return DemandCalendar{periods: append([]DemandPeriod(nil), periods...)}, nil
}

// Periods returns a copy in configuration order.
func (c DemandCalendar) Periods() []DemandPeriod {
	return append([]DemandPeriod(nil), c.periods...)
}

// SeasonalFactor multiplies the factors of every period covering d for the given type.
// Factors are applied in configuration order so results are bit-for-bit reproducible.
func (c DemandCalendar) SeasonalFactor(d daterange.Date, t fleet.Type) float64 {
	factor := 1.0
	for _, p := range c.periods {
		if p.Scope.matches(t) && p.covers(d) {
			factor *= p.Factor
		}
	}
	return factor
}
