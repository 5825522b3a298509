package daterange

import (
	"errors"
	"fmt"
	"time"
)

const layout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("daterange: invalid calendar date")
	ErrInvalidRange = errors.New("daterange: end must not be before start")
)

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises overflowing components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the calendar day of now observed in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(now.In(loc))
}

// ParseDate accepts ISO dates (2006-01-02). A trailing time component, as produced by
// clients serialising instants, is tolerated and ignored.
func ParseDate(raw string) (Date, error) {
	if len(raw) > len(layout) && raw[len(layout)] == 'T' {
		raw = raw[:len(layout)]
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return FromTime(t), nil
}

// MustParse panics on malformed input; intended for fixtures and tests.
func MustParse(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

const secondsPerDay = 24 * 60 * 60

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// AddMonths shifts by whole months; overflowing days roll into the next month
// (August 31 plus 6 months is March 3).
func (d Date) AddMonths(n int) Date {
	return NewDate(d.Year, d.Month+time.Month(n), d.Day)
}

func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysSince returns the number of whole calendar days from other to d. Day numbers come
// from UTC midnights, so neither daylight saving nor the time.Duration range limits it.
func (d Date) DaysSince(other Date) int {
	return int(d.dayNumber() - other.dayNumber())
}

func (d Date) dayNumber() int64 {
	return d.midnight().Unix() / secondsPerDay
}

func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DateRange is the closed interval [Start, End] of calendar days.
type DateRange struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

func New(start, end Date) (DateRange, error) {
	dr := DateRange{Start: start, End: end}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidDate
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Len is the number of days covered; zero when End precedes Start.
func (dr DateRange) Len() int {
	if dr.End.Before(dr.Start) {
		return 0
	}
	return dr.End.DaysSince(dr.Start) + 1
}

// Days lists every covered day in ascending order.
func (dr DateRange) Days() []Date {
	n := dr.Len()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dr.Start.AddDays(i))
	}
	return out
}

func (dr DateRange) Contains(d Date) bool {
	return !d.Before(dr.Start) && !d.After(dr.End)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.End.Before(other.Start) && !other.End.Before(dr.Start)
}

// Intersect returns the shared days of both ranges, if any.
func (dr DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !dr.Overlaps(other) {
		return DateRange{}, false
	}
	start := dr.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.Before(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

func (dr DateRange) String() string {
	return dr.Start.String() + ".." + dr.End.String()
}
