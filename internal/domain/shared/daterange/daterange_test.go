package daterange

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("iso date", func(t *testing.T) {
		d, err := ParseDate("2026-05-02")
		require.NoError(t, err)
		assert.Equal(t, Date{Year: 2026, Month: time.May, Day: 2}, d)
		assert.Equal(t, "2026-05-02", d.String())
	})

	t.Run("timestamp suffix ignored", func(t *testing.T) {
		d, err := ParseDate("2026-05-02T10:30:00.000Z")
		require.NoError(t, err)
		assert.Equal(t, "2026-05-02", d.String())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("2026/05/02")
		assert.ErrorIs(t, err, ErrInvalidDate)

		_, err = ParseDate("2026-02-30")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestDateArithmetic(t *testing.T) {
	d := MustParse("2026-02-27")
	assert.Equal(t, "2026-03-01", d.AddDays(2).String())
	assert.Equal(t, "2025-12-31", MustParse("2026-01-01").AddDays(-1).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(d.AddDays(2)))

	// 2026-03-29 is a DST switch day in Europe; calendar math must stay whole.
	assert.Equal(t, 1, MustParse("2026-03-30").DaysSince(MustParse("2026-03-29")))
}

func TestDaysSince_CenturiesApart(t *testing.T) {
	start, end := MustParse("2026-01-01"), MustParse("2526-01-01")
	assert.Equal(t, 182621, end.DaysSince(start))
	assert.Equal(t, -182621, start.DaysSince(end))
	assert.Equal(t, 3652058, MustParse("9999-12-31").DaysSince(MustParse("0001-01-01")))

	dr := DateRange{Start: start, End: end}
	require.Equal(t, 182622, dr.Len())
	days := dr.Days()
	require.Len(t, days, 182622)
	assert.Equal(t, end, days[len(days)-1])
}

func TestWeekend(t *testing.T) {
	assert.True(t, MustParse("2026-05-02").IsWeekend())  // Saturday
	assert.True(t, MustParse("2026-05-03").IsWeekend())  // Sunday
	assert.False(t, MustParse("2026-05-04").IsWeekend()) // Monday
}

func TestToday(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	now := time.Date(2026, 7, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-07-02", Today(now, paris).String())
	assert.Equal(t, "2026-07-01", Today(now, nil).String())
}

func TestDateRange(t *testing.T) {
	dr, err := New(MustParse("2026-05-30"), MustParse("2026-06-02"))
	require.NoError(t, err)
	assert.Equal(t, 4, dr.Len())

	days := dr.Days()
	require.Len(t, days, 4)
	assert.Equal(t, "2026-05-30", days[0].String())
	assert.Equal(t, "2026-06-02", days[3].String())

	assert.True(t, dr.Contains(MustParse("2026-06-02")))
	assert.False(t, dr.Contains(MustParse("2026-06-03")))

	_, err = New(MustParse("2026-06-02"), MustParse("2026-06-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	inverted := DateRange{Start: MustParse("2026-06-02"), End: MustParse("2026-06-01")}
	assert.Equal(t, 0, inverted.Len())
	assert.Empty(t, inverted.Days())
}

func TestIntersect(t *testing.T) {
	window := DateRange{Start: MustParse("2026-07-01"), End: MustParse("2026-07-30")}

	got, ok := window.Intersect(DateRange{Start: MustParse("2026-06-25"), End: MustParse("2026-07-03")})
	require.True(t, ok)
	assert.Equal(t, "2026-07-01..2026-07-03", got.String())

	_, ok = window.Intersect(DateRange{Start: MustParse("2026-07-31"), End: MustParse("2026-08-03")})
	assert.False(t, ok)

	got, ok = window.Intersect(DateRange{Start: MustParse("2026-07-30"), End: MustParse("2026-07-30")})
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())
}

func TestAddMonths(t *testing.T) {
	assert.Equal(t, "2027-01-15", MustParse("2026-07-15").AddMonths(6).String())
	assert.Equal(t, "2027-03-03", MustParse("2026-08-31").AddMonths(6).String())
	assert.Equal(t, "2026-06-30", MustParse("2026-07-30").AddMonths(-1).String())
}
