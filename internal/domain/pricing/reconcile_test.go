package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authoritative(t *testing.T) Estimate {
	t.Helper()
	calc := NewCalculator(testCalendar(t))
	return calc.Estimate(EstimateInput{
		Start:   d("2026-07-03"),
		End:     d("2026-07-06"),
		Vehicle: jumpy,
		AsOf:    d("2026-06-01"),
	})
}

func cloneEstimate(e Estimate) *Estimate {
	out := e
	out.DailyBreakdown = append([]DailyLine(nil), e.DailyBreakdown...)
	return &out
}

func TestConsistent_Reflexive(t *testing.T) {
	est := authoritative(t)
	assert.True(t, Consistent(&est, &est))
}

func TestConsistent_JSONRoundTrip(t *testing.T) {
	est := authoritative(t)
	raw, err := json.Marshal(est)
	require.NoError(t, err)

	claimed := DecodeClaimed(raw)
	require.NotNil(t, claimed)
	assert.True(t, Consistent(claimed, &est))
}

func TestConsistent_Mismatches(t *testing.T) {
	est := authoritative(t)
	require.Len(t, est.DailyBreakdown, 4)

	tests := []struct {
		name   string
		mutate func(e *Estimate)
		want   bool
	}{
		{name: "final price", mutate: func(e *Estimate) { e.FinalPrice++ }, want: false},
		{name: "base price", mutate: func(e *Estimate) { e.BasePrice-- }, want: false},
		{name: "clamped value", mutate: func(e *Estimate) { e.DailyBreakdown[2].Clamped += 1 }, want: false},
		{name: "date", mutate: func(e *Estimate) { e.DailyBreakdown[0].Date = "2026-07-02" }, want: false},
		{name: "missing day", mutate: func(e *Estimate) { e.DailyBreakdown = e.DailyBreakdown[:3] }, want: false},
		{name: "extra day", mutate: func(e *Estimate) {
			e.DailyBreakdown = append(e.DailyBreakdown, e.DailyBreakdown[3])
		}, want: false},
		{name: "sub-euro drift rounds away", mutate: func(e *Estimate) {
			e.FinalPrice += 0.4
			e.DailyBreakdown[1].Clamped -= 0.3
		}, want: true},
		{name: "factors are ignored", mutate: func(e *Estimate) {
			e.OccupancyFactor = 7
			e.DemandAdjustment = 1000
			e.DailyBreakdown[0].SeasonalFactor = 9
			e.DailyBreakdown[0].Raw = 1
			e.DailyBreakdown[0].BaseDay = 1
		}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claimed := cloneEstimate(est)
			tt.mutate(claimed)
			assert.Equal(t, tt.want, Consistent(claimed, &est))
		})
	}
}

func TestConsistent_Nil(t *testing.T) {
	est := authoritative(t)
	assert.False(t, Consistent(nil, &est))
	assert.False(t, Consistent(&est, nil))
	assert.False(t, Consistent(nil, nil))
}

func TestDecodeClaimed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
	}{
		{name: "empty", raw: "", wantNil: true},
		{name: "null", raw: "null", wantNil: true},
		{name: "malformed", raw: "{", wantNil: true},
		{name: "breakdown not an array", raw: `{"basePrice":48,"finalPrice":43,"dailyBreakdown":"nope"}`, wantNil: true},
		{name: "wrong price type", raw: `{"basePrice":"48"}`, wantNil: true},
		{name: "minimal", raw: `{"basePrice":48,"finalPrice":43,"dailyBreakdown":[{"date":"2026-09-15","clamped":43}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeClaimed([]byte(tt.raw))
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Len(t, got.DailyBreakdown, 1)
		})
	}
}

func TestConsistent_MinimalClientPayload(t *testing.T) {
	calc := NewCalculator(DemandCalendar{})
	est := calc.Estimate(EstimateInput{Start: d("2026-09-15"), End: d("2026-09-15"), Vehicle: peugeot, AsOf: d("2026-09-01")})

	claimed := DecodeClaimed([]byte(`{"basePrice":48,"finalPrice":43,"dailyBreakdown":[{"date":"2026-09-15","clamped":43}]}`))
	assert.True(t, Consistent(claimed, &est))

	claimed = DecodeClaimed([]byte(`{"basePrice":48,"finalPrice":42,"dailyBreakdown":[{"date":"2026-09-15","clamped":43}]}`))
	assert.False(t, Consistent(claimed, &est))
}
