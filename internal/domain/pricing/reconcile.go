package pricing

import "encoding/json"

// Consistent reports whether a client-claimed estimate matches the authoritative one.
// Only dates and rounded amounts are compared, exactly; factor fields are ignored.
// Missing estimates never match.
func Consistent(claimed, authoritative *Estimate) bool {
	if claimed == nil || authoritative == nil {
		return false
	}
	if Round(claimed.BasePrice) != Round(authoritative.BasePrice) {
		return false
	}
	if Round(claimed.FinalPrice) != Round(authoritative.FinalPrice) {
		return false
	}
	if len(claimed.DailyBreakdown) != len(authoritative.DailyBreakdown) {
		return false
	}
	for i := range claimed.DailyBreakdown {
		c, a := claimed.DailyBreakdown[i], authoritative.DailyBreakdown[i]
		if c.Date != a.Date {
			return false
		}
		if Round(c.Clamped) != Round(a.Clamped) {
			return false
		}
	}
	return true
}

// DecodeClaimed parses a client estimate. Absent or malformed payloads decode to nil so
// that they fail reconciliation instead of erroring.
func DecodeClaimed(raw []byte) *Estimate {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var est Estimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return nil
	}
	return &est
}
