package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 5, c.Fleet.Len())
	assert.Equal(t, []fleet.VehicleID{1, 2, 3, 4, 5}, c.Fleet.IDs())

	all, err := c.Fleet.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fleet.VehicleID(1), all[0].ID)
	assert.Equal(t, fleet.VehicleID(5), all[2].ID, "declaration order is kept")

	movano, err := c.Fleet.ByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, fleet.TypeVan, movano.Type())
	assert.Len(t, c.Calendar.Periods(), 4)
}

func TestParse(t *testing.T) {
	raw := `
vehicles:
  - id: 7
    category: utilitaires
    name: Renault Master
    base_weekday: 70
    base_weekend: 80
    min_price: 60
    max_price: 140
    deposit: 1500
demand_periods:
  - name: Toussaint
    start: "2026-10-17"
    end: 2026-11-02
    category: all
    factor: 1.05
`
	c, err := Parse([]byte(raw))
	require.NoError(t, err)

	v, err := c.Fleet.ByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 70.0, v.BaseWeekday)
	assert.Equal(t, fleet.TypeVan, v.Type())

	periods := c.Calendar.Periods()
	require.Len(t, periods, 1)
	assert.Equal(t, pricing.ScopeAll, periods[0].Scope)
	assert.Equal(t, daterange.MustParse("2026-11-02"), periods[0].End)
	assert.Equal(t, 1.05, c.Calendar.SeasonalFactor(daterange.MustParse("2026-10-20"), fleet.TypeCar))
}

func TestParse_EmptyPeriodsDisablesDemand(t *testing.T) {
	c, err := Parse([]byte("demand_periods: []\n"))
	require.NoError(t, err)
	assert.Empty(t, c.Calendar.Periods())
	assert.Equal(t, 5, c.Fleet.Len())
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":       "vehicle: []\n",
		"duplicate ids":     "vehicles:\n  - {id: 1, name: a, min_price: 1, max_price: 2}\n  - {id: 1, name: b, min_price: 1, max_price: 2}\n",
		"bad scope":         "demand_periods:\n  - {name: x, start: '2026-01-01', end: '2026-01-02', category: truck, factor: 1.1}\n",
		"inverted period":   "demand_periods:\n  - {name: x, start: '2026-01-05', end: '2026-01-02', category: all, factor: 1.1}\n",
		"bad date":          "demand_periods:\n  - {name: x, start: '2026-13-01', end: '2026-01-02', category: all, factor: 1.1}\n",
		"min above max":     "vehicles:\n  - {id: 1, name: a, min_price: 5, max_price: 2}\n",
		"non-positive rate": "demand_periods:\n  - {name: x, start: '2026-01-01', end: '2026-01-02', category: all, factor: 0}\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Fleet.Len())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicles:\n  - {id: 9, name: Fiat 500, base_weekday: 30, base_weekend: 35, min_price: 25, max_price: 60}\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []fleet.VehicleID{9}, c.Fleet.IDs())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
