package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleType(t *testing.T) {
	assert.Equal(t, TypeVan, Vehicle{Category: CategoryUtility}.Type())
	assert.Equal(t, TypeCar, Vehicle{Category: CategoryPassenger}.Type())
	assert.Equal(t, TypeCar, Vehicle{Category: "premium"}.Type())
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	catalog, err := NewCatalog([]Vehicle{
		{ID: 3, Category: CategoryUtility, Name: "Citroën Jumpy", BaseWeekday: 55, BaseWeekend: 68, MinPrice: 50, MaxPrice: 120},
		{ID: 1, Category: CategoryPassenger, Name: "Peugeot 208 GT Auto", BaseWeekday: 48, BaseWeekend: 58, MinPrice: 42, MaxPrice: 95},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, []VehicleID{1, 3}, catalog.IDs())

	v, err := catalog.ByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Citroën Jumpy", v.Name)

	_, err = catalog.ByID(ctx, 42)
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	all, err := catalog.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, VehicleID(3), all[0].ID)
}

func TestCatalogRejectsInvalid(t *testing.T) {
	_, err := NewCatalog([]Vehicle{
		{ID: 1, Name: "A", MinPrice: 1, MaxPrice: 2},
		{ID: 1, Name: "B", MinPrice: 1, MaxPrice: 2},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewCatalog([]Vehicle{{ID: 1, Name: "A", MinPrice: 10, MaxPrice: 2}})
	assert.ErrorIs(t, err, ErrInvalidVehicle)

	_, err = NewCatalog([]Vehicle{{ID: 0, Name: "A"}})
	assert.ErrorIs(t, err, ErrInvalidVehicle)
}
