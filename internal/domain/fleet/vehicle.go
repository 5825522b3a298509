package fleet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrVehicleNotFound = errors.New("fleet: vehicle not found")
	ErrDuplicateID     = errors.New("fleet: duplicate vehicle id")
	ErrInvalidVehicle  = errors.New("fleet: invalid vehicle")
)

type VehicleID int

type Category string

const (
	CategoryPassenger Category = "particuliers"
	CategoryUtility   Category = "utilitaires"
)

// Type is the coarse vehicle kind demand periods are scoped to.
type Type string

const (
	TypeCar Type = "car"
	TypeVan Type = "van"
)

// Vehicle carries the pricing profile of one rentable vehicle. Prices are whole euros.
type Vehicle struct {
	ID          VehicleID `json:"id" yaml:"id"`
	Category    Category  `json:"category" yaml:"category"`
	Name        string    `json:"name" yaml:"name"`
	BaseWeekday float64   `json:"baseWeekday" yaml:"base_weekday"`
	BaseWeekend float64   `json:"baseWeekend" yaml:"base_weekend"`
	MinPrice    float64   `json:"minPrice" yaml:"min_price"`
	MaxPrice    float64   `json:"maxPrice" yaml:"max_price"`
	Deposit     float64   `json:"deposit" yaml:"deposit"`
}

// Type maps the catalog category onto the demand scope: utility vehicles are vans, the rest cars.
func (v Vehicle) Type() Type {
	if v.Category == CategoryUtility {
		return TypeVan
	}
	return TypeCar
}

// Validate checks structural fields only. Base rates outside [MinPrice, MaxPrice] are
// accepted on purpose: the daily clamp corrects them.
func (v Vehicle) Validate() error {
	if v.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidVehicle)
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: vehicle %d has no name", ErrInvalidVehicle, v.ID)
	}
	if v.MinPrice > v.MaxPrice {
		return fmt.Errorf("%w: vehicle %d min price above max price", ErrInvalidVehicle, v.ID)
	}
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id VehicleID) (Vehicle, error)
	All(ctx context.Context) ([]Vehicle, error)
}

// Catalog is an immutable, ID-indexed vehicle list built once at startup.
type Catalog struct {
	byID  map[VehicleID]Vehicle
	order []VehicleID
}

func NewCatalog(vehicles []Vehicle) (*Catalog, error) {
	c := &Catalog{byID: make(map[VehicleID]Vehicle, len(vehicles))}
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[v.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, v.ID)
		}
		c.byID[v.ID] = v
		c.order = append(c.order, v.ID)
	}
	return c, nil
}

func (c *Catalog) ByID(_ context.Context, id VehicleID) (Vehicle, error) {
	v, ok := c.byID[id]
	if !ok {
		return Vehicle{}, ErrVehicleNotFound
	}
	return v, nil
}

// All returns vehicles in declaration order.
func (c *Catalog) All(_ context.Context) ([]Vehicle, error) {
	out := make([]Vehicle, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out, nil
}

// IDs returns the sorted identifiers, mostly for diagnostics.
func (c *Catalog) IDs() []VehicleID {
	ids := append([]VehicleID(nil), c.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Catalog) Len() int {
	return len(c.order)
}

var _ Repository = (*Catalog)(nil)
