package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
)

// File is the YAML layout of a catalog file. A missing section keeps the built-in default.
type File struct {
	Vehicles      []fleet.Vehicle        `yaml:"vehicles"`
	DemandPeriods []pricing.DemandPeriod `yaml:"demand_periods"`
}

// Catalog bundles the immutable pricing configuration loaded at startup.
type Catalog struct {
	Fleet    *fleet.Catalog
	Calendar pricing.DemandCalendar
}

// Default builds the catalog from the built-in fleet and demand calendar.
func Default() (Catalog, error) {
	return build(File{})
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Unknown keys are rejected so typos do not silently fall
// back to defaults.
func Parse(data []byte) (Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, err
	}
	return build(f)
}

func build(f File) (Catalog, error) {
	vehicles := f.Vehicles
	if len(vehicles) == 0 {
		vehicles = DefaultVehicles()
	}
	periods := f.DemandPeriods
	if periods == nil {
		periods = DefaultDemandPeriods()
	}
	fl, err := fleet.NewCatalog(vehicles)
	if err != nil {
		return Catalog{}, err
	}
	cal, err := pricing.NewDemandCalendar(periods)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Fleet: fl, Calendar: cal}, nil
}
