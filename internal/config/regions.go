package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegions []byte

// Coordinate is a WGS-84 point.
type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Manager is an RDW area manager (municipality) to collect.
type Manager struct {
	ID     string      `yaml:"id"`
	City   string      `yaml:"city"`
	Center *Coordinate `yaml:"center"`
}

// Regions is the static reference data of the collector.
type Regions struct {
	DefaultCenter      Coordinate        `yaml:"default_center"`
	Managers           []Manager         `yaml:"managers"`
	Aliases            map[string]string `yaml:"aliases"`
	ExcludedUsageTypes []string          `yaml:"excluded_usage_types"`
}

// LoadRegions reads region data from path, or the embedded defaults when
// path is empty.
func LoadRegions(path string) (*Regions, error) {
	if path == "" {
		return ParseRegions(defaultRegions)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	return ParseRegions(data)
}

// ParseRegions decodes and validates a regions YAML document.
func ParseRegions(data []byte) (*Regions, error) {
	var r Regions
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	if len(r.Managers) == 0 {
		return nil, errors.New("regions: at least one manager is required")
	}
	seen := make(map[string]bool, len(r.Managers))
	for _, m := range r.Managers {
		if m.ID == "" {
			return nil, errors.New("regions: manager id is required")
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("regions: duplicate manager %q", m.ID)
		}
		seen[m.ID] = true
	}
	if r.Aliases == nil {
		r.Aliases = map[string]string{}
	}
	return &r, nil
}

// ManagerIDs returns the manager ids in file order.
func (r *Regions) ManagerIDs() []string {
	ids := make([]string, len(r.Managers))
	for i, m := range r.Managers {
		ids[i] = m.ID
	}
	return ids
}

// Manager looks up a manager by id.
func (r *Regions) Manager(id string) (Manager, bool) {
	for _, m := range r.Managers {
		if m.ID == id {
			return m, true
		}
	}
	return Manager{}, false
}

// City returns the city name of a manager, or "Unknown".
func (r *Regions) City(id string) string {
	if m, ok := r.Manager(id); ok && m.City != "" {
		return m.City
	}
	return "Unknown"
}

// Center returns the city center of a manager, or the default center.
func (r *Regions) Center(id string) Coordinate {
	if m, ok := r.Manager(id); ok && m.Center != nil {
		return *m.Center
	}
	return r.DefaultCenter
}
