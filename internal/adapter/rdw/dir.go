package rdw

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadDir reads a dataset snapshot from dir, one "<dataset id>.json" file
// per dataset holding the raw SODA array. Missing files count as empty.
func LoadDir(dir string) (*Dataset, error) {
	ds := &Dataset{}
	files := []struct {
		dataset string
		dst     any
	}{
		{DatasetAreas, &ds.Areas},
		{DatasetAreaRegulations, &ds.AreaRegulations},
		{DatasetTimeFrames, &ds.TimeFrames},
		{DatasetFareParts, &ds.FareParts},
		{DatasetRegulations, &ds.Regulations},
		{DatasetFareCalculations, &ds.FareCalculations},
	}
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.dataset+".json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.dataset, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.dataset, err)
		}
	}
	return ds, nil
}

// SaveDir writes a dataset snapshot readable by LoadDir.
func SaveDir(dir string, ds *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	files := map[string]any{
		DatasetAreas:            ds.Areas,
		DatasetAreaRegulations:  ds.AreaRegulations,
		DatasetTimeFrames:       ds.TimeFrames,
		DatasetFareParts:        ds.FareParts,
		DatasetRegulations:      ds.Regulations,
		DatasetFareCalculations: ds.FareCalculations,
	}
	for dataset, rows := range files {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", dataset, err)
		}
		if err := os.WriteFile(filepath.Join(dir, dataset+".json"), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dataset, err)
		}
	}
	return nil
}
