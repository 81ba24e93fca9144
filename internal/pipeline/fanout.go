package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
)

// NamedLoader labels a loader for error messages.
type NamedLoader struct {
	Name   string
	Loader BatchLoader
}

// FanoutLoader writes every batch to each destination in order. The first
// failure aborts the batch so it is retried as a whole.
type FanoutLoader struct {
	loaders []NamedLoader
}

// NewFanoutLoader creates a loader over the given destinations.
func NewFanoutLoader(loaders ...NamedLoader) *FanoutLoader {
	return &FanoutLoader{loaders: loaders}
}

func (f *FanoutLoader) LoadBatch(ctx context.Context, schedules []domain.ZoneSchedule) error {
	for _, l := range f.loaders {
		if err := l.Loader.LoadBatch(ctx, schedules); err != nil {
			return fmt.Errorf("load %s: %w", l.Name, err)
		}
	}
	return nil
}
