package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrZoneFiltered marks zones that are valid but not published.
var ErrZoneFiltered = errors.New("zone filtered")

// Filter reasons, also used as metric labels.
const (
	FilterRestrictedUsage = "restricted_usage"
	FilterZeroPrice       = "zero_price"
)

// FilteredError explains why a zone was not published.
type FilteredError struct {
	Reason string
	Detail string
}

func (e *FilteredError) Error() string {
	return fmt.Sprintf("zone filtered: %s (%s)", e.Reason, e.Detail)
}

func (e *FilteredError) Is(target error) bool { return target == ErrZoneFiltered }

// FilterPolicy decides which zones are published. Permit-only and similar
// restricted usage types are excluded, as are zones without any paid time.
type FilterPolicy struct {
	excluded map[string]bool
}

// NewFilterPolicy creates a policy excluding the given usage types
// (case-insensitive).
func NewFilterPolicy(excludedUsageTypes []string) FilterPolicy {
	p := FilterPolicy{excluded: make(map[string]bool, len(excludedUsageTypes))}
	for _, u := range excludedUsageTypes {
		p.excluded[strings.ToUpper(strings.TrimSpace(u))] = true
	}
	return p
}

// Check returns a *FilteredError when the zone should not be published.
func (p FilterPolicy) Check(z ZoneSchedule) error {
	if uid := strings.ToUpper(strings.TrimSpace(z.UsageID)); uid != "" && p.excluded[uid] {
		return &FilteredError{Reason: FilterRestrictedUsage, Detail: uid}
	}
	if z.Price == 0 {
		return &FilteredError{Reason: FilterZeroPrice, Detail: "price is 0"}
	}
	return nil
}
