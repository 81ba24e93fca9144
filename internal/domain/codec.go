package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingZoneID is returned for source messages that name no zone.
var ErrMissingZoneID = errors.New("zone_id is required")

// ParseZoneTariffs decodes a source message into ZoneTariffs. The message key
// is used as zone id when the payload omits one.
func ParseZoneTariffs(raw RawEvent) (ZoneTariffs, error) {
	var z ZoneTariffs
	if err := json.Unmarshal(raw.Value, &z); err != nil {
		return ZoneTariffs{}, fmt.Errorf("parse zone tariffs: %w", err)
	}
	z.ZoneID = strings.TrimSpace(z.ZoneID)
	if z.ZoneID == "" {
		z.ZoneID = strings.TrimSpace(string(raw.Key))
	}
	if z.ZoneID == "" {
		return ZoneTariffs{}, fmt.Errorf("parse zone tariffs: %w", ErrMissingZoneID)
	}
	if z.MaxDurationMins <= 0 {
		z.MaxDurationMins = DefaultMaxDurationMins
	}
	return z, nil
}

// DefaultMaxDurationMins applies when a zone publishes no maximum stay.
const DefaultMaxDurationMins = 1440

// SerializeZoneSchedule encodes a schedule for the sink topic.
func SerializeZoneSchedule(s ZoneSchedule) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize zone schedule: %w", err)
	}
	return data, nil
}
