package domain

import (
	"context"
	"fmt"
	"strings"
)

// Rendered values for blocks without a charge.
const (
	FreeParkingLabel  = "Free parking"
	FreeParkingDetail = "Vrij parkeren"
)

// ConsolidateDay reduces, merges and formats one weekday's candidates.
func (f *Formatter) ConsolidateDay(ctx context.Context, candidates []RateCandidate) []MergedBlock {
	blocks := MergeSlots(ReduceDay(candidates))
	for i := range blocks {
		blocks[i] = f.FormatBlock(ctx, blocks[i])
	}
	return blocks
}

// BuildRates renders the schedule rows for all seven weekdays, Monday first.
// Days without candidates render as a single free block.
func (f *Formatter) BuildRates(ctx context.Context, byDay map[Weekday][]RateCandidate) []RateLine {
	var rates []RateLine
	for _, day := range Weekdays {
		for _, b := range f.ConsolidateDay(ctx, byDay[day]) {
			rates = append(rates, RenderBlock(day, b))
		}
	}
	return rates
}

// RenderBlock turns a formatted block into a schedule row. Price labels use a
// decimal comma; free blocks get the fixed free-parking texts.
func RenderBlock(day Weekday, b MergedBlock) RateLine {
	line := RateLine{
		Time:        fmt.Sprintf("%s %s - %s", day, formatClock(b.Start), formatClock(b.End)),
		RateNumeric: roundRate(b.Rate),
	}
	if !b.Paid() || line.RateNumeric == 0 {
		line.Price = FreeParkingLabel
		line.Detail = FreeParkingDetail
		line.RateNumeric = 0
		return line
	}

	label := b.DisplayLabel
	if label == "" {
		label = formatEuro(b.Rate) + " / u"
	}
	line.Price = strings.ReplaceAll(label, ".", ",")
	line.Detail = strings.Join(b.Lines, "|")
	return line
}

// BuildZoneSchedule runs the consolidation for one zone and assembles the
// document published downstream. A nil formatter formats without rewriting.
func BuildZoneSchedule(ctx context.Context, zone ZoneTariffs, f *Formatter) ZoneSchedule {
	if f == nil {
		f = NewFormatter(nil, nil, nil)
	}
	byDay, dropped := NormalizeRules(zone.Rules)

	id := zone.DisplayID
	if id == "" {
		id = zone.ZoneID
	}

	return ZoneSchedule{
		DocID:           DocumentID(zone.ManagerID, id, zone.Name),
		ID:              id,
		Name:            zone.Name,
		City:            zone.City,
		ManagerID:       zone.ManagerID,
		Lat:             zone.Geo.Lat,
		Lng:             zone.Geo.Lng,
		Price:           maxRate(byDay),
		Rates:           f.BuildRates(ctx, byDay),
		MaxDurationMins: zone.MaxDurationMins,
		HasSpecialRules: zone.HasSpecialRules,
		UsageID:         zone.UsageID,
		RunID:           zone.RunID,
		UpdatedAt:       clock.Now().UTC(),
		DroppedRules:    dropped,
	}
}

// DocumentID is the storage key of a zone: "<manager>_<id>", or the bare id
// when the zone is named after its id.
func DocumentID(managerID, id, name string) string {
	if id == name {
		return id
	}
	return managerID + "_" + id
}

// maxRate is the map-pin price of a zone: the highest candidate rate.
func maxRate(byDay map[Weekday][]RateCandidate) float64 {
	var best float64
	for _, cands := range byDay {
		for _, c := range cands {
			if c.Rate > best {
				best = c.Rate
			}
		}
	}
	return best
}

// formatClock renders an HHMM integer as "HH:MM".
func formatClock(hhmm int) string {
	return fmt.Sprintf("%02d:%02d", hhmm/100, hhmm%100)
}
