package domain

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeRules converts raw rules into rate candidates grouped by weekday.
// Rules with an unknown day token, an unparseable or out-of-range time, or an
// empty or inverted interval are dropped; the second return value counts them.
func NormalizeRules(rules []RawRule) (map[Weekday][]RateCandidate, int) {
	byDay := make(map[Weekday][]RateCandidate, len(Weekdays))
	dropped := 0

	for _, r := range rules {
		days, ok := ParseDayToken(r.Day)
		if !ok {
			dropped++
			continue
		}
		start, okStart := parseHHMM(r.Start, DayStart)
		end, okEnd := parseHHMM(r.End, DayEnd)
		if !okStart || !okEnd || start >= end {
			dropped++
			continue
		}

		amount := parseFloatOrZero(r.Amount)
		step := parseFloatOrZero(r.StepSize)
		desc := strings.TrimSpace(r.Description)

		for _, d := range days {
			byDay[d] = append(byDay[d], RateCandidate{
				Day:         d,
				Start:       start,
				End:         end,
				Rate:        CandidateRate(amount, step),
				StepMinutes: step,
				Amount:      amount,
				Description: desc,
				Priority:    r.Priority,
			})
		}
	}
	return byDay, dropped
}

// CandidateRate converts a per-step amount into an hourly rate.
// A non-positive step yields 0.
func CandidateRate(amount, stepMinutes float64) float64 {
	if stepMinutes <= 0 {
		return 0
	}
	rate := amount / stepMinutes * 60
	if rate < 0 {
		return 0
	}
	return rate
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseHHMM parses an HHMM time ("930", "0930", "2400") into its integer form.
// An empty string yields def.
func parseHHMM(s string, def int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	if len(s) > 4 {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < DayStart || v > DayEnd {
		return 0, false
	}
	if v%100 > 59 {
		return 0, false
	}
	return v, true
}
