package domain

import (
	"math"
	"slices"
	"unicode/utf8"
)

// rateEpsilon is the tolerance below which two rates count as the same price.
const rateEpsilon = 0.01

// ReduceDay tiles [DayStart, DayEnd) with disjoint slots for one weekday's
// candidates. Every elementary range between consecutive boundaries is won by
// the best candidate that spans it fully; ranges nobody covers are free.
// Adjacent slots with the same rate are coalesced, keeping the first winner.
func ReduceDay(candidates []RateCandidate) []DisjointSlot {
	points := sweepPoints(candidates)
	slots := make([]DisjointSlot, 0, len(points)-1)

	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]

		slot := DisjointSlot{Start: lo, End: hi, Description: FreeParkingDetail}
		if best, ok := winner(candidates, lo, hi); ok {
			slot = DisjointSlot{
				Start:       lo,
				End:         hi,
				Rate:        best.Rate,
				Description: best.Description,
				StepMinutes: best.StepMinutes,
				Amount:      best.Amount,
			}
		}

		if n := len(slots); n > 0 && math.Abs(slots[n-1].Rate-slot.Rate) < rateEpsilon {
			slots[n-1].End = hi
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// sweepPoints returns the sorted, unique interval boundaries inside the day,
// always including DayStart and DayEnd.
func sweepPoints(candidates []RateCandidate) []int {
	points := make([]int, 0, 2*len(candidates)+2)
	points = append(points, DayStart, DayEnd)
	for _, c := range candidates {
		if c.Start > DayStart && c.Start < DayEnd {
			points = append(points, c.Start)
		}
		if c.End > DayStart && c.End < DayEnd {
			points = append(points, c.End)
		}
	}
	slices.Sort(points)
	return slices.Compact(points)
}

// winner picks the best candidate fully spanning [lo, hi). On a complete tie
// the earliest candidate in input order wins.
func winner(candidates []RateCandidate, lo, hi int) (RateCandidate, bool) {
	var best RateCandidate
	found := false
	for _, c := range candidates {
		if c.Start > lo || c.End < hi {
			continue
		}
		if !found || outranks(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

// outranks orders candidates by rate, then explicit priority, then
// description length.
func outranks(a, b RateCandidate) bool {
	if a.Rate != b.Rate {
		return a.Rate > b.Rate
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return utf8.RuneCountInString(a.Description) > utf8.RuneCountInString(b.Description)
}
