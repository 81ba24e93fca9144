package domain

import "math"

// MergeSlots coalesces runs of consecutive paid slots into single blocks.
// A merged block carries the highest rate of its run and every slot it
// absorbed. Free slots always form their own block.
func MergeSlots(slots []DisjointSlot) []MergedBlock {
	blocks := make([]MergedBlock, 0, len(slots))
	for _, s := range slots {
		if n := len(blocks); n > 0 && blocks[n-1].Paid() && s.Rate > 0 {
			b := &blocks[n-1]
			b.End = s.End
			b.Rate = math.Max(b.Rate, s.Rate)
			b.Sources = append(b.Sources, s)
			continue
		}
		blocks = append(blocks, MergedBlock{
			Start:   s.Start,
			End:     s.End,
			Rate:    s.Rate,
			Amount:  s.Amount,
			Sources: []DisjointSlot{s},
		})
	}
	return blocks
}
