package domain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Step sizes (minutes) that switch the display label away from per-hour.
const (
	dayPassStepMinutes = 480
	minStepMinutes     = 10
)

// Formatter derives display labels and description lines for merged blocks.
// The rewriter, cache and fallback are optional collaborators; formatting
// itself never fails.
type Formatter struct {
	rewriter DescriptionRewriter
	cache    RewriteCache
	fallback FallbackStrategy
	logger   *slog.Logger
}

// NewFormatter creates a Formatter. Without a rewriter every description goes
// through the fallback; a nil cache disables caching. The fallback defaults
// to PatternFallback.
func NewFormatter(rewriter DescriptionRewriter, cache RewriteCache, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Formatter{
		rewriter: rewriter,
		cache:    cache,
		fallback: PatternFallback,
		logger:   logger,
	}
}

// WithFallback returns a copy of f using fb when the rewriter fails or is
// absent.
func (f *Formatter) WithFallback(fb FallbackStrategy) *Formatter {
	c := *f
	if fb == nil {
		fb = PatternFallback
	}
	c.fallback = fb
	return &c
}

// FormatBlock fills DisplayLabel and Lines of a merged block.
func (f *Formatter) FormatBlock(ctx context.Context, b MergedBlock) MergedBlock {
	b.DisplayLabel = displayLabel(b)

	seen := make(map[string]bool, len(b.Sources))
	lines := make([]string, 0, len(b.Sources))
	for _, s := range b.Sources {
		line := f.describe(ctx, s, b.Rate)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	b.Lines = lines
	return b
}

// describe renders one source slot, preferring a rewritten description over
// the computed fare text.
func (f *Formatter) describe(ctx context.Context, s DisjointSlot, blockRate float64) string {
	if s.Description != "" && rewriteEligible(s.Description) {
		if txt := f.rewrite(ctx, s.Description, blockRate); txt != "" {
			return txt
		}
	}
	if s.Rate <= 0 {
		return ""
	}
	if s.StepMinutes >= dayPassStepMinutes {
		return formatEuro(s.Amount) + " / dag"
	}
	txt := formatEuro(s.Rate) + " per uur"
	if s.StepMinutes > 0 && s.StepMinutes != 60 {
		txt += fmt.Sprintf(" (stappen van %d min)", int(s.StepMinutes))
	}
	return txt
}

func (f *Formatter) rewrite(ctx context.Context, text string, rate float64) string {
	if f.rewriter == nil {
		return f.fallback(text, rate)
	}

	key := RewriteCacheKey(text, rate)
	if f.cache != nil {
		cached, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			f.logger.Warn("rewrite cache lookup failed", "error", err)
		} else if ok {
			return cached
		}
	}

	out, err := f.rewriter.Rewrite(ctx, text, rate)
	if err != nil {
		f.logger.Warn("description rewrite failed, using fallback", "error", err, "rate", rate)
		return f.fallback(text, rate)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, key, out); err != nil {
			f.logger.Warn("rewrite cache store failed", "error", err)
		}
	}
	return out
}

// displayLabel picks the headline price of a block from the modal step size
// of its paid sources: a day price for day passes, a per-step price for short
// steps, otherwise the hourly rate.
func displayLabel(b MergedBlock) string {
	label := formatEuro(b.Rate) + " / u"

	step, ok := modalPaidStep(b.Sources)
	if !ok {
		return label
	}
	switch {
	case step >= dayPassStepMinutes:
		amount := b.Amount
		for _, s := range b.Sources {
			if s.Rate > 0 && s.StepMinutes >= dayPassStepMinutes {
				amount = s.Amount
				break
			}
		}
		return formatEuro(amount) + " / dag"
	case step >= minStepMinutes:
		return fmt.Sprintf("%s / %d min", formatEuro(b.Rate/60*step), int(step))
	}
	return label
}

// modalPaidStep returns the most frequent step size among paid sources. Ties
// go to the step seen first.
func modalPaidStep(sources []DisjointSlot) (float64, bool) {
	counts := make(map[float64]int, len(sources))
	var order []float64
	for _, s := range sources {
		if s.Rate <= 0 {
			continue
		}
		if counts[s.StepMinutes] == 0 {
			order = append(order, s.StepMinutes)
		}
		counts[s.StepMinutes]++
	}
	if len(order) == 0 {
		return 0, false
	}
	best := order[0]
	for _, step := range order[1:] {
		if counts[step] > counts[best] {
			best = step
		}
	}
	return best, true
}

// formatEuro renders an amount with two decimals, e.g. "€ 2.50".
func formatEuro(v float64) string {
	return "€ " + decimal.NewFromFloat(v).StringFixed(2)
}

// roundRate rounds a rate to cents for rate_numeric.
func roundRate(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
