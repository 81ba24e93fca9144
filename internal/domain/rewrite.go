package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DescriptionRewriter turns a raw Dutch fare description into a short display
// line for a block charging rate per hour.
type DescriptionRewriter interface {
	Rewrite(ctx context.Context, text string, rate float64) (string, error)
}

// RewriteCache stores rewritten descriptions keyed by RewriteCacheKey.
// Implementations must be safe for concurrent use.
type RewriteCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// FallbackStrategy produces a line for a description when the rewriter fails.
type FallbackStrategy func(text string, rate float64) string

// RewriteCacheKey identifies a rewrite by description and the block rate it
// was rendered for.
func RewriteCacheKey(text string, rate float64) string {
	return fmt.Sprintf("%s|%.2f", text, rate)
}

var (
	// stepSizeRe matches step notes, e.g. "betalen in stappen van 15 min".
	stepSizeRe = regexp.MustCompile(`stappen van (\d+) min`)

	// stopShopRe matches short-stay start fares, e.g. "Stop en Shop eerste 30min 0,50".
	stopShopRe = regexp.MustCompile(`eerste (\d+)min ([\d,]+)`)
)

// PatternFallback rewrites the two description shapes that carry structured
// information (step sizes and "Stop en Shop" start fares) without a model.
// Any other text yields "", leaving the line to the computed fare text.
func PatternFallback(text string, rate float64) string {
	if strings.Contains(text, "stappen van") {
		if m := stepSizeRe.FindStringSubmatch(text); m != nil {
			return fmt.Sprintf("%s/h > payment per %s minutes", formatEuro(rate), m[1])
		}
	}
	if strings.Contains(text, "Stop en Shop") {
		if m := stopShopRe.FindStringSubmatch(text); m != nil {
			price := strings.ReplaceAll(m[2], ",", ".")
			return fmt.Sprintf("€ %s for the first %s minutes. %s per hour after %s minutes", price, m[1], formatEuro(rate), m[1])
		}
	}
	return ""
}

// rewriteEligible reports whether a description carries enough information
// to be worth rewriting.
func rewriteEligible(desc string) bool {
	return strings.Contains(desc, "stappen") || strings.Contains(desc, "Stop") || len([]rune(desc)) > 15
}
