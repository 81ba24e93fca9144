package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PriceTolerance is the allowed gap between a zone's price and its highest
// rendered rate.
const PriceTolerance = 0.02

// Violation codes.
const (
	ViolationPriceNotNumeric = "price_not_numeric"
	ViolationPriceNaN        = "price_nan"
	ViolationEmptyRates      = "empty_rates_price_positive"
	ViolationPriceMismatch   = "price_mismatch_max_rate"
)

// ErrIntegrity marks zones whose schedule contradicts their price.
var ErrIntegrity = errors.New("tariff integrity violation")

// Violation is one failed integrity rule for a zone document.
type Violation struct {
	ZoneID  string
	Code    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.ZoneID, v.Code, v.Message)
}

// IntegrityError wraps the violations found for a zone.
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "tariff integrity: " + strings.Join(parts, "; ")
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// CheckIntegrity validates a built schedule: a positive price needs rates,
// and the price must match the highest rate_numeric within PriceTolerance.
func CheckIntegrity(z ZoneSchedule) []Violation {
	numerics := make([]float64, len(z.Rates))
	for i, r := range z.Rates {
		numerics[i] = r.RateNumeric
	}
	return checkPriceAgainstRates(z.DocID, z.Price, z.Rates != nil, numerics)
}

// CheckIntegrityDocument validates a stored zone document as decoded from the
// persistence layer, where fields may have any type.
func CheckIntegrityDocument(zoneID string, doc map[string]any) []Violation {
	var price float64
	if raw, ok := doc["price"]; ok && raw != nil {
		p, ok := toFloat(raw)
		if !ok {
			return []Violation{{ZoneID: zoneID, Code: ViolationPriceNotNumeric, Message: fmt.Sprint(raw)}}
		}
		price = p
	}

	list, isList := doc["rates"].([]any)
	var numerics []float64
	for _, item := range list {
		r, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := toFloat(r["rate_numeric"]); ok {
			numerics = append(numerics, v)
		}
	}
	if isList && len(list) > 0 && len(numerics) == 0 {
		// rates present but none carry a numeric value; only emptiness is checked
		return checkPriceAgainstRates(zoneID, price, true, nil)
	}
	return checkPriceAgainstRates(zoneID, price, isList, numerics)
}

func checkPriceAgainstRates(zoneID string, price float64, ratesPresent bool, numerics []float64) []Violation {
	if math.IsNaN(price) {
		return []Violation{{ZoneID: zoneID, Code: ViolationPriceNaN, Message: "NaN"}}
	}

	var violations []Violation
	if price > 0 {
		if !ratesPresent {
			return []Violation{{ZoneID: zoneID, Code: ViolationEmptyRates,
				Message: fmt.Sprintf("price=%g but rates missing or not list", price)}}
		}
		if len(numerics) == 0 {
			violations = append(violations, Violation{ZoneID: zoneID, Code: ViolationEmptyRates,
				Message: fmt.Sprintf("price=%g but rates=[]", price)})
		}
	}

	if len(numerics) > 0 && price > 0 {
		maxRate := numerics[0]
		for _, v := range numerics[1:] {
			maxRate = math.Max(maxRate, v)
		}
		if math.Abs(price-maxRate) > PriceTolerance {
			violations = append(violations, Violation{ZoneID: zoneID, Code: ViolationPriceMismatch,
				Message: fmt.Sprintf("price=%g max(rate_numeric)=%g", price, maxRate)})
		}
	}
	return violations
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
