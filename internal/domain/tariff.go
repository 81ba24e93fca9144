package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DayStart and DayEnd bound the HHMM domain of a schedule day.
const (
	DayStart = 0
	DayEnd   = 2400
)

// Weekday is a day of the week. Monday is the first day, as in RDW data.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists all days in schedule order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [...]string{"Maandag", "Dinsdag", "Woensdag", "Donderdag", "Vrijdag", "Zaterdag", "Zondag"}

// String returns the capitalized Dutch day name used in rendered schedules.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return dayNames[d]
}

var dayTokens = map[string]Weekday{
	"MAANDAG": Monday, "DINSDAG": Tuesday, "WOENSDAG": Wednesday, "DONDERDAG": Thursday,
	"VRIJDAG": Friday, "ZATERDAG": Saturday, "ZONDAG": Sunday,
	"MONDAY": Monday, "TUESDAY": Tuesday, "WEDNESDAY": Wednesday, "THURSDAY": Thursday,
	"FRIDAY": Friday, "SATURDAY": Saturday, "SUNDAY": Sunday,
}

var dailyTokens = map[string]bool{
	"DAGELIJKS": true,
	"ELKE DAG":  true,
	"DAILY":     true,
	"EVERY DAY": true,
}

// ParseDayToken maps an upstream day token to the weekdays it covers.
// Daily tokens expand to all seven days. Unknown tokens return false.
func ParseDayToken(token string) ([]Weekday, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if dailyTokens[token] {
		return Weekdays, true
	}
	if d, ok := dayTokens[token]; ok {
		return []Weekday{d}, true
	}
	return nil, false
}

// RawRule is one flattened fare rule as published by the collector: a time
// window on a day token priced by a fare part. Numeric fields stay strings as
// they arrive from the SODA API.
type RawRule struct {
	Day            string `json:"day"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Amount         string `json:"amount"`
	StepSize       string `json:"step_size"`
	Description    string `json:"description,omitempty"`
	Priority       int    `json:"priority,omitempty"`
	RegulationID   string `json:"regulation_id,omitempty"`
	RegulationType string `json:"regulation_type,omitempty"`
}

// Geo is a WGS-84 coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZoneTariffs is the source message: every fare rule of one parking zone,
// together with the zone metadata resolved upstream.
type ZoneTariffs struct {
	ManagerID       string    `json:"mgr_id"`
	ZoneID          string    `json:"zone_id"`
	DisplayID       string    `json:"display_id,omitempty"`
	Name            string    `json:"name"`
	City            string    `json:"city"`
	Geo             Geo       `json:"geo"`
	UsageID         string    `json:"usage_id,omitempty"`
	MaxDurationMins int       `json:"max_duration_mins"`
	HasSpecialRules bool      `json:"has_special_rules"`
	RunID           string    `json:"run_id,omitempty"`
	Rules           []RawRule `json:"rules"`
}

// RateCandidate is one priced interval on a single weekday.
type RateCandidate struct {
	Day         Weekday
	Start       int // HHMM
	End         int // HHMM
	Rate        float64
	StepMinutes float64
	Amount      float64
	Description string
	Priority    int
}

// DisjointSlot is an elementary range of a day with exactly one winning rule.
type DisjointSlot struct {
	Start       int
	End         int
	Rate        float64
	Description string
	StepMinutes float64
	Amount      float64
}

// MergedBlock is a visible price band built from one or more consecutive slots.
type MergedBlock struct {
	Start        int
	End          int
	Rate         float64
	Amount       float64
	Sources      []DisjointSlot
	DisplayLabel string
	Lines        []string
}

// Paid reports whether the block charges anything.
func (b MergedBlock) Paid() bool { return b.Rate > 0 }

// RateLine is one rendered schedule row.
type RateLine struct {
	Time        string  `json:"time"`
	Price       string  `json:"price"`
	Detail      string  `json:"detail"`
	RateNumeric float64 `json:"rate_numeric"`
}

// ZoneSchedule is the consolidated weekly schedule of one zone.
type ZoneSchedule struct {
	DocID           string     `json:"doc_id"`
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	City            string     `json:"city"`
	ManagerID       string     `json:"mgr_id"`
	Lat             float64    `json:"lat"`
	Lng             float64    `json:"lng"`
	Price           float64    `json:"price"`
	Rates           []RateLine `json:"rates"`
	MaxDurationMins int        `json:"max_duration_mins"`
	HasSpecialRules bool       `json:"has_special_rules"`
	UsageID         string     `json:"usage_id,omitempty"`
	RunID           string     `json:"run_id,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// DroppedRules counts source rules the normalizer could not use.
	DroppedRules int `json:"-"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
