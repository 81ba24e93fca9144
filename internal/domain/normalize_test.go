package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []Weekday
		ok    bool
	}{
		{"dutch day", "MAANDAG", []Weekday{Monday}, true},
		{"lower case with spaces", "  zondag ", []Weekday{Sunday}, true},
		{"english day", "Friday", []Weekday{Friday}, true},
		{"dagelijks", "DAGELIJKS", Weekdays, true},
		{"elke dag", "Elke dag", Weekdays, true},
		{"every day", "every day", Weekdays, true},
		{"holiday", "FEESTDAG", nil, false},
		{"empty", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDayToken(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdayString(t *testing.T) {
	assert.Equal(t, "Maandag", Monday.String())
	assert.Equal(t, "Zondag", Sunday.String())
	assert.Equal(t, "Weekday(9)", Weekday(9).String())
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name string
		in   string
		def  int
		want int
		ok   bool
	}{
		{"four digits", "1510", 0, 1510, true},
		{"three digits", "930", 0, 930, true},
		{"leading zero", "0930", 0, 930, true},
		{"end of day", "2400", 0, 2400, true},
		{"empty uses default", "", 2400, 2400, true},
		{"past end of day", "2401", 0, 0, false},
		{"invalid minute", "1260", 0, 0, false},
		{"negative", "-100", 0, 0, false},
		{"too long", "12000", 0, 0, false},
		{"not a number", "ab", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHHMM(tt.in, tt.def)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidateRate(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		step   float64
		want   float64
	}{
		{"hourly", 2.5, 60, 2.5},
		{"quarter hour", 0.5, 15, 2.0},
		{"day pass", 15, 1440, 0.625},
		{"zero step", 3, 0, 0},
		{"negative step", 3, -5, 0},
		{"negative amount", -1, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CandidateRate(tt.amount, tt.step), 1e-9)
		})
	}
}

func TestNormalizeRules(t *testing.T) {
	t.Run("daily token expands to seven days", func(t *testing.T) {
		byDay, dropped := NormalizeRules([]RawRule{
			{Day: "DAGELIJKS", Start: "900", End: "1800", Amount: "2.40", StepSize: "60", Description: "Centrum"},
		})

		assert.Zero(t, dropped)
		require.Len(t, byDay, 7)
		for _, d := range Weekdays {
			require.Len(t, byDay[d], 1, d.String())
			c := byDay[d][0]
			assert.Equal(t, d, c.Day)
			assert.Equal(t, 900, c.Start)
			assert.Equal(t, 1800, c.End)
			assert.InDelta(t, 2.40, c.Rate, 1e-9)
			assert.Equal(t, "Centrum", c.Description)
		}
	})

	t.Run("missing times cover the whole day", func(t *testing.T) {
		byDay, _ := NormalizeRules([]RawRule{{Day: "ZATERDAG", Amount: "1", StepSize: "60"}})

		require.Len(t, byDay[Saturday], 1)
		assert.Equal(t, DayStart, byDay[Saturday][0].Start)
		assert.Equal(t, DayEnd, byDay[Saturday][0].End)
	})

	t.Run("malformed rules are dropped", func(t *testing.T) {
		byDay, dropped := NormalizeRules([]RawRule{
			{Day: "MAANDAG", Start: "1800", End: "0900", Amount: "2", StepSize: "60"},
			{Day: "FEESTDAG", Start: "0000", End: "2400", Amount: "2", StepSize: "60"},
			{Day: "DINSDAG", Start: "2500", End: "2400", Amount: "2", StepSize: "60"},
			{Day: "WOENSDAG", Start: "0900", End: "1800", Amount: "2", StepSize: "60"},
		})

		assert.Equal(t, 3, dropped)
		assert.Empty(t, byDay[Monday])
		assert.Empty(t, byDay[Tuesday])
		assert.Len(t, byDay[Wednesday], 1)
	})

	t.Run("zero-length rule is dropped", func(t *testing.T) {
		byDay, dropped := NormalizeRules([]RawRule{
			{Day: "MAANDAG", Start: "0900", End: "0900", Amount: "5", StepSize: "60"},
			{Day: "MAANDAG", Start: "0900", End: "1700", Amount: "2", StepSize: "60"},
		})

		assert.Equal(t, 1, dropped)
		require.Len(t, byDay[Monday], 1)
		assert.Equal(t, 1700, byDay[Monday][0].End)
	})

	t.Run("non-numeric amount and step zero the rate", func(t *testing.T) {
		byDay, dropped := NormalizeRules([]RawRule{
			{Day: "VRIJDAG", Start: "0900", End: "1000", Amount: "n/a", StepSize: "60"},
			{Day: "VRIJDAG", Start: "1000", End: "1100", Amount: "2", StepSize: ""},
			{Day: "VRIJDAG", Start: "1100", End: "1200", Amount: "NaN", StepSize: "60"},
		})

		assert.Zero(t, dropped)
		require.Len(t, byDay[Friday], 3)
		for _, c := range byDay[Friday] {
			assert.Zero(t, c.Rate)
		}
	})

	t.Run("priority is carried over", func(t *testing.T) {
		byDay, _ := NormalizeRules([]RawRule{
			{Day: "ZONDAG", Start: "0000", End: "2400", Amount: "1", StepSize: "60", Priority: 3},
		})

		require.Len(t, byDay[Sunday], 1)
		assert.Equal(t, 3, byDay[Sunday][0].Priority)
	})
}
