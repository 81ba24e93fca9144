package domain

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZone() ZoneTariffs {
	return ZoneTariffs{
		ManagerID:       "363",
		ZoneID:          "363_T12B",
		DisplayID:       "12100",
		Name:            "Centrum",
		City:            "Amsterdam",
		Geo:             Geo{Lat: 52.37, Lng: 4.90},
		UsageID:         "BETAALDP",
		MaxDurationMins: 240,
		RunID:           "run-1",
		Rules: []RawRule{
			{Day: "MAANDAG", Start: "0000", End: "1200", Amount: "2.00", StepSize: "60"},
			{Day: "MAANDAG", Start: "0600", End: "1800", Amount: "3.00", StepSize: "60"},
			{Day: "ZATERDAG", Start: "0000", End: "2400", Amount: "15.00", StepSize: "1440"},
		},
	}
}

func TestBuildZoneSchedule(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	s := BuildZoneSchedule(context.Background(), testZone(), nil)

	assert.Equal(t, "363_12100", s.DocID)
	assert.Equal(t, "12100", s.ID)
	assert.Equal(t, "Centrum", s.Name)
	assert.Equal(t, "Amsterdam", s.City)
	assert.Equal(t, "363", s.ManagerID)
	assert.Equal(t, 52.37, s.Lat)
	assert.Equal(t, 4.90, s.Lng)
	assert.InDelta(t, 3.00, s.Price, 1e-9)
	assert.Equal(t, 240, s.MaxDurationMins)
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, fixed, s.UpdatedAt)

	// Monday has two blocks, Saturday one, the other five days one free block each
	require.Len(t, s.Rates, 8)

	t.Run("overlapping monday rules", func(t *testing.T) {
		assert.Equal(t, RateLine{
			Time:        "Maandag 00:00 - 18:00",
			Price:       "€ 3,00 / 60 min",
			Detail:      "€ 2.00 per uur|€ 3.00 per uur",
			RateNumeric: 3,
		}, s.Rates[0])
		assert.Equal(t, RateLine{
			Time:        "Maandag 18:00 - 24:00",
			Price:       FreeParkingLabel,
			Detail:      FreeParkingDetail,
			RateNumeric: 0,
		}, s.Rates[1])
	})

	t.Run("day without rules is free", func(t *testing.T) {
		assert.Equal(t, RateLine{
			Time:   "Dinsdag 00:00 - 24:00",
			Price:  FreeParkingLabel,
			Detail: FreeParkingDetail,
		}, s.Rates[2])
	})

	t.Run("day pass", func(t *testing.T) {
		sat := s.Rates[6]
		assert.Equal(t, "Zaterdag 00:00 - 24:00", sat.Time)
		assert.Equal(t, "€ 15,00 / dag", sat.Price)
		assert.Equal(t, "€ 15.00 / dag", sat.Detail)
		assert.Equal(t, 0.63, sat.RateNumeric)
	})

	t.Run("schedule passes integrity", func(t *testing.T) {
		assert.Empty(t, CheckIntegrity(s))
	})
}

func TestBuildZoneScheduleIgnoresZeroLengthRule(t *testing.T) {
	z := testZone()
	z.Rules = []RawRule{
		{Day: "MAANDAG", Start: "0900", End: "0900", Amount: "5", StepSize: "60"},
		{Day: "MAANDAG", Start: "0900", End: "1700", Amount: "2", StepSize: "60"},
	}

	s := BuildZoneSchedule(context.Background(), z, nil)

	assert.InDelta(t, 2.00, s.Price, 1e-9)
	assert.Equal(t, 1, s.DroppedRules)
	assert.Empty(t, CheckIntegrity(s))
}

func TestBuildZoneScheduleFallsBackToZoneID(t *testing.T) {
	z := testZone()
	z.DisplayID = ""

	s := BuildZoneSchedule(context.Background(), z, NewFormatter(nil, nil, nil))
	assert.Equal(t, "363_T12B", s.ID)
	assert.Equal(t, "363_363_T12B", s.DocID)
}

func TestBuildRatesCoversEveryDay(t *testing.T) {
	rates := NewFormatter(nil, nil, nil).BuildRates(context.Background(), nil)

	require.Len(t, rates, 7)
	for i, d := range Weekdays {
		assert.Equal(t, d.String()+" 00:00 - 24:00", rates[i].Time)
		assert.Equal(t, FreeParkingLabel, rates[i].Price)
	}
}

func TestRenderBlock(t *testing.T) {
	t.Run("paid block", func(t *testing.T) {
		line := RenderBlock(Wednesday, MergedBlock{
			Start: 930, End: 2100, Rate: 2.456,
			DisplayLabel: "€ 2.46 / u",
			Lines:        []string{"€ 2.46 per uur", "Stop en Shop"},
		})

		assert.Equal(t, RateLine{
			Time:        "Woensdag 09:30 - 21:00",
			Price:       "€ 2,46 / u",
			Detail:      "€ 2.46 per uur|Stop en Shop",
			RateNumeric: 2.46,
		}, line)
	})

	t.Run("rate that rounds to zero is free", func(t *testing.T) {
		line := RenderBlock(Thursday, MergedBlock{Start: 0, End: 2400, Rate: 0.004, DisplayLabel: "€ 0.00 / u"})

		assert.Equal(t, FreeParkingLabel, line.Price)
		assert.Equal(t, FreeParkingDetail, line.Detail)
		assert.Zero(t, line.RateNumeric)
	})

	t.Run("missing label defaults to hourly", func(t *testing.T) {
		line := RenderBlock(Friday, MergedBlock{Start: 0, End: 2400, Rate: 1.5})
		assert.Equal(t, "€ 1,50 / u", line.Price)
	})
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "599_1234", DocumentID("599", "1234", "Blaak"))
	assert.Equal(t, "Blaak", DocumentID("599", "Blaak", "Blaak"))
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		assert.Equal(t, fixedTime, clock.Now())
		assert.Equal(t, fixedTime, Now())

		SetClock(nil) // reset
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.True(t, time.Since(clock.Now()) < time.Second)
	})
}
