package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotDir = "../../internal/adapter/rdw/testdata/snapshot"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuild(t *testing.T) {
	stdout, stderr, err := execute(t, "", "build", "--from-dir", snapshotDir, "--date", "2026-03-02")
	require.NoError(t, err)
	assert.Contains(t, stderr, "zones=3 published=1 filtered=2 inconsistent=0")

	var schedules []domain.ZoneSchedule
	require.NoError(t, json.Unmarshal([]byte(stdout), &schedules))
	require.Len(t, schedules, 1)

	s := schedules[0]
	assert.Equal(t, "363_12100", s.DocID)
	assert.Equal(t, "Amsterdam Zone T12B", s.Name)
	assert.InDelta(t, 4.0, s.Price, 1e-9)
	assert.Equal(t, 90, s.MaxDurationMins)
	assert.True(t, s.HasSpecialRules)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), s.UpdatedAt)
	assert.Equal(t, "Maandag 09:00 - 18:00", s.Rates[1].Time)
}

func TestBuild_AllWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "zones.json")
	stdout, _, err := execute(t, "", "build", "--from-dir", snapshotDir, "--all", "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.FileExists(t, out)
}

func TestBuild_RequiresSnapshot(t *testing.T) {
	_, _, err := execute(t, "", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from-dir")
}

func TestBuild_InvalidDate(t *testing.T) {
	_, _, err := execute(t, "", "build", "--from-dir", snapshotDir, "--date", "02-03-2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}

func TestConsolidate(t *testing.T) {
	zone := `{"mgr_id":"599","zone_id":"1234","name":"Blaak","city":"Rotterdam","usage_id":"VERGUNP",
		"rules":[{"day":"DAGELIJKS","start":"0900","end":"2300","amount":"4.20","step_size":"60"}]}`

	stdout, stderr, err := execute(t, zone, "consolidate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "not publishable")
	assert.Contains(t, stderr, domain.FilterRestrictedUsage)

	var s domain.ZoneSchedule
	require.NoError(t, json.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, "599_1234", s.DocID)
	assert.InDelta(t, 4.2, s.Price, 1e-9)
	require.Len(t, s.Rates, 21)
	assert.Equal(t, "€ 4,20 / 60 min", s.Rates[1].Price)
}

func TestConsolidate_BadInput(t *testing.T) {
	_, _, err := execute(t, "{", "consolidate")
	require.Error(t, err)
}

func TestReportViolations(t *testing.T) {
	var out bytes.Buffer
	cmd := newValidateCmd()
	cmd.SetOut(&out)

	require.NoError(t, reportViolations(cmd, 12, nil))
	assert.Contains(t, out.String(), "scanned 12 zone documents")
	assert.Contains(t, out.String(), "PASS")

	out.Reset()
	err := reportViolations(cmd, 2, []domain.Violation{
		{ZoneID: "363_1", Code: domain.ViolationPriceMismatch, Message: "price=5 max(rate_numeric)=2"},
	})
	require.Error(t, err)
	assert.Contains(t, out.String(), "FAIL: 1 integrity violations")
	assert.Contains(t, out.String(), "[363_1] price_mismatch_max_rate: price=5 max(rate_numeric)=2")
}
