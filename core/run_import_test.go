package core

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"logbook/config"
	"logbook/database"
	"logbook/models"

	"github.com/tidwall/gjson"

	_ "github.com/mattn/go-sqlite3"
)

func parseEntry(t *testing.T, s string) gjson.Result {
	t.Helper()
	if !gjson.Valid(s) {
		t.Fatalf("test fixture is not valid JSON: %s", s)
	}
	return gjson.Parse(s)
}

func setupImportTest(t *testing.T) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../database/migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("reading schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	database.DB = db
	t.Cleanup(func() {
		db.Close()
		database.DB = nil
	})

	config.AppConfig.RunImport.RunsArrayPath = "runs"
	config.AppConfig.RunImport.RunNumberField = "runNumber"
	config.AppConfig.RunImport.QualityField = "runQuality"
	config.AppConfig.RunImport.TypeField = "runType"
	config.AppConfig.RunImport.DetectorsField = "nDetectors"
	config.AppConfig.RunImport.TimeO2StartField = "timeO2Start"
}

func TestImportRuns(t *testing.T) {
	setupImportTest(t)

	export := []byte(`{"runs": [
		{"runNumber": 505, "runQuality": "good", "runType": "physics", "nDetectors": 12, "timeO2Start": "2026-08-15T08:00:00Z"},
		{"runNumber": 506, "runQuality": "mediocre", "runType": "calibration"},
		{"note": "no run number here"}
	]}`)

	imported, err := ImportRuns(export)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imported runs, got %d", imported)
	}

	run, err := database.GetRunByNumber(505)
	if err != nil {
		t.Fatalf("run 505 not stored: %v", err)
	}
	if run.RunQuality != models.RunQualityGood || run.RunType != models.RunTypePhysics || run.NDetectors != 12 {
		t.Errorf("unexpected run 505: %+v", run)
	}
	wantStart := time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)
	if run.TimeO2Start == nil || !run.TimeO2Start.Equal(wantStart) {
		t.Errorf("unexpected timeO2Start: %v", run.TimeO2Start)
	}

	// Unknown quality and type fall back to defaults.
	run, err = database.GetRunByNumber(506)
	if err != nil {
		t.Fatalf("run 506 not stored: %v", err)
	}
	if run.RunQuality != models.RunQualityUnknown || run.RunType != models.RunTypeTechnical {
		t.Errorf("unexpected defaults for run 506: quality=%s type=%s", run.RunQuality, run.RunType)
	}

	// A second import of the same export skips known run numbers.
	imported, err = ImportRuns(export)
	if err != nil {
		t.Fatalf("unexpected error on re-import: %v", err)
	}
	if imported != 0 {
		t.Errorf("re-import should skip existing runs, imported %d", imported)
	}
}

func TestImportRunsRejectsBadInput(t *testing.T) {
	setupImportTest(t)

	if _, err := ImportRuns([]byte("{not json")); err == nil {
		t.Error("invalid JSON must be rejected")
	}
	if _, err := ImportRuns([]byte(`{"data": []}`)); err == nil {
		t.Error("missing runs array must be rejected")
	}
}

func TestImportTimeFormats(t *testing.T) {
	entry := parseEntry(t, `{"a": "2026-08-15T08:00:00Z", "b": 1765785600000, "c": null, "d": "not a time"}`)

	if got := importTime(entry, "a"); got == nil || !got.Equal(time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected RFC3339 result: %v", got)
	}
	if got := importTime(entry, "b"); got == nil || got.UnixMilli() != 1765785600000 {
		t.Errorf("unexpected epoch-millis result: %v", got)
	}
	if got := importTime(entry, "c"); got != nil {
		t.Errorf("null must yield nil, got %v", got)
	}
	if got := importTime(entry, "d"); got != nil {
		t.Errorf("garbage must yield nil, got %v", got)
	}
	if got := importTime(entry, "missing"); got != nil {
		t.Errorf("missing field must yield nil, got %v", got)
	}
}
