package core

import (
	"fmt"
	"time"

	"logbook/config"
	"logbook/database"
	"logbook/logger"
	"logbook/models"

	"github.com/tidwall/gjson"
)

// ImportRuns ingests a run export produced by the control system. The
// export's JSON layout varies between deployments, so the array path and
// every field name are gjson paths taken from the run_import config
// section. Runs whose run number already exists are skipped.
// Returns the number of runs inserted.
func ImportRuns(data []byte) (int, error) {
	conf := &config.AppConfig.RunImport

	if !gjson.ValidBytes(data) {
		return 0, fmt.Errorf("run export is not valid JSON")
	}

	runsValue := gjson.GetBytes(data, conf.RunsArrayPath)
	if !runsValue.Exists() {
		return 0, fmt.Errorf("run export has no array at path %q", conf.RunsArrayPath)
	}

	imported := 0
	for _, entry := range runsValue.Array() {
		runNumber := entry.Get(conf.RunNumberField).Int()
		if runNumber <= 0 {
			logger.Warn("ImportRuns: Skipping entry without a usable %q field: %s", conf.RunNumberField, entry.Raw)
			continue
		}

		quality := entry.Get(conf.QualityField).String()
		if !models.ValidRunQuality(quality) {
			quality = models.RunQualityUnknown
		}
		runType := entry.Get(conf.TypeField).String()
		if !models.ValidRunType(runType) {
			logger.Warn("ImportRuns: Run %d has unknown type '%s', defaulting to technical.", runNumber, runType)
			runType = models.RunTypeTechnical
		}

		run := models.Run{
			RunNumber:      runNumber,
			NDetectors:     entry.Get(conf.DetectorsField).Int(),
			NEpns:          entry.Get(conf.EpnsField).Int(),
			NFlps:          entry.Get(conf.FlpsField).Int(),
			NSubtimeframes: entry.Get(conf.SubtimeframesField).Int(),
			BytesReadOut:   entry.Get(conf.BytesReadOutField).Int(),
			RunQuality:     quality,
			RunType:        runType,
			TimeO2Start:    importTime(entry, conf.TimeO2StartField),
			TimeO2End:      importTime(entry, conf.TimeO2EndField),
			TimeTrgStart:   importTime(entry, conf.TimeTrgStartField),
			TimeTrgEnd:     importTime(entry, conf.TimeTrgEndField),
		}

		existing, err := database.GetRunByNumber(runNumber)
		if err == nil {
			logger.Debug("ImportRuns: Run number %d already recorded (ID %d). Skipping.", runNumber, existing.ID)
			continue
		}

		if _, err := database.CreateRun(run); err != nil {
			return imported, fmt.Errorf("importing run %d: %w", runNumber, err)
		}
		imported++
	}

	logger.Info("ImportRuns: Imported %d runs from export.", imported)
	return imported, nil
}

// importTime reads a timestamp field that may be RFC3339 or epoch
// milliseconds, the two formats the control system has been seen to emit.
func importTime(entry gjson.Result, path string) *time.Time {
	v := entry.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type == gjson.Number {
		t := time.UnixMilli(v.Int()).UTC()
		return &t
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
