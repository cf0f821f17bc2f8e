package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"logbook/logger"
	"logbook/models"
	"logbook/query"
)

// runSortColumns maps API sort field names onto run columns.
var runSortColumns = map[string]string{
	"id": "r.id",
}

const runSelectColumns = `r.id, r.run_number, r.n_detectors, r.n_epns, r.n_flps, r.n_subtimeframes, r.bytes_read_out,
	r.run_quality, r.run_type, r.time_o2_start, r.time_o2_end, r.time_trg_start, r.time_trg_end, r.created_at, r.updated_at`

func scanRun(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Run, error) {
	var r models.Run
	var o2Start, o2End, trgStart, trgEnd sql.NullTime
	err := scanner.Scan(&r.ID, &r.RunNumber, &r.NDetectors, &r.NEpns, &r.NFlps, &r.NSubtimeframes, &r.BytesReadOut,
		&r.RunQuality, &r.RunType, &o2Start, &o2End, &trgStart, &trgEnd, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if o2Start.Valid {
		t := o2Start.Time
		r.TimeO2Start = &t
	}
	if o2End.Valid {
		t := o2End.Time
		r.TimeO2End = &t
	}
	if trgStart.Valid {
		t := trgStart.Time
		r.TimeTrgStart = &t
	}
	if trgEnd.Valid {
		t := trgEnd.Time
		r.TimeTrgEnd = &t
	}
	return r, nil
}

// nullTimeArg formats an optional timestamp the way CURRENT_TIMESTAMP
// renders, so stored clock values stay comparable.
func nullTimeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(sqliteTimeFormat)
}

// CreateRun inserts a new run. Runs are immutable once created; there is
// deliberately no UpdateRun.
func CreateRun(run models.Run) (models.Run, error) {
	stmt, err := DB.Prepare(`
		INSERT INTO runs (run_number, n_detectors, n_epns, n_flps, n_subtimeframes, bytes_read_out,
			run_quality, run_type, time_o2_start, time_o2_end, time_trg_start, time_trg_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		logger.Error("CreateRun: Error preparing statement for run %d: %v", run.RunNumber, err)
		return models.Run{}, fmt.Errorf("preparing insert run statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(run.RunNumber, run.NDetectors, run.NEpns, run.NFlps, run.NSubtimeframes, run.BytesReadOut,
		run.RunQuality, run.RunType, nullTimeArg(run.TimeO2Start), nullTimeArg(run.TimeO2End),
		nullTimeArg(run.TimeTrgStart), nullTimeArg(run.TimeTrgEnd))
	if err != nil {
		logger.Error("CreateRun: Error executing insert for run %d: %v", run.RunNumber, err)
		return models.Run{}, fmt.Errorf("executing insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Run{}, fmt.Errorf("getting last insert ID for run: %w", err)
	}
	logger.Info("CreateRun: Created run ID %d (run number %d).", id, run.RunNumber)
	return GetRunByID(id)
}

// GetRunByID retrieves a single run by its ID.
func GetRunByID(id int64) (models.Run, error) {
	q := fmt.Sprintf("SELECT %s FROM runs r WHERE r.id = ?", runSelectColumns)
	run, err := scanRun(DB.QueryRow(q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, fmt.Errorf("run with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetRunByID: Error querying run ID %d: %v", id, err)
		return run, fmt.Errorf("querying run ID %d: %w", id, err)
	}
	return run, nil
}

// GetRunByNumber retrieves a single run by its unique run number.
func GetRunByNumber(runNumber int64) (models.Run, error) {
	q := fmt.Sprintf("SELECT %s FROM runs r WHERE r.run_number = ?", runSelectColumns)
	run, err := scanRun(DB.QueryRow(q, runNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, fmt.Errorf("run with run number %d not found: %w", runNumber, sql.ErrNoRows)
		}
		logger.Error("GetRunByNumber: Error querying run number %d: %v", runNumber, err)
		return run, fmt.Errorf("querying run number %d: %w", runNumber, err)
	}
	return run, nil
}

// GetRuns retrieves a sorted, paginated page of runs plus the total count.
func GetRuns(sortSpec query.Sort, page query.Pagination) ([]models.Run, int64, error) {
	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM runs").Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting runs: %w", err)
	}

	var runs []models.Run
	if totalRecords == 0 {
		return runs, 0, nil
	}

	orderBy := ""
	if len(sortSpec) > 0 {
		var orderKeys []string
		for _, k := range sortSpec {
			col, ok := runSortColumns[k.Field]
			if !ok {
				return nil, 0, fmt.Errorf("unmapped sort field %q", k.Field)
			}
			orderKeys = append(orderKeys, fmt.Sprintf("%s %s", col, strings.ToUpper(k.Direction)))
		}
		orderBy = "ORDER BY " + strings.Join(orderKeys, ", ")
	}

	q := fmt.Sprintf("SELECT %s FROM runs r %s LIMIT ? OFFSET ?", runSelectColumns, orderBy)
	rows, err := DB.Query(q, page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetRuns: Error querying runs: %v", err)
		return nil, totalRecords, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, totalRecords, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, totalRecords, rows.Err()
}

// GetLogsForRun retrieves a page of log entries referring to one run,
// newest first.
func GetLogsForRun(runID int64, page query.Pagination) ([]models.Log, int64, error) {
	if _, err := GetRunByID(runID); err != nil {
		return nil, 0, err
	}

	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM log_runs WHERE run_id = ?", runID).Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting logs for run %d: %w", runID, err)
	}

	var logs []models.Log
	if totalRecords == 0 {
		return logs, 0, nil
	}

	q := fmt.Sprintf(`SELECT %s
		FROM logs l
		JOIN users u ON l.user_id = u.id
		JOIN log_runs lr ON lr.log_id = l.id
		WHERE lr.run_id = ?
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ? OFFSET ?`, logSelectColumns)

	rows, err := DB.Query(q, runID, page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetLogsForRun: Error querying logs for run %d: %v", runID, err)
		return nil, totalRecords, fmt.Errorf("querying logs for run %d: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, totalRecords, fmt.Errorf("scanning log row for run %d: %w", runID, err)
		}
		logs = append(logs, l)
	}
	return logs, totalRecords, rows.Err()
}
