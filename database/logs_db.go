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

// sqliteTimeFormat is how CURRENT_TIMESTAMP renders, so bound timestamp
// parameters compare correctly against stored values.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// logSortColumns maps API sort field names onto ORDER BY expressions.
var logSortColumns = map[string]string{
	"id":        "l.id",
	"title":     "l.title",
	"author":    "u.name",
	"createdAt": "l.created_at",
	"tags":      "(SELECT GROUP_CONCAT(t.text) FROM log_tags lt JOIN tags t ON t.id = lt.tag_id WHERE lt.log_id = l.id)",
}

// translateLogPredicate turns one node of a compiled filter tree into a
// parameterized SQL fragment against the logs/users join.
func translateLogPredicate(p query.Predicate) (string, []interface{}, error) {
	switch node := p.(type) {
	case query.And:
		return translateJunction(node.Operands, " AND ")
	case query.Or:
		return translateJunction(node.Operands, " OR ")
	case query.HasTag:
		return "l.id IN (SELECT log_id FROM log_tags WHERE tag_id = ?)", []interface{}{node.TagID}, nil
	case query.Comparison:
		return translateLogComparison(node)
	default:
		return "", nil, fmt.Errorf("unsupported predicate node %T", p)
	}
}

func translateJunction(operands []query.Predicate, joiner string) (string, []interface{}, error) {
	if len(operands) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []interface{}
	for _, op := range operands {
		clause, clauseArgs, err := translateLogPredicate(op)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, clauseArgs...)
	}
	if len(clauses) == 0 {
		return "", nil, nil
	}
	if len(clauses) == 1 {
		return clauses[0], args, nil
	}
	return "(" + strings.Join(clauses, joiner) + ")", args, nil
}

func translateLogComparison(c query.Comparison) (string, []interface{}, error) {
	switch c.Field {
	case query.FieldAuthor:
		if c.Op != query.OpContains {
			break
		}
		return "LOWER(u.name) LIKE LOWER(?)", []interface{}{"%" + c.Value.(string) + "%"}, nil
	case query.FieldTitle:
		if c.Op != query.OpContains {
			break
		}
		return "LOWER(l.title) LIKE LOWER(?)", []interface{}{"%" + c.Value.(string) + "%"}, nil
	case query.FieldCreatedAt:
		t, ok := c.Value.(time.Time)
		if !ok {
			return "", nil, fmt.Errorf("createdAt comparison value is %T, not time.Time", c.Value)
		}
		switch c.Op {
		case query.OpAtLeast:
			return "l.created_at >= ?", []interface{}{t.UTC().Format(sqliteTimeFormat)}, nil
		case query.OpAtMost:
			return "l.created_at <= ?", []interface{}{t.UTC().Format(sqliteTimeFormat)}, nil
		}
	case query.FieldOrigin:
		if c.Op != query.OpEquals {
			break
		}
		return "l.origin = ?", []interface{}{c.Value}, nil
	case query.FieldParentLogID:
		if c.Op != query.OpEquals {
			break
		}
		return "l.parent_log_id = ?", []interface{}{c.Value}, nil
	case query.FieldRootLogID:
		if c.Op != query.OpEquals {
			break
		}
		return "l.root_log_id = ?", []interface{}{c.Value}, nil
	}
	return "", nil, fmt.Errorf("unsupported comparison %s %s", c.Field, c.Op)
}

const logSelectColumns = `l.id, l.title, l.text, l.origin, l.subtype, l.user_id, u.name, l.parent_log_id, l.root_log_id, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM logs c WHERE c.parent_log_id = l.id) AS replies`

func scanLog(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Log, error) {
	var l models.Log
	var parentLogID sql.NullInt64
	err := scanner.Scan(&l.ID, &l.Title, &l.Text, &l.Origin, &l.Subtype, &l.UserID, &l.Author,
		&parentLogID, &l.RootLogID, &l.CreatedAt, &l.UpdatedAt, &l.Replies)
	if err != nil {
		return l, err
	}
	l.ParentLogID = models.Int64PtrFromNull(parentLogID)
	return l, nil
}

// GetLogs retrieves a filtered, sorted, paginated page of log entries plus
// the total matching count. The filter has already been compiled; this is
// where its predicate tree meets actual SQL. Replies on list rows count
// direct replies only; the detail and tree endpoints count full subtrees.
func GetLogs(filter query.And, sortSpec query.Sort, page query.Pagination) ([]models.Log, int64, error) {
	var logs []models.Log
	var totalRecords int64

	whereClause, args, err := translateLogPredicate(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("translating log filter: %w", err)
	}
	fromAndJoin := "FROM logs l JOIN users u ON l.user_id = u.id"
	finalWhere := ""
	if whereClause != "" {
		finalWhere = "WHERE " + whereClause
	}

	countQuery := fmt.Sprintf("SELECT COUNT(l.id) %s %s", fromAndJoin, finalWhere)
	if err := DB.QueryRow(countQuery, args...).Scan(&totalRecords); err != nil {
		logger.Error("GetLogs: Error counting records: %v", err)
		return nil, 0, fmt.Errorf("counting logs: %w", err)
	}
	if totalRecords == 0 {
		return logs, 0, nil
	}

	orderBy := ""
	if len(sortSpec) > 0 {
		var orderKeys []string
		for _, k := range sortSpec {
			col, ok := logSortColumns[k.Field]
			if !ok {
				return nil, 0, fmt.Errorf("unmapped sort field %q", k.Field)
			}
			orderKeys = append(orderKeys, fmt.Sprintf("%s %s", col, strings.ToUpper(k.Direction)))
		}
		orderBy = "ORDER BY " + strings.Join(orderKeys, ", ")
	}

	listQuery := fmt.Sprintf("SELECT %s %s %s %s LIMIT ? OFFSET ?",
		logSelectColumns, fromAndJoin, finalWhere, orderBy)
	queryArgs := append(args, page.Limit, page.Offset)

	rows, err := DB.Query(listQuery, queryArgs...)
	if err != nil {
		logger.Error("GetLogs: Error querying records: %v. Query: %s. Args: %v", err, listQuery, queryArgs)
		return nil, 0, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var logIDs []int64
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			logger.Error("GetLogs: Error scanning log row: %v", err)
			return nil, totalRecords, fmt.Errorf("scanning log row: %w", err)
		}
		logs = append(logs, l)
		logIDs = append(logIDs, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, totalRecords, err
	}

	tagsByLogID, err := GetTagsForLogs(logIDs)
	if err != nil {
		return nil, totalRecords, err
	}
	for i := range logs {
		if tags, ok := tagsByLogID[logs[i].ID]; ok {
			logs[i].Tags = tags
		}
	}
	return logs, totalRecords, nil
}

// GetLogByID retrieves a single log entry with its tags, run numbers and
// attachments. Replies counts the log's full descendant subtree.
func GetLogByID(id int64) (models.Log, error) {
	q := fmt.Sprintf("SELECT %s FROM logs l JOIN users u ON l.user_id = u.id WHERE l.id = ?", logSelectColumns)
	l, err := scanLog(DB.QueryRow(q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, fmt.Errorf("log with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetLogByID: Error querying log ID %d: %v", id, err)
		return l, fmt.Errorf("querying log ID %d: %w", id, err)
	}

	if err := DB.QueryRow(`
		WITH RECURSIVE descendants(id) AS (
			SELECT id FROM logs WHERE parent_log_id = ?
			UNION ALL
			SELECT l.id FROM logs l JOIN descendants d ON l.parent_log_id = d.id
		)
		SELECT COUNT(*) FROM descendants
	`, id).Scan(&l.Replies); err != nil {
		logger.Error("GetLogByID: Error counting descendants of log %d: %v", id, err)
		return l, fmt.Errorf("counting descendants of log %d: %w", id, err)
	}

	tags, err := GetTagsForLog(id)
	if err != nil {
		return l, err
	}
	l.Tags = tags

	runNumbers, err := GetRunNumbersForLog(id)
	if err != nil {
		return l, err
	}
	l.RunNumbers = runNumbers

	attachments, err := GetAttachmentsForLog(id)
	if err != nil {
		return l, err
	}
	l.Attachments = attachments
	return l, nil
}

// GetLogFamily retrieves the complete flat row set of one thread: the root
// entry plus every descendant. A root's root_log_id equals its own id, so
// a single equality catches the whole family.
func GetLogFamily(rootLogID int64) ([]models.Log, error) {
	q := fmt.Sprintf("SELECT %s FROM logs l JOIN users u ON l.user_id = u.id WHERE l.root_log_id = ?", logSelectColumns)
	rows, err := DB.Query(q, rootLogID)
	if err != nil {
		logger.Error("GetLogFamily: Error querying family of root %d: %v", rootLogID, err)
		return nil, fmt.Errorf("querying log family %d: %w", rootLogID, err)
	}
	defer rows.Close()

	var logs []models.Log
	var logIDs []int64
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning log family row: %w", err)
		}
		logs = append(logs, l)
		logIDs = append(logIDs, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagsByLogID, err := GetTagsForLogs(logIDs)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if tags, ok := tagsByLogID[logs[i].ID]; ok {
			logs[i].Tags = tags
		}
	}
	return logs, nil
}

// CreateLog inserts a new log entry, resolves its root from the parent (a
// reply inherits the parent's root; a fresh entry roots itself) and links
// the requested tags and runs.
func CreateLog(l models.Log, tagIDs []int64, runNumbers []int64) (models.Log, error) {
	rootLogID := int64(0)
	if l.ParentLogID != nil {
		var parentRoot int64
		err := DB.QueryRow("SELECT root_log_id FROM logs WHERE id = ?", *l.ParentLogID).Scan(&parentRoot)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Log{}, fmt.Errorf("parent log with ID %d not found: %w", *l.ParentLogID, sql.ErrNoRows)
			}
			logger.Error("CreateLog: Error resolving parent log %d: %v", *l.ParentLogID, err)
			return models.Log{}, fmt.Errorf("resolving parent log %d: %w", *l.ParentLogID, err)
		}
		rootLogID = parentRoot
	}

	stmt, err := DB.Prepare("INSERT INTO logs (title, text, origin, subtype, user_id, parent_log_id, root_log_id) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		logger.Error("CreateLog: Error preparing insert statement: %v", err)
		return models.Log{}, fmt.Errorf("preparing insert log statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(l.Title, l.Text, l.Origin, l.Subtype, l.UserID, models.NullInt64FromPtr(l.ParentLogID), rootLogID)
	if err != nil {
		logger.Error("CreateLog: Error executing insert: %v", err)
		return models.Log{}, fmt.Errorf("executing insert log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Log{}, fmt.Errorf("getting last insert ID for log: %w", err)
	}

	if l.ParentLogID == nil {
		if _, err := DB.Exec("UPDATE logs SET root_log_id = id WHERE id = ?", id); err != nil {
			logger.Error("CreateLog: Error self-rooting log %d: %v", id, err)
			return models.Log{}, fmt.Errorf("self-rooting log %d: %w", id, err)
		}
	}

	if len(tagIDs) > 0 {
		if err := AddTagsToLog(id, tagIDs); err != nil {
			return models.Log{}, err
		}
	}
	if len(runNumbers) > 0 {
		if err := linkRunsToLog(id, runNumbers); err != nil {
			return models.Log{}, err
		}
	}

	logger.Info("CreateLog: Created log ID %d (root %d).", id, rootLogID)
	return GetLogByID(id)
}

func linkRunsToLog(logID int64, runNumbers []int64) error {
	for _, runNumber := range runNumbers {
		run, err := GetRunByNumber(runNumber)
		if err != nil {
			return err
		}
		if _, err := DB.Exec("INSERT OR IGNORE INTO log_runs (log_id, run_id) VALUES (?, ?)", logID, run.ID); err != nil {
			logger.Error("CreateLog: Error linking run %d to log %d: %v", run.ID, logID, err)
			return fmt.Errorf("linking run %d to log %d: %w", run.ID, logID, err)
		}
	}
	return nil
}

// GetRunNumbersForLog lists the run numbers a log entry refers to.
func GetRunNumbersForLog(logID int64) ([]int64, error) {
	rows, err := DB.Query(`
		SELECT r.run_number
		FROM runs r
		JOIN log_runs lr ON r.id = lr.run_id
		WHERE lr.log_id = ?
		ORDER BY r.run_number ASC
	`, logID)
	if err != nil {
		logger.Error("GetRunNumbersForLog: Error querying runs for log %d: %v", logID, err)
		return nil, fmt.Errorf("querying run numbers for log %d: %w", logID, err)
	}
	defer rows.Close()

	var runNumbers []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning run number for log %d: %w", logID, err)
		}
		runNumbers = append(runNumbers, n)
	}
	return runNumbers, rows.Err()
}
