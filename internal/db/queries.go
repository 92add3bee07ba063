package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pulseai/pulseai/internal/errors"
)

// Analysis is a persisted copy of one rendered analysis report plus its
// classification metadata. Rows are immutable after insert apart from
// soft deletion.
type Analysis struct {
	// ID is a ULID that uniquely identifies this analysis
	ID string `json:"id"`

	// Filename is the name of the uploaded capture file
	Filename string `json:"filename"`

	// FormatLabel / FormatType describe the sniffed capture source tool
	FormatLabel string `json:"format_label"`
	FormatType  string `json:"format_type"`

	// Protocol and Confidence come from the heuristic classifier, even
	// when the report body was produced by the AI engine
	Protocol   string `json:"protocol"`
	Confidence string `json:"confidence"`

	// Engine records which backend produced ReportText: "heuristic" or "ai"
	Engine string `json:"engine"`

	// PinRoles is the ordered pin-role assignment (stored as JSON)
	PinRoles []string `json:"pin_roles"`

	// ChannelCount and RowCount summarize the profiled capture
	ChannelCount int `json:"channel_count"`
	RowCount     int `json:"row_count"`

	// ReportText is the rendered report document
	ReportText string `json:"report_text,omitempty"`

	// ReportChars is the character count of ReportText (runes, not bytes)
	ReportChars int `json:"report_chars"`

	// CreatedAt is the Unix timestamp when the analysis was stored
	CreatedAt int64 `json:"created_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// Summary is the list-view projection of an Analysis (no report text).
type Summary struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	FormatLabel  string `json:"format_label"`
	Protocol     string `json:"protocol"`
	Confidence   string `json:"confidence"`
	Engine       string `json:"engine"`
	ChannelCount int    `json:"channel_count"`
	RowCount     int    `json:"row_count"`
	ReportChars  int    `json:"report_chars"`
	CreatedAt    int64  `json:"created_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
}

// ToSummary projects an Analysis onto its Summary.
func (a *Analysis) ToSummary() Summary {
	return Summary{
		ID:           a.ID,
		Filename:     a.Filename,
		FormatLabel:  a.FormatLabel,
		Protocol:     a.Protocol,
		Confidence:   a.Confidence,
		Engine:       a.Engine,
		ChannelCount: a.ChannelCount,
		RowCount:     a.RowCount,
		ReportChars:  a.ReportChars,
		CreatedAt:    a.CreatedAt,
		DeletedAt:    a.DeletedAt,
	}
}

const analysisColumns = `id, filename, format_label, format_type, protocol,
	confidence, engine, pin_roles_json, channel_count, row_count,
	report_text, report_chars, created_at, deleted_at`

// Insert stores a new analysis row.
func Insert(db *sql.DB, a *Analysis) error {
	var rolesJSON sql.NullString
	if len(a.PinRoles) > 0 {
		data, err := json.Marshal(a.PinRoles)
		if err != nil {
			return errors.NewInternal(err)
		}
		rolesJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO analyses (
			id, filename, format_label, format_type, protocol,
			confidence, engine, pin_roles_json, channel_count, row_count,
			report_text, report_chars, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err := db.Exec(query,
		a.ID, a.Filename, a.FormatLabel, a.FormatType, a.Protocol,
		a.Confidence, a.Engine, rolesJSON, a.ChannelCount, a.RowCount,
		a.ReportText, a.ReportChars, a.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves an analysis by its ULID.
// If includeDeleted is false, soft-deleted rows are excluded.
func GetByID(db *sql.DB, id string, includeDeleted bool) (*Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := db.QueryRow(query, id)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return a, nil
}

// GetLatest retrieves the most recently stored analysis, or nil if the
// history is empty.
func GetLatest(db *sql.DB, includeDeleted bool) (*Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses`
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT 1"

	row := db.QueryRow(query)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return a, nil
}

// ListRecent retrieves analysis summaries ordered by newest first, with an
// optional protocol filter, plus the total count for pagination.
func ListRecent(db *sql.DB, protocol string, limit, offset int, includeDeleted bool) ([]Summary, int, error) {
	where := "1=1"
	args := []any{}
	if !includeDeleted {
		where += " AND deleted_at IS NULL"
	}
	if protocol != "" {
		where += " AND protocol = ?"
		args = append(args, protocol)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM analyses WHERE " + where
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, filename, format_label, protocol, confidence, engine,
			channel_count, row_count, report_chars, created_at, deleted_at
		FROM analyses
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			s         Summary
			deletedAt sql.NullInt64
		)
		err := rows.Scan(
			&s.ID, &s.Filename, &s.FormatLabel, &s.Protocol, &s.Confidence,
			&s.Engine, &s.ChannelCount, &s.RowCount, &s.ReportChars,
			&s.CreatedAt, &deletedAt,
		)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		if deletedAt.Valid {
			s.DeletedAt = &deletedAt.Int64
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// SoftDelete marks an analysis as deleted by setting deleted_at.
func SoftDelete(db *sql.DB, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE analyses
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.Exec(query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// PurgeDeleted permanently removes soft-deleted analyses, optionally only
// those deleted more than olderThanDays ago. Returns the number purged.
func PurgeDeleted(db *sql.DB, olderThanDays *int) (int, error) {
	query := "DELETE FROM analyses WHERE deleted_at IS NOT NULL"
	args := []any{}

	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(count), nil
}

// scanAnalysis scans a single row into an Analysis struct.
func scanAnalysis(row *sql.Row) (*Analysis, error) {
	var (
		a         Analysis
		rolesJSON sql.NullString
		deletedAt sql.NullInt64
	)

	err := row.Scan(
		&a.ID, &a.Filename, &a.FormatLabel, &a.FormatType, &a.Protocol,
		&a.Confidence, &a.Engine, &rolesJSON, &a.ChannelCount, &a.RowCount,
		&a.ReportText, &a.ReportChars, &a.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Int64
	}

	if rolesJSON.Valid && rolesJSON.String != "" {
		if err := json.Unmarshal([]byte(rolesJSON.String), &a.PinRoles); err != nil {
			return nil, err
		}
	}

	return &a, nil
}
