package ops

import (
	"database/sql"

	"github.com/pulseai/pulseai/internal/db"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	IncludeReport  *bool // default: false (summary only)
	IncludeDeleted bool
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *LatestItem `json:"item"` // nil if the history is empty
}

// LatestItem contains the latest analysis with optional report text.
type LatestItem struct {
	db.Summary        // embedded summary
	ReportText string `json:"report_text,omitempty"` // only if include_report
}

// Latest retrieves the most recently stored analysis.
func Latest(database *sql.DB, input LatestInput) (*LatestOutput, error) {
	includeReport := false
	if input.IncludeReport != nil {
		includeReport = *input.IncludeReport
	}

	a, err := db.GetLatest(database, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return &LatestOutput{Item: nil}, nil
	}

	item := &LatestItem{Summary: a.ToSummary()}
	if includeReport {
		item.ReportText = a.ReportText
	}

	return &LatestOutput{Item: item}, nil
}
