package ops

import (
	"database/sql"

	"github.com/pulseai/pulseai/internal/db"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
	IncludeReport  *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	db.Analysis // embedded (copy, not pointer)
}

// Fetch retrieves a stored analysis by ID.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	a, err := db.GetByID(database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{Analysis: *a}

	includeReport := true
	if input.IncludeReport != nil {
		includeReport = *input.IncludeReport
	}
	if !includeReport {
		output.ReportText = ""
	}

	return output, nil
}
