package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/pulseai/pulseai/internal/analysis"
	"github.com/pulseai/pulseai/internal/config"
	"github.com/pulseai/pulseai/internal/db"
	"github.com/pulseai/pulseai/internal/errors"
)

// Engine selects the report source.
type Engine string

const (
	// EngineAuto uses the remote AI backend when one is configured and
	// reachable, falling back to the heuristic pipeline otherwise.
	EngineAuto Engine = "auto"
	// EngineHeuristic skips the AI backend entirely.
	EngineHeuristic Engine = "heuristic"
	// EngineAI requires the AI backend; its failure is surfaced, not absorbed.
	EngineAI Engine = "ai"
)

// RemoteAnalyzer is the AI backend contract as the ops layer sees it.
// *ai.Client satisfies it; tests substitute fakes.
type RemoteAnalyzer interface {
	Configured() bool
	Analyze(ctx context.Context, filename, csvText string) (string, error)
}

// AnalyzeInput contains parameters for the Analyze operation.
type AnalyzeInput struct {
	Filename string // defaults to "capture.csv"
	CSVText  string // required
	Engine   Engine // default: EngineAuto
	NoSave   bool   // skip the history store
}

// AnalyzeOutput contains the result of the Analyze operation.
type AnalyzeOutput struct {
	ID           string   `json:"id,omitempty"` // empty when not saved
	Filename     string   `json:"filename"`
	Format       string   `json:"format"`
	Protocol     string   `json:"protocol"`
	Confidence   string   `json:"confidence"`
	Engine       string   `json:"engine"`
	PinRoles     []string `json:"pin_roles"`
	ChannelCount int      `json:"channel_count"`
	RowCount     int      `json:"row_count"`
	Report       string   `json:"report"`
	CreatedAt    int64    `json:"created_at"`
	Saved        bool     `json:"saved"`
}

// Analyze classifies a capture and records the result in the history store.
//
// The heuristic pipeline always runs: its structured guess supplies the row
// metadata even when the AI backend provides the report body. Under
// EngineAuto any AI failure silently degrades to the heuristic report, which
// is why this operation cannot fail once its input validates.
func Analyze(ctx context.Context, database *sql.DB, cfg *config.Config, remote RemoteAnalyzer, input AnalyzeInput) (*AnalyzeOutput, error) {
	if input.CSVText == "" {
		return nil, errors.NewInvalidRequest("csv_text is required")
	}
	if chars := utf8.RuneCountInString(input.CSVText); chars > cfg.CaptureMaxChars {
		return nil, errors.NewCaptureTooLarge(cfg.CaptureMaxChars, chars)
	}

	filename := input.Filename
	if filename == "" {
		filename = "capture.csv"
	}

	engine := input.Engine
	if engine == "" {
		engine = EngineAuto
	}
	if engine != EngineAuto && engine != EngineHeuristic && engine != EngineAI {
		return nil, errors.NewInvalidRequest("engine must be one of: auto, heuristic, ai")
	}

	result := analysis.Classify(filename, input.CSVText)

	reportText := result.Report
	usedEngine := string(EngineHeuristic)

	switch engine {
	case EngineAI:
		if remote == nil || !remote.Configured() {
			return nil, errors.NewAIUnavailable(nil)
		}
		aiReport, err := remote.Analyze(ctx, filename, input.CSVText)
		if err != nil {
			return nil, errors.NewAIUnavailable(err)
		}
		reportText = aiReport
		usedEngine = string(EngineAI)
	case EngineAuto:
		if remote != nil && remote.Configured() {
			if aiReport, err := remote.Analyze(ctx, filename, input.CSVText); err == nil {
				reportText = aiReport
				usedEngine = string(EngineAI)
			}
		}
	}

	now := time.Now().Unix()

	output := &AnalyzeOutput{
		Filename:     filename,
		Format:       result.Format.Label,
		Protocol:     result.Guess.Protocol,
		Confidence:   result.Guess.Confidence,
		Engine:       usedEngine,
		PinRoles:     result.Guess.PinRoles,
		ChannelCount: len(result.Profiles),
		RowCount:     result.RowCount,
		Report:       reportText,
		CreatedAt:    now,
	}

	if input.NoSave {
		return output, nil
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	row := &db.Analysis{
		ID:           id,
		Filename:     filename,
		FormatLabel:  result.Format.Label,
		FormatType:   result.Format.Type,
		Protocol:     result.Guess.Protocol,
		Confidence:   result.Guess.Confidence,
		Engine:       usedEngine,
		PinRoles:     result.Guess.PinRoles,
		ChannelCount: len(result.Profiles),
		RowCount:     result.RowCount,
		ReportText:   reportText,
		ReportChars:  utf8.RuneCountInString(reportText),
		CreatedAt:    now,
	}

	if err := db.Insert(database, row); err != nil {
		return nil, err
	}

	output.ID = id
	output.Saved = true
	return output, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
