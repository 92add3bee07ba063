package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pulseai/pulseai/internal/analysis"
	"github.com/pulseai/pulseai/internal/config"
	"github.com/pulseai/pulseai/internal/db"
	"github.com/pulseai/pulseai/internal/errors"
)

// ExportFormat selects the export file format.
type ExportFormat string

const (
	ExportText     ExportFormat = "txt" // the report document as stored
	ExportMarkdown ExportFormat = "md"  // markdown rendition
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string
	Path   string       // optional, default: ~/.pulseai/exports/<id>.<ext>
	Format ExportFormat // default: ExportText
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a stored analysis report to a file.
func Export(database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	format := input.Format
	if format == "" {
		format = ExportText
	}
	if format != ExportText && format != ExportMarkdown {
		return nil, errors.NewInvalidRequest("format must be one of: txt, md")
	}

	a, err := db.GetByID(database, id, false)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, fmt.Sprintf("%s.%s", a.ID, format))
	}

	// Validate ALL paths (both user-provided and default) for safety.
	if err := ValidateExportPath(exportPath, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	content := a.ReportText
	if format == ExportMarkdown {
		content = analysis.MarkdownFromReport(a.ReportText)
	}

	// Write to a temp file first, then atomic rename to preserve any
	// existing file on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, []byte(content), 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     string(format),
		ExportedAt: time.Now().Unix(),
	}, nil
}
