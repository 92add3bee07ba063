package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pulseai/pulseai/internal/config"
	"github.com/pulseai/pulseai/internal/db"
	"github.com/pulseai/pulseai/internal/ops"
)

const i2cCSV = `Time [s],SCL,SDA
0.000,0,0
0.001,1,0
0.002,0,0
0.003,1,1
0.004,0,1
0.005,1,1
0.006,0,0
0.007,1,0
0.008,0,0
0.009,1,0
0.010,0,0
`

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a default config for testing, with unsafe export paths
// allowed so tests can write into t.TempDir().
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

// runApp runs the CLI app with the given args and captures stdout.
func runApp(t *testing.T, database *sql.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	app := newCLIApp(database, cfg)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"pulseai"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// seedAnalysis stores an analysis directly via ops and returns its ID.
func seedAnalysis(t *testing.T, database *sql.DB, cfg *config.Config) string {
	t.Helper()
	out, err := ops.Analyze(context.Background(), database, cfg, nil, ops.AnalyzeInput{
		Filename: "seed.csv",
		CSVText:  i2cCSV,
	})
	if err != nil {
		t.Fatalf("failed to seed analysis: %v", err)
	}
	return out.ID
}

// TestCLIAnalyzeFromFile tests the analyze command with a file argument.
func TestCLIAnalyzeFromFile(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	capturePath := filepath.Join(t.TempDir(), "i2c-trace.csv")
	if err := os.WriteFile(capturePath, []byte(i2cCSV), 0600); err != nil {
		t.Fatalf("failed to write capture file: %v", err)
	}

	stdout, err := runApp(t, database, cfg, "analyze", capturePath)
	if err != nil {
		t.Fatalf("analyze command failed: %v", err)
	}

	var output ops.AnalyzeOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}

	if output.ID == "" {
		t.Error("expected non-empty ID")
	}
	if output.Filename != "i2c-trace.csv" {
		t.Errorf("expected filename=i2c-trace.csv, got %s", output.Filename)
	}
	if output.Protocol != "I2C" {
		t.Errorf("expected protocol=I2C, got %s", output.Protocol)
	}
	if output.Engine != "heuristic" {
		t.Errorf("expected engine=heuristic, got %s", output.Engine)
	}
}

// TestCLIAnalyzeFromStdin tests the analyze command with piped input.
func TestCLIAnalyzeFromStdin(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR

	go func() {
		_, _ = stdinW.WriteString(i2cCSV)
		stdinW.Close()
	}()

	err := app.Run([]string{"pulseai", "analyze", "--filename=piped.csv", "--no-save"})

	os.Stdin = oldStdin

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("analyze command failed: %v", err)
	}

	var output ops.AnalyzeOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, buf.String())
	}

	if output.ID != "" {
		t.Error("expected empty ID with --no-save")
	}
	if output.Saved {
		t.Error("expected saved=false with --no-save")
	}
	if output.Filename != "piped.csv" {
		t.Errorf("expected filename=piped.csv, got %s", output.Filename)
	}
	if output.Protocol != "I2C" {
		t.Errorf("expected protocol=I2C, got %s", output.Protocol)
	}
}

// TestCLIFetch tests the fetch command.
func TestCLIFetch(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	id := seedAnalysis(t, database, cfg)

	stdout, err := runApp(t, database, cfg, "fetch", id)
	if err != nil {
		t.Fatalf("fetch command failed: %v", err)
	}

	var output ops.FetchOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.ID != id {
		t.Errorf("expected ID=%s, got %s", id, output.ID)
	}
	if output.ReportText == "" {
		t.Error("expected report_text in fetch output")
	}
}

// TestCLIFetchNoReport tests the fetch command with --no-report.
func TestCLIFetchNoReport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	id := seedAnalysis(t, database, cfg)

	stdout, err := runApp(t, database, cfg, "fetch", "--no-report", id)
	if err != nil {
		t.Fatalf("fetch command failed: %v", err)
	}

	var output ops.FetchOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.ReportText != "" {
		t.Error("expected empty report_text with --no-report")
	}
}

// TestCLIList tests the list command.
func TestCLIList(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	for range 3 {
		seedAnalysis(t, database, cfg)
	}

	stdout, err := runApp(t, database, cfg, "list")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	var output ops.ListOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(output.Items))
	}
	if output.Pagination.Total != 3 {
		t.Errorf("expected total=3, got %d", output.Pagination.Total)
	}
}

// TestCLIListProtocolFilter tests the list command with a protocol filter.
func TestCLIListProtocolFilter(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	seedAnalysis(t, database, cfg)

	stdout, err := runApp(t, database, cfg, "list", "--protocol=SPI")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	var output ops.ListOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 0 {
		t.Errorf("expected 0 items for SPI filter, got %d", len(output.Items))
	}
}

// TestCLILatest tests the latest command.
func TestCLILatest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	seedAnalysis(t, database, cfg)

	stdout, err := runApp(t, database, cfg, "latest")
	if err != nil {
		t.Fatalf("latest command failed: %v", err)
	}

	var output ops.LatestOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Item == nil {
		t.Fatal("expected non-nil item")
	}
	if output.Item.Filename != "seed.csv" {
		t.Errorf("expected filename=seed.csv, got %s", output.Item.Filename)
	}
}

// TestCLIDelete tests the delete command.
func TestCLIDelete(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	id := seedAnalysis(t, database, cfg)

	stdout, err := runApp(t, database, cfg, "delete", id)
	if err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	var output ops.DeleteOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if !output.Deleted {
		t.Error("expected deleted=true")
	}
	if output.ID != id {
		t.Errorf("expected ID=%s, got %s", id, output.ID)
	}
}

// TestCLIPurge tests the purge command.
func TestCLIPurge(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	id := seedAnalysis(t, database, cfg)
	if _, err := ops.Delete(database, ops.DeleteInput{ID: id}); err != nil {
		t.Fatalf("failed to delete seed analysis: %v", err)
	}

	stdout, err := runApp(t, database, cfg, "purge")
	if err != nil {
		t.Fatalf("purge command failed: %v", err)
	}

	var output ops.PurgeOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Purged != 1 {
		t.Errorf("expected purged=1, got %d", output.Purged)
	}
}

// TestCLIExport tests the export command.
func TestCLIExport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	id := seedAnalysis(t, database, cfg)
	exportPath := filepath.Join(t.TempDir(), "report.md")

	stdout, err := runApp(t, database, cfg, "export", "--path="+exportPath, "--format=md", id)
	if err != nil {
		t.Fatalf("export command failed: %v", err)
	}

	var output ops.ExportOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Path != exportPath {
		t.Errorf("expected path=%s, got %s", exportPath, output.Path)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	if !bytes.Contains(data, []byte("# PULSEAI DETAILED ANALYSIS REPORT")) {
		t.Error("expected markdown title in export file")
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	app := newCLIApp(database, cfg)

	t.Run("fetch not found returns error", func(t *testing.T) {
		err := app.Run([]string{"pulseai", "fetch", "NONEXISTENT"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("delete not found returns error", func(t *testing.T) {
		err := app.Run([]string{"pulseai", "delete", "NONEXISTENT"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("invalid duration format returns error", func(t *testing.T) {
		err := app.Run([]string{"pulseai", "purge", "--older-than=invalid"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("invalid engine returns error", func(t *testing.T) {
		capturePath := filepath.Join(t.TempDir(), "bad-engine.csv")
		if err := os.WriteFile(capturePath, []byte(i2cCSV), 0600); err != nil {
			t.Fatalf("failed to write capture file: %v", err)
		}
		err := app.Run([]string{"pulseai", "analyze", "--engine=bogus", capturePath})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestParseDuration tests the parseDuration helper function.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{
			name:     "valid days",
			input:    "7d",
			expected: 7,
		},
		{
			name:     "zero days",
			input:    "0d",
			expected: 0,
		},
		{
			name:        "negative days",
			input:       "-7d",
			expectError: true,
		},
		{
			name:        "no suffix",
			input:       "7",
			expectError: true,
		},
		{
			name:        "wrong suffix",
			input:       "7h",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"pulseai"},
			expected: false,
		},
		{
			name:     "analyze command",
			args:     []string{"pulseai", "analyze"},
			expected: true,
		},
		{
			name:     "serve command",
			args:     []string{"pulseai", "serve"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"pulseai", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"pulseai", "--version"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"pulseai", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"pulseai"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"pulseai", "--help"},
			expected: true,
		},
		{
			name:     "help subcommand",
			args:     []string{"pulseai", "help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"pulseai", "--version"},
			expected: true,
		},
		{
			name:     "analyze command is not help",
			args:     []string{"pulseai", "analyze"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
