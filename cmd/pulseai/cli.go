package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pulseai/pulseai/internal/ai"
	"github.com/pulseai/pulseai/internal/config"
	"github.com/pulseai/pulseai/internal/errors"
	"github.com/pulseai/pulseai/internal/ops"
	"github.com/pulseai/pulseai/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "pulseai",
		Usage:   "Logic analyzer capture classifier",
		Version: Version,
		Commands: []*cli.Command{
			analyzeCmd(db, cfg),
			fetchCmd(db),
			listCmd(db),
			latestCmd(db),
			deleteCmd(db),
			purgeCmd(db),
			exportCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// analyzeCmd creates the analyze command.
func analyzeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a logic analyzer CSV capture (file argument or stdin)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filename", Aliases: []string{"f"}, Usage: "Capture filename recorded with the analysis"},
			&cli.StringFlag{Name: "engine", Aliases: []string{"e"}, Value: "auto", Usage: "Report engine: auto|heuristic|ai"},
			&cli.BoolFlag{Name: "no-save", Usage: "Skip storing the result in the history"},
			&cli.BoolFlag{Name: "report", Aliases: []string{"r"}, Usage: "Print the report text instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			var (
				csvText  string
				filename string
			)

			if c.NArg() > 0 {
				path := c.Args().First()
				data, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read capture file: %v", err)))
				}
				csvText = string(data)
				filename = filepath.Base(path)
			} else {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("capture must be a file argument or piped via stdin"))
				}
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				csvText = text
			}

			if name := c.String("filename"); name != "" {
				filename = name
			}

			input := ops.AnalyzeInput{
				Filename: filename,
				CSVText:  csvText,
				Engine:   ops.Engine(c.String("engine")),
				NoSave:   c.Bool("no-save"),
			}

			output, err := ops.Analyze(c.Context, db, cfg, ai.NewClient(cfg), input)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("report") {
				fmt.Println(output.Report)
				return nil
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a stored analysis by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted analyses"},
			&cli.BoolFlag{Name: "no-report", Usage: "Exclude report_text from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			if c.Bool("no-report") {
				includeReport := false
				input.IncludeReport = &includeReport
			}

			output, err := ops.Fetch(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored analyses, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "protocol", Aliases: []string{"p"}, Usage: "Filter by detected protocol"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted analyses"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Protocol:       c.String("protocol"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.List(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the most recently stored analysis",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "report", Usage: "Include report_text in output"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted analyses"},
		},
		Action: func(c *cli.Context) error {
			input := ops.LatestInput{
				IncludeDeleted: c.Bool("include-deleted"),
			}

			if c.Bool("report") {
				includeReport := true
				input.IncludeReport = &includeReport
			}

			output, err := ops.Latest(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a stored analysis",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted analyses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a stored analysis report to a file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.pulseai/exports/<id>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "txt", Usage: "Export format: txt|md"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				ID:     c.Args().First(),
				Path:   c.String("path"),
				Format: ops.ExportFormat(c.String("format")),
			}

			output, err := ops.Export(db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command for the web UI.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8321, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, ai.NewClient(cfg), Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := err.(*errors.PulseError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
