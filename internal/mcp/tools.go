package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Descriptions are user-facing: MCP clients surface them
// when deciding which tool to call.

var runToolDef = mcp.NewTool("analysis_run",
	mcp.WithDescription("Analyze a logic analyzer CSV capture: detect the source tool, profile each channel, and guess the communication protocol. Returns the rendered report and stores it in the history."),
	mcp.WithString("csv_text", mcp.Required(), mcp.Description("Raw CSV capture text (header row plus sample rows)")),
	mcp.WithString("filename", mcp.Description("Original capture filename (default: capture.csv)")),
	mcp.WithString("engine", mcp.Description("Report source: auto (default), heuristic, or ai")),
	mcp.WithBoolean("no_save", mcp.Description("Skip storing the result in the history")),
)

var fetchToolDef = mcp.NewTool("analysis_fetch",
	mcp.WithDescription("Fetch a stored analysis by ID, including its report text."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Analysis ULID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted analyses")),
	mcp.WithBoolean("include_report", mcp.Description("Include report text (default: true)")),
)

var listToolDef = mcp.NewTool("analysis_list",
	mcp.WithDescription("List stored analyses, newest first, with pagination and an optional protocol filter."),
	mcp.WithString("protocol", mcp.Description("Filter by detected protocol, e.g. I2C, SPI, UART/Serial")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted analyses")),
)

var latestToolDef = mcp.NewTool("analysis_latest",
	mcp.WithDescription("Fetch the most recently stored analysis."),
	mcp.WithBoolean("include_report", mcp.Description("Include report text (default: false)")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted analyses")),
)

var deleteToolDef = mcp.NewTool("analysis_delete",
	mcp.WithDescription("Soft-delete a stored analysis by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Analysis ULID")),
)

var purgeToolDef = mcp.NewTool("analysis_purge",
	mcp.WithDescription("Permanently delete soft-deleted analyses."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge analyses deleted more than N days ago")),
)
