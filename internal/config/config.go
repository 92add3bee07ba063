package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAITimeoutSeconds bounds the remote analysis call when the config
// does not override it. The heuristic fallback makes a short timeout safe.
const DefaultAITimeoutSeconds = 30

// Config holds application configuration.
type Config struct {
	// CaptureMaxChars is the maximum character count for uploaded CSV text.
	CaptureMaxChars int `json:"capture_max_chars"`

	// AIEndpoint is the remote analysis API URL. Empty disables the AI path
	// entirely; every analysis then uses the heuristic pipeline.
	AIEndpoint string `json:"ai_endpoint,omitempty"`

	// AIModel names the model requested from the remote endpoint.
	AIModel string `json:"ai_model,omitempty"`

	// AITimeoutSeconds bounds the remote analysis HTTP call.
	AITimeoutSeconds int `json:"ai_timeout_seconds,omitempty"`

	// AllowedExportPaths is an allowlist of directories for export.
	// Paths outside ~/.pulseai/exports require either being in this list
	// or AllowUnsafePaths=true. Relative paths are ignored.
	AllowedExportPaths []string `json:"allowed_export_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	// When true, any directory is allowed (symlink checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CaptureMaxChars:  2_000_000,
		AITimeoutSeconds: DefaultAITimeoutSeconds,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pulseai.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo loads configuration from both global (~/.pulseai) and repo
// (.pulseai) directories. Repo config is found by walking upward from
// startDir to find the nearest .pulseai/config.json. Repo config takes
// precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .pulseai/config.json. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".pulseai", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.CaptureMaxChars = overlay.CaptureMaxChars
	if result.CaptureMaxChars == 0 {
		result.CaptureMaxChars = base.CaptureMaxChars
	}

	result.AIEndpoint = overlay.AIEndpoint
	if result.AIEndpoint == "" {
		result.AIEndpoint = base.AIEndpoint
	}

	result.AIModel = overlay.AIModel
	if result.AIModel == "" {
		result.AIModel = base.AIModel
	}

	result.AITimeoutSeconds = overlay.AITimeoutSeconds
	if result.AITimeoutSeconds == 0 {
		result.AITimeoutSeconds = base.AITimeoutSeconds
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedExportPaths = mergeStringSlice(base.AllowedExportPaths, overlay.AllowedExportPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
