package analysis

import "strings"

// Classification thresholds. These are fixed policy, not configuration:
// downstream report output must stay byte-stable across releases, so the
// values live in one block that tests assert on directly.
const (
	// ProfileWindow bounds how many data rows are examined per channel.
	// Profiling stays O(1) in capture size regardless of file length.
	ProfileWindow = 20

	// MaxDigitalValues is the largest distinct-value count a channel can
	// have and still be considered a digital signal.
	MaxDigitalValues = 4

	// MinClockTransitions is the exclusive lower bound on transitions for
	// a channel to look clock-like.
	MinClockTransitions = 5

	// MaxDataTransitions is the inclusive upper bound on transitions for
	// a channel to look data-like.
	MaxDataTransitions = 10

	// missingValue substitutes for fields absent from ragged rows.
	missingValue = "0"
)

// ChannelProfile is the statistical fingerprint of one capture column,
// computed over the first ProfileWindow rows. Immutable once built.
type ChannelProfile struct {
	Name               string `json:"name"`
	Index              int    `json:"index"` // position in the header
	DistinctValueCount int    `json:"distinct_value_count"`
	TransitionCount    int    `json:"transition_count"`
	IsDigital          bool   `json:"is_digital"`
	IsClockLike        bool   `json:"is_clock_like"`
	IsDataLike         bool   `json:"is_data_like"`
}

// ProfileChannels fingerprints every channel column of a capture.
//
// The first column is skipped only when its header token contains "time" or
// "sample" (case-folded). A first column named, say, "D0" is profiled like any
// other channel. The asymmetry is deliberate: report output depends on it, so
// it must not be normalized to "always skip column 0".
//
// An empty capture yields an empty profile list; ragged rows contribute "0"
// for missing fields. No input can make this fail.
func ProfileChannels(header []string, rows [][]string) []ChannelProfile {
	if len(header) == 0 {
		return nil
	}

	start := 0
	first := strings.ToLower(header[0])
	if strings.Contains(first, "time") || strings.Contains(first, "sample") {
		start = 1
	}

	window := min(ProfileWindow, len(rows))

	profiles := make([]ChannelProfile, 0, len(header)-start)
	for col := start; col < len(header); col++ {
		values := columnWindow(rows, col, window)
		distinct := distinctCount(values)
		transitions := transitionCount(values)

		profiles = append(profiles, ChannelProfile{
			Name:               cleanToken(header[col]),
			Index:              col,
			DistinctValueCount: distinct,
			TransitionCount:    transitions,
			IsDigital:          distinct <= MaxDigitalValues,
			IsClockLike:        transitions > MinClockTransitions,
			IsDataLike:         transitions > 0 && transitions <= MaxDataTransitions,
		})
	}

	return profiles
}

// columnWindow extracts one column's values across the first window rows.
func columnWindow(rows [][]string, col, window int) []string {
	values := make([]string, 0, window)
	for i := 0; i < window; i++ {
		if col < len(rows[i]) {
			values = append(values, rows[i][col])
		} else {
			values = append(values, missingValue)
		}
	}
	return values
}

// distinctCount returns the size of the set of observed values.
func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// transitionCount counts adjacent-pair value changes.
func transitionCount(values []string) int {
	count := 0
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			count++
		}
	}
	return count
}
