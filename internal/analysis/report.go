package analysis

import (
	"fmt"
	"strings"
)

// reportTitle and reportRule form the fixed report banner. The section names
// below are part of the external contract: callers (and older tooling) key
// off these exact strings.
const (
	reportTitle = "PULSEAI DETAILED ANALYSIS REPORT"
	ruleWidth   = 50
)

// section is one titled block of the report. Building sections once lets the
// text and markdown renderers share content without drifting apart.
type section struct {
	Title string
	Lines []string
}

// buildSections assembles the report body. Output is fully determined by the
// inputs: no timestamps, no randomness. Callers that want a generation time
// in their copy add it themselves.
func buildSections(filename string, c Capture, fg FormatGuess, profiles []ChannelProfile, guess ProtocolGuess) []section {
	digital := digitalChannels(profiles)
	hint := hintsFor(guess.Protocol)

	meta := []string{
		fmt.Sprintf("File: %s", filename),
		fmt.Sprintf("Detected Format: %s (%s)", fg.Label, fg.Type),
		fmt.Sprintf("Data Rows: %d", c.RowCount()),
		fmt.Sprintf("Channels Profiled: %d", len(profiles)),
	}

	detected := []string{
		fmt.Sprintf("Protocol: %s", guess.Protocol),
		fmt.Sprintf("Confidence: %s", guess.Confidence),
	}

	// Positional assignment: the i-th digital channel takes the i-th role,
	// falling back to a generated label when roles run out. Which channel
	// actually exhibited the matched characteristic is not consulted.
	pins := make([]string, 0, len(digital))
	for i, ch := range digital {
		role := fmt.Sprintf("Signal_%d", i)
		if i < len(guess.PinRoles) {
			role = guess.PinRoles[i]
		}
		pins = append(pins, fmt.Sprintf("%s -> %s", ch.Name, role))
	}
	if len(pins) == 0 {
		pins = []string{"No digital channels identified"}
	}

	chars := make([]string, 0, len(profiles))
	for _, ch := range profiles {
		chars = append(chars, fmt.Sprintf(
			"%s: %d distinct values, %d transitions%s",
			ch.Name, ch.DistinctValueCount, ch.TransitionCount, flagSuffix(ch),
		))
	}
	if len(chars) == 0 {
		chars = []string{"No channels found in capture"}
	}

	return []section{
		{Title: "FILE METADATA", Lines: meta},
		{Title: "DETECTED PROTOCOL", Lines: detected},
		{Title: "PIN MAPPING ANALYSIS", Lines: pins},
		{Title: "SIGNAL CHARACTERISTICS", Lines: chars},
		{Title: "ESTIMATED DEVICES", Lines: []string{hint.Devices}},
		{Title: "RECOMMENDATIONS", Lines: hint.Recommendations},
	}
}

// flagSuffix summarizes a channel's derived flags for the report.
func flagSuffix(ch ChannelProfile) string {
	flags := make([]string, 0, 3)
	if ch.IsDigital {
		flags = append(flags, "digital")
	}
	if ch.IsClockLike {
		flags = append(flags, "clock-like")
	}
	if ch.IsDataLike {
		flags = append(flags, "data-like")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}

// RenderReport formats the analysis into the fixed-section text report.
func RenderReport(filename string, c Capture, fg FormatGuess, profiles []ChannelProfile, guess ProtocolGuess) string {
	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	for _, s := range buildSections(filename, c, fg, profiles, guess) {
		b.WriteString(s.Title + ":\n")
		for _, line := range s.Lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// MarkdownFromReport mechanically converts a report document to markdown for
// export and the web detail view. It works on stored text so it applies to
// AI-produced reports too: the title becomes an h1, section labels become
// h2s, detail lines become bullets, and anything unrecognized passes through
// verbatim.
func MarkdownFromReport(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case line == reportTitle:
			b.WriteString("# " + line + "\n")
		case isRuleLine(line):
			// drop the banner rule, markdown has its own structure
		case isSectionLabel(line):
			b.WriteString("\n## " + strings.TrimSuffix(line, ":") + "\n\n")
		case strings.HasPrefix(line, "  "):
			b.WriteString("- " + strings.TrimSpace(line) + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// isRuleLine reports whether the line is a banner rule of = characters.
func isRuleLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "=") == ""
}

// isSectionLabel matches unindented upper-case "SECTION NAME:" lines.
func isSectionLabel(line string) bool {
	if !strings.HasSuffix(line, ":") || strings.HasPrefix(line, " ") {
		return false
	}
	name := strings.TrimSuffix(line, ":")
	return name != "" && name == strings.ToUpper(name)
}
