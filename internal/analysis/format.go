package analysis

import "strings"

// FormatGuess labels the capture's probable tool of origin.
type FormatGuess struct {
	Label string `json:"label"` // human-readable, e.g. "Saleae Logic"
	Type  string `json:"type"`  // machine tag, e.g. "standard"
}

// formatRule pairs a header predicate with the guess it produces.
type formatRule struct {
	match func(header string) bool
	guess FormatGuess
}

// formatRules are evaluated in order against the lower-cased joined header;
// the first match wins. The ordering is part of the contract: "time"+"channel"
// must beat the weaker single-token rules below it.
var formatRules = []formatRule{
	{
		match: func(h string) bool { return strings.Contains(h, "time") && strings.Contains(h, "channel") },
		guess: FormatGuess{Label: "Saleae Logic", Type: "standard"},
	},
	{
		match: func(h string) bool { return strings.Contains(h, "sample") || strings.Contains(h, "logic") },
		guess: FormatGuess{Label: "PulseView/Sigrok", Type: "open_source"},
	},
	{
		match: func(h string) bool { return strings.Contains(h, "timestamp") || strings.Contains(h, "state") },
		guess: FormatGuess{Label: "Digilent/WaveForms", Type: "digilent"},
	},
	{
		match: func(h string) bool { return strings.Contains(h, "tick") || strings.Contains(h, "clk") },
		guess: FormatGuess{Label: "Generic/Raw", Type: "raw"},
	},
}

// unknownFormat is the terminal guess when no rule matches.
var unknownFormat = FormatGuess{Label: "Unknown", Type: "unknown"}

// SniffFormat classifies the capture's source tool from its header tokens.
// Case folding is applied for comparison only. It always returns a guess;
// an unrecognized header degrades to Unknown.
func SniffFormat(header []string) FormatGuess {
	joined := strings.ToLower(strings.Join(header, ","))
	for _, rule := range formatRules {
		if rule.match(joined) {
			return rule.guess
		}
	}
	return unknownFormat
}
