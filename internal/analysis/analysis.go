// Package analysis implements the heuristic signal classification pipeline:
// CSV capture text in, protocol guess and rendered report out.
//
// Everything in this package is pure and synchronous. No stage can fail:
// malformed input degrades to zero values and Unknown classifications, which
// is what lets callers use the pipeline unconditionally as a fallback when a
// remote analysis backend is unavailable. It is safe to call concurrently
// for independent captures.
package analysis

// Result bundles the outputs of all pipeline stages for one capture.
type Result struct {
	Filename string           `json:"filename"`
	Format   FormatGuess      `json:"format"`
	Profiles []ChannelProfile `json:"profiles"`
	Guess    ProtocolGuess    `json:"guess"`
	RowCount int              `json:"row_count"`
	Report   string           `json:"report"`
	Markdown string           `json:"-"`
}

// Classify runs the full pipeline over raw CSV text: parse, sniff the source
// format, profile each channel, classify the protocol, render the report.
// Classifying the same text twice yields byte-identical results.
func Classify(filename, raw string) Result {
	capture := ParseCapture(raw)
	format := SniffFormat(capture.Header)
	profiles := ProfileChannels(capture.Header, capture.Rows)
	guess := ClassifyProtocol(profiles)
	report := RenderReport(filename, capture, format, profiles, guess)

	return Result{
		Filename: filename,
		Format:   format,
		Profiles: profiles,
		Guess:    guess,
		RowCount: capture.RowCount(),
		Report:   report,
		Markdown: MarkdownFromReport(report),
	}
}

// Report is the minimal boundary contract: CSV text in, report text out.
func Report(raw string) string {
	return Classify("capture.csv", raw).Report
}
