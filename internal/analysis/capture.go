package analysis

import "strings"

// Capture represents a parsed logic analyzer CSV capture.
// Header holds the first row's tokens; Rows holds the remaining sample rows.
// Rows may be ragged: no field-count invariant is enforced against the header.
type Capture struct {
	Header []string
	Rows   [][]string
}

// RowCount returns the number of data rows in the capture.
func (c Capture) RowCount() int {
	return len(c.Rows)
}

// ParseCapture splits raw CSV text into a header and data rows.
// It never fails: empty input yields a zero-value Capture, ragged rows are
// kept as-is, and quoting is handled by stripping surrounding quotes from
// header tokens only (data values are compared verbatim, so quotes there
// are harmless).
//
// encoding/csv is deliberately not used here: it rejects inconsistent field
// counts and bare quotes, while this parser must degrade on any input.
func ParseCapture(raw string) Capture {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return Capture{}
	}

	header := splitFields(lines[0])
	for i, tok := range header {
		header[i] = cleanToken(tok)
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, splitFields(line))
	}

	return Capture{Header: header, Rows: rows}
}

// splitLines splits on newlines, tolerating \r\n and dropping blank lines.
func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(p, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines
}

// splitFields splits a row on commas and trims surrounding whitespace per field.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// cleanToken strips surrounding quotes and whitespace from a header token.
func cleanToken(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, `"'`)
	return strings.TrimSpace(tok)
}
