package analysis

import (
	"fmt"
	"strings"
	"testing"
)

// i2cCapture has SCL alternating every row (10 transitions over the window)
// and SDA changing 3 times, both with two distinct values.
func i2cCapture() string {
	rows := make([]string, 11)
	for i := range rows {
		sda := "0"
		if i >= 3 && i <= 5 {
			sda = "1"
		}
		rows[i] = fmt.Sprintf("0.%03d,%s,%s", i, alternating(i), sda)
	}
	return buildCSV("Time [s],SCL,SDA", rows)
}

func TestClassify_I2CEndToEnd(t *testing.T) {
	res := Classify("bus.csv", i2cCapture())

	if res.Guess.Protocol != "I2C" || res.Guess.Confidence != ConfidenceHigh {
		t.Errorf("got %s/%s, want I2C/High", res.Guess.Protocol, res.Guess.Confidence)
	}
	if res.Format.Label != "Saleae Logic" {
		t.Errorf("Format = %q, want Saleae Logic", res.Format.Label)
	}
	if res.RowCount != 11 {
		t.Errorf("RowCount = %d, want 11", res.RowCount)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	raw := i2cCapture()
	first := Classify("bus.csv", raw)
	second := Classify("bus.csv", raw)

	if first.Report != second.Report {
		t.Error("reports differ across identical invocations")
	}
	if first.Markdown != second.Markdown {
		t.Error("markdown renditions differ across identical invocations")
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	res := Classify("empty.csv", "")

	if len(res.Profiles) != 0 {
		t.Errorf("Profiles = %+v, want empty", res.Profiles)
	}
	if res.Guess.Protocol != "Unknown" {
		t.Errorf("Protocol = %q, want Unknown", res.Guess.Protocol)
	}
	if len(res.Guess.PinRoles) != 0 {
		t.Errorf("PinRoles = %v, want empty", res.Guess.PinRoles)
	}
	if res.Report == "" {
		t.Error("empty capture must still render a report")
	}
}

func TestRenderReport_FixedSections(t *testing.T) {
	res := Classify("bus.csv", i2cCapture())

	wantSections := []string{
		"PULSEAI DETAILED ANALYSIS REPORT",
		strings.Repeat("=", 50),
		"FILE METADATA:",
		"DETECTED PROTOCOL:",
		"PIN MAPPING ANALYSIS:",
		"SIGNAL CHARACTERISTICS:",
		"ESTIMATED DEVICES:",
		"RECOMMENDATIONS:",
	}
	for _, s := range wantSections {
		if !strings.Contains(res.Report, s) {
			t.Errorf("report missing section %q", s)
		}
	}
	if !strings.Contains(res.Report, "Protocol: I2C") {
		t.Error("report missing detected protocol line")
	}
}

func TestRenderReport_PositionalPinAssignment(t *testing.T) {
	// Roles are assigned by position, not by which channel matched which
	// characteristic: SCL is the first digital channel, so it takes the
	// first role string even though that role is labelled Data.
	res := Classify("bus.csv", i2cCapture())

	if !strings.Contains(res.Report, "SCL -> SDA (Data)") {
		t.Errorf("report missing positional pin line, got:\n%s", res.Report)
	}
	if !strings.Contains(res.Report, "SDA -> SCL (Clock)") {
		t.Errorf("report missing positional pin line, got:\n%s", res.Report)
	}
}

func TestRenderReport_FallbackRoleLabels(t *testing.T) {
	// Five digital channels classified SPI: only four role strings exist,
	// the fifth channel gets a generated label.
	profiles := []ChannelProfile{
		channel("SCK", 1, 2, 12),
		channel("MOSI", 2, 2, 3),
		channel("MISO", 3, 2, 4),
		channel("CS", 4, 1, 0),
		channel("D4", 5, 1, 0),
	}
	guess := ClassifyProtocol(profiles)
	if guess.Protocol != "SPI" {
		t.Fatalf("Protocol = %q, want SPI", guess.Protocol)
	}

	report := RenderReport("spi.csv", Capture{}, unknownFormat, profiles, guess)
	if !strings.Contains(report, "D4 -> Signal_4") {
		t.Errorf("report missing fallback role label, got:\n%s", report)
	}
}

func TestMarkdownFromReport(t *testing.T) {
	res := Classify("bus.csv", i2cCapture())

	if !strings.HasPrefix(res.Markdown, "# PULSEAI DETAILED ANALYSIS REPORT") {
		t.Error("markdown missing title")
	}
	if !strings.Contains(res.Markdown, "## DETECTED PROTOCOL") {
		t.Error("markdown missing protocol section")
	}
	if !strings.Contains(res.Markdown, "- Protocol: I2C") {
		t.Error("markdown missing protocol bullet")
	}
	if strings.Contains(res.Markdown, "====") {
		t.Error("markdown must drop the banner rule")
	}
}

func TestMarkdownFromReport_ForeignTextPassesThrough(t *testing.T) {
	// AI-produced reports do not follow the fixed layout; unrecognized
	// lines must survive conversion verbatim.
	md := MarkdownFromReport("Some free-form analysis.\nSecond line.\n")
	if !strings.Contains(md, "Some free-form analysis.") || !strings.Contains(md, "Second line.") {
		t.Errorf("foreign text mangled: %q", md)
	}
}

func TestReport_BoundaryContract(t *testing.T) {
	out := Report(i2cCapture())
	if !strings.Contains(out, "Protocol: I2C") {
		t.Errorf("Report() missing protocol, got:\n%s", out)
	}
}
