package analysis

import "fmt"

// Confidence tiers for a protocol guess.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// ProtocolGuess is the classifier's best-effort protocol label.
// PinRoles is ordered; the i-th digital channel takes the i-th role.
type ProtocolGuess struct {
	Protocol   string   `json:"protocol"`
	Confidence string   `json:"confidence"`
	PinRoles   []string `json:"pin_roles"`
}

// protocolRule pairs a predicate over the digital channel set with the guess
// it produces. Rules are evaluated in declaration order, first match wins.
type protocolRule struct {
	match func(digital []ChannelProfile) bool
	guess func(digital []ChannelProfile) ProtocolGuess
}

// protocolRules encode the heuristic decision chain. Ordering matters: the
// two-channel I2C rule must be tried before the generic UART rule, which also
// accepts two channels.
var protocolRules = []protocolRule{
	{
		// Two digital lines, one toggling like a clock and a different one
		// carrying occasional data transitions.
		match: func(digital []ChannelProfile) bool {
			if len(digital) != 2 {
				return false
			}
			return hasClockAndSeparateData(digital)
		},
		guess: func([]ChannelProfile) ProtocolGuess {
			return ProtocolGuess{
				Protocol:   "I2C",
				Confidence: ConfidenceHigh,
				PinRoles:   []string{"SDA (Data)", "SCL (Clock)"},
			}
		},
	},
	{
		// 3-5 digital lines with at least one clock and two data candidates.
		match: func(digital []ChannelProfile) bool {
			if len(digital) < 3 || len(digital) > 5 {
				return false
			}
			return countClockLike(digital) >= 1 && countDataLike(digital) >= 2
		},
		guess: func([]ChannelProfile) ProtocolGuess {
			return ProtocolGuess{
				Protocol:   "SPI",
				Confidence: ConfidenceHigh,
				PinRoles:   []string{"MOSI", "MISO", "SCK", "CS/SS"},
			}
		},
	},
	{
		// One or two digital lines without the I2C shape above.
		match: func(digital []ChannelProfile) bool {
			return len(digital) == 1 || len(digital) == 2
		},
		guess: func([]ChannelProfile) ProtocolGuess {
			return ProtocolGuess{
				Protocol:   "UART/Serial",
				Confidence: ConfidenceMedium,
				PinRoles:   []string{"TX", "RX"},
			}
		},
	},
	{
		// Wide bus with no recognizable serial pattern.
		match: func(digital []ChannelProfile) bool {
			return len(digital) > 8
		},
		guess: func(digital []ChannelProfile) ProtocolGuess {
			return ProtocolGuess{
				Protocol:   "Parallel/Unknown",
				Confidence: ConfidenceLow,
				PinRoles:   synthesizeRoles("Data", len(digital)),
			}
		},
	},
}

// unknownGuess is the terminal classification when no rule matches.
func unknownGuess(digital []ChannelProfile) ProtocolGuess {
	return ProtocolGuess{
		Protocol:   "Unknown",
		Confidence: ConfidenceLow,
		PinRoles:   synthesizeRoles("Channel", len(digital)),
	}
}

// ClassifyProtocol applies the heuristic rule chain to the digital subset of
// the given channel profiles. Non-digital channels are ignored entirely for
// protocol inference; a capture of only analog-looking channels degrades to
// Unknown. It never fails.
func ClassifyProtocol(channels []ChannelProfile) ProtocolGuess {
	digital := digitalChannels(channels)

	for _, rule := range protocolRules {
		if rule.match(digital) {
			return rule.guess(digital)
		}
	}
	return unknownGuess(digital)
}

// digitalChannels filters profiles down to those flagged digital.
func digitalChannels(channels []ChannelProfile) []ChannelProfile {
	digital := make([]ChannelProfile, 0, len(channels))
	for _, ch := range channels {
		if ch.IsDigital {
			digital = append(digital, ch)
		}
	}
	return digital
}

// hasClockAndSeparateData reports whether the set contains a clock-like
// channel and a different channel that is data-like but not clock-like.
func hasClockAndSeparateData(digital []ChannelProfile) bool {
	for i, clk := range digital {
		if !clk.IsClockLike {
			continue
		}
		for j, dat := range digital {
			if i == j {
				continue
			}
			if dat.IsDataLike && !dat.IsClockLike {
				return true
			}
		}
	}
	return false
}

func countClockLike(digital []ChannelProfile) int {
	n := 0
	for _, ch := range digital {
		if ch.IsClockLike {
			n++
		}
	}
	return n
}

func countDataLike(digital []ChannelProfile) int {
	n := 0
	for _, ch := range digital {
		if ch.IsDataLike {
			n++
		}
	}
	return n
}

// synthesizeRoles generates prefix_0..prefix_{n-1} fallback role labels.
func synthesizeRoles(prefix string, n int) []string {
	roles := make([]string, n)
	for i := range roles {
		roles[i] = fmt.Sprintf("%s_%d", prefix, i)
	}
	return roles
}
