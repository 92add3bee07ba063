package analysis

import (
	"reflect"
	"testing"
)

// channel builds a ChannelProfile with flags derived from the counts, the
// same way ProfileChannels derives them.
func channel(name string, index, distinct, transitions int) ChannelProfile {
	return ChannelProfile{
		Name:               name,
		Index:              index,
		DistinctValueCount: distinct,
		TransitionCount:    transitions,
		IsDigital:          distinct <= MaxDigitalValues,
		IsClockLike:        transitions > MinClockTransitions,
		IsDataLike:         transitions > 0 && transitions <= MaxDataTransitions,
	}
}

func TestClassifyProtocol_I2C(t *testing.T) {
	// One clock-like channel (10 transitions) and one data-like-not-clock
	// channel (3 transitions), both digital.
	guess := ClassifyProtocol([]ChannelProfile{
		channel("SCL", 1, 2, 10),
		channel("SDA", 2, 2, 3),
	})

	if guess.Protocol != "I2C" || guess.Confidence != ConfidenceHigh {
		t.Errorf("got %s/%s, want I2C/High", guess.Protocol, guess.Confidence)
	}
	want := []string{"SDA (Data)", "SCL (Clock)"}
	if !reflect.DeepEqual(guess.PinRoles, want) {
		t.Errorf("PinRoles = %v, want %v", guess.PinRoles, want)
	}
}

func TestClassifyProtocol_I2CBeforeUART(t *testing.T) {
	// Two digital channels always satisfy the UART rule; the I2C rule must
	// be evaluated first when the clock/data shape is present.
	guess := ClassifyProtocol([]ChannelProfile{
		channel("A", 0, 2, 8),
		channel("B", 1, 2, 2),
	})
	if guess.Protocol != "I2C" {
		t.Errorf("Protocol = %q, want I2C (rule order)", guess.Protocol)
	}
}

func TestClassifyProtocol_SPI(t *testing.T) {
	// Four digital channels: one clock-like, exactly two data-like.
	guess := ClassifyProtocol([]ChannelProfile{
		channel("SCK", 1, 2, 12),
		channel("MOSI", 2, 2, 3),
		channel("MISO", 3, 2, 4),
		channel("CS", 4, 1, 0),
	})

	if guess.Protocol != "SPI" || guess.Confidence != ConfidenceHigh {
		t.Errorf("got %s/%s, want SPI/High", guess.Protocol, guess.Confidence)
	}
	want := []string{"MOSI", "MISO", "SCK", "CS/SS"}
	if !reflect.DeepEqual(guess.PinRoles, want) {
		t.Errorf("PinRoles = %v, want %v", guess.PinRoles, want)
	}
}

func TestClassifyProtocol_UARTSingleChannel(t *testing.T) {
	guess := ClassifyProtocol([]ChannelProfile{
		channel("TX", 1, 2, 0),
	})

	if guess.Protocol != "UART/Serial" || guess.Confidence != ConfidenceMedium {
		t.Errorf("got %s/%s, want UART/Serial/Medium", guess.Protocol, guess.Confidence)
	}
}

func TestClassifyProtocol_TwoQuietChannelsAreUART(t *testing.T) {
	// Two digital channels without the clock/data shape fall through to UART.
	guess := ClassifyProtocol([]ChannelProfile{
		channel("A", 0, 1, 0),
		channel("B", 1, 1, 0),
	})
	if guess.Protocol != "UART/Serial" {
		t.Errorf("Protocol = %q, want UART/Serial", guess.Protocol)
	}
}

func TestClassifyProtocol_ParallelBus(t *testing.T) {
	// Nine quiet digital channels: rules 1-3 miss, wide-bus rule matches.
	channels := make([]ChannelProfile, 9)
	for i := range channels {
		channels[i] = channel("D", i, 1, 0)
	}

	guess := ClassifyProtocol(channels)
	if guess.Protocol != "Parallel/Unknown" || guess.Confidence != ConfidenceLow {
		t.Errorf("got %s/%s, want Parallel/Unknown/Low", guess.Protocol, guess.Confidence)
	}
	if len(guess.PinRoles) != 9 || guess.PinRoles[0] != "Data_0" || guess.PinRoles[8] != "Data_8" {
		t.Errorf("PinRoles = %v, want Data_0..Data_8", guess.PinRoles)
	}
}

func TestClassifyProtocol_MidSizeNoPatternIsUnknown(t *testing.T) {
	// Six quiet digital channels: too many for UART, too few for Parallel,
	// no SPI shape. Terminal Unknown with synthesized Channel_N roles.
	channels := make([]ChannelProfile, 6)
	for i := range channels {
		channels[i] = channel("D", i, 1, 0)
	}

	guess := ClassifyProtocol(channels)
	if guess.Protocol != "Unknown" || guess.Confidence != ConfidenceLow {
		t.Errorf("got %s/%s, want Unknown/Low", guess.Protocol, guess.Confidence)
	}
	if len(guess.PinRoles) != 6 || guess.PinRoles[5] != "Channel_5" {
		t.Errorf("PinRoles = %v, want Channel_0..Channel_5", guess.PinRoles)
	}
}

func TestClassifyProtocol_NoDigitalChannels(t *testing.T) {
	guess := ClassifyProtocol([]ChannelProfile{
		channel("VOUT", 1, 18, 15), // analog-looking, ignored
	})

	if guess.Protocol != "Unknown" {
		t.Errorf("Protocol = %q, want Unknown", guess.Protocol)
	}
	if len(guess.PinRoles) != 0 {
		t.Errorf("PinRoles = %v, want empty", guess.PinRoles)
	}
}

func TestClassifyProtocol_NonDigitalIgnoredForSPI(t *testing.T) {
	// An analog channel alongside an SPI-shaped digital set must not shift
	// the digital count out of the 3-5 band.
	guess := ClassifyProtocol([]ChannelProfile{
		channel("VREF", 0, 20, 19),
		channel("SCK", 1, 2, 12),
		channel("MOSI", 2, 2, 3),
		channel("MISO", 3, 2, 4),
		channel("CS", 4, 1, 0),
	})
	if guess.Protocol != "SPI" {
		t.Errorf("Protocol = %q, want SPI", guess.Protocol)
	}
}
