package analysis

// protocolHints is the static device/recommendation table. This is the full
// extent of device lookup: protocol label in, canned text out.
type protocolHint struct {
	Devices         string
	Recommendations []string
}

var protocolHints = map[string]protocolHint{
	"I2C": {
		Devices: "1 master + 1 or more slaves (EEPROM, sensor, RTC, IO expander)",
		Recommendations: []string{
			"Verify pull-up resistors are present on both SDA and SCL.",
			"Decode with a dedicated I2C analyzer to recover addresses and ACK bits.",
			"Common bus speeds: 100 kHz (standard), 400 kHz (fast mode).",
		},
	},
	"SPI": {
		Devices: "1 master + 1 or more slaves (flash memory, ADC/DAC, display controller)",
		Recommendations: []string{
			"Identify the chip-select line to separate transactions per slave.",
			"Confirm clock polarity and phase (SPI mode 0-3) before decoding.",
			"Check whether MISO is actively driven or floating (write-only slave).",
		},
	},
	"UART/Serial": {
		Devices: "2 endpoints (point-to-point, e.g. MCU to USB-serial bridge or GPS module)",
		Recommendations: []string{
			"Estimate the baud rate from the shortest pulse width.",
			"Common configurations: 9600/115200 baud, 8 data bits, no parity, 1 stop bit.",
			"A single captured line usually means TX-only telemetry.",
		},
	},
	"Parallel/Unknown": {
		Devices: "1 bus master + peripherals (memory-mapped device or parallel display)",
		Recommendations: []string{
			"Capture more channels: address and control lines may be missing.",
			"Look for a strobe or latch-enable line to frame bus cycles.",
		},
	},
	"Unknown": {
		Devices: "Unable to estimate from the captured channels",
		Recommendations: []string{
			"Capture a longer window with activity on the bus.",
			"Check that probe grounds are connected and channels are not floating.",
		},
	},
}

// hintsFor returns the static hint entry for a protocol, falling back to the
// Unknown entry for any unlisted label.
func hintsFor(protocol string) protocolHint {
	if h, ok := protocolHints[protocol]; ok {
		return h
	}
	return protocolHints["Unknown"]
}
