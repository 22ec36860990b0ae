package kmain

import (
	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
	"github.com/MaciejSzybiak/first-os/kernel/irq"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
)

// bootConfig holds the settings parsed from the kernel command line.
type bootConfig struct {
	spuriousPolicy irq.SpuriousPolicy

	// lineMask overrides the controller masks when hasLineMask is set.
	lineMask    uint16
	hasLineMask bool

	// selfTest raises a breakpoint once interrupts are enabled.
	selfTest bool
}

func defaultBootConfig() bootConfig {
	return bootConfig{
		spuriousPolicy: irq.SpuriousCheckLpt1,
		selfTest:       true,
	}
}

// parseBootConfig reads the supported options from the kernel command line:
//
//	irq.spurious=lpt1|all
//	irq.mask=<hex>
//	int3=off
//
// Unknown options are ignored. Invalid values are reported and leave the
// default in place.
func parseBootConfig() bootConfig {
	cfg := defaultBootConfig()

	multiboot.VisitBootCmdLine(func(key, value []byte) bool {
		switch {
		case equal(key, "irq.spurious"):
			switch {
			case equal(value, "lpt1"):
				cfg.spuriousPolicy = irq.SpuriousCheckLpt1
			case equal(value, "all"):
				cfg.spuriousPolicy = irq.SpuriousCheckAll
			default:
				invalidOption(key, value)
			}
		case equal(key, "irq.mask"):
			if mask, ok := parseHex16(value); ok {
				cfg.lineMask, cfg.hasLineMask = mask, true
			} else {
				invalidOption(key, value)
			}
		case equal(key, "int3"):
			switch {
			case equal(value, "off"):
				cfg.selfTest = false
			case equal(value, "on"):
				cfg.selfTest = true
			default:
				invalidOption(key, value)
			}
		}

		return true
	})

	return cfg
}

func invalidOption(key, value []byte) {
	kfmt.Printf("[kmain] ignoring invalid value '%s' for option %s\n", value, key)
}

// equal compares b to s without converting either of them.
func equal(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}

	for i := range b {
		if b[i] != s[i] {
			return false
		}
	}

	return true
}

// parseHex16 parses a hex number with an optional 0x prefix that fits in 16
// bits.
func parseHex16(b []byte) (uint16, bool) {
	if len(b) > 2 && b[0] == '0' && (b[1] == 'x' || b[1] == 'X') {
		b = b[2:]
	}

	if len(b) == 0 || len(b) > 4 {
		return 0, false
	}

	var val uint16
	for _, ch := range b {
		var digit byte
		switch {
		case ch >= '0' && ch <= '9':
			digit = ch - '0'
		case ch >= 'a' && ch <= 'f':
			digit = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			digit = ch - 'A' + 10
		default:
			return 0, false
		}

		val = val<<4 | uint16(digit)
	}

	return val, true
}
