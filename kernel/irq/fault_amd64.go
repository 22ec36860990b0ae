package irq

import "github.com/MaciejSzybiak/first-os/kernel/kfmt"

// PageFaultErrorCode is the error code pushed by the CPU for page faults.
type PageFaultErrorCode uint64

// Page fault error code bits.
const (
	// PageFaultProtectionViolation is set if the fault was caused by a
	// protection violation; if clear, the page was not present.
	PageFaultProtectionViolation PageFaultErrorCode = 1 << iota

	// PageFaultCausedByWrite is set for write accesses.
	PageFaultCausedByWrite

	// PageFaultUserMode is set if the access originated from ring 3.
	PageFaultUserMode

	// PageFaultMalformedTable is set if a reserved bit was set in a page
	// table entry.
	PageFaultMalformedTable

	// PageFaultInstructionFetch is set if the fault was caused by an
	// instruction fetch.
	PageFaultInstructionFetch
)

var pageFaultFlagNames = [...]string{
	"PROTECTION_VIOLATION",
	"CAUSED_BY_WRITE",
	"USER_MODE",
	"MALFORMED_TABLE",
	"INSTRUCTION_FETCH",
}

// printTo prints the names of the set bits separated by " | ". A zero code
// (read from a non-present page in kernel mode) prints "(empty)".
func (c PageFaultErrorCode) printTo() {
	if c&(1<<len(pageFaultFlagNames)-1) == 0 {
		kfmt.Printf("(empty)")
		return
	}

	sep := false
	for bit, name := range pageFaultFlagNames {
		if c&(1<<bit) == 0 {
			continue
		}

		if sep {
			kfmt.Printf(" | ")
		}
		kfmt.Printf("%s", name)
		sep = true
	}
}
