package vmm

import "github.com/MaciejSzybiak/first-os/kernel"

var (
	// ErrInvalidMapping is returned when trying to lookup a virtual memory address that is not yet mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}
)

// Translate returns the physical address that corresponds to the supplied
// virtual address or ErrInvalidMapping if the virtual address does not
// correspond to a mapped physical address. Huge 1G and 2M pages installed by
// the boot loader are resolved too.
func (pt *OffsetPageTable) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	var (
		physAddr uintptr
		err      = ErrInvalidMapping
	)

	pt.walk(virtAddr, func(pteLevel uint8, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			return false
		}

		// A huge page maps every address bit below this level's shift
		if pteLevel == pageLevels-1 || (pteLevel > 0 && pte.HasFlags(FlagHugePage)) {
			offsetMask := uintptr(1)<<pageLevelShifts[pteLevel] - 1
			physAddr = (pte.Frame().Address() &^ offsetMask) + (virtAddr & offsetMask)
			err = nil
			return false
		}

		return true
	})

	if err != nil {
		return 0, err
	}

	return physAddr, nil
}
