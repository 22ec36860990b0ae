package vmm

// pageTableWalker is a function that can be passed to the walk method. The
// function receives the current page level and page table entry as its
// arguments. If the function returns false, then the page walk is aborted.
type pageTableWalker func(pteLevel uint8, pte *pageTableEntry) bool

// walk performs a page table walk for the given virtual address starting at
// the level 4 table. It calls the supplied walkFn with the page table entry
// that corresponds to each page table level. The entry is inspected only
// after walkFn returns so walkFn may install a missing next-level table
// before the walk descends into it.
func (pt *OffsetPageTable) walk(virtAddr uintptr, walkFn pageTableWalker) {
	var (
		level      uint8
		table      = pt.level4
		entryIndex uintptr
		pte        *pageTableEntry
	)

	for level = 0; level < pageLevels; level++ {
		// Extract the bits from virtual address that correspond to the
		// index in this level's page table
		entryIndex = (virtAddr >> pageLevelShifts[level]) & ((1 << pageLevelBits[level]) - 1)
		pte = &table[entryIndex]

		if !walkFn(level, pte) || level == pageLevels-1 {
			return
		}

		table = pt.tableAt(pte.Frame().Address())
	}
}
