package cpu

import (
	"testing"
	"unsafe"
)

func TestDescriptorTablePointerLayout(t *testing.T) {
	var p DescriptorTablePointer
	p.Set(0xffff800000123000, 256*16)

	if exp, got := uint16(4095), p.Limit(); got != exp {
		t.Errorf("expected limit to be %d; got %d", exp, got)
	}

	if exp, got := uintptr(0xffff800000123000), p.Base(); got != exp {
		t.Errorf("expected base to be 0x%x; got 0x%x", exp, got)
	}

	// LGDT/LIDT read the limit and the base from 10 consecutive bytes
	if got := unsafe.Offsetof(p.base) - unsafe.Offsetof(p.limit); got != 2 {
		t.Fatalf("expected base to immediately follow limit; got a %d byte gap", got)
	}

	if exp, got := uintptr(unsafe.Pointer(&p))+6, p.Addr(); got != exp {
		t.Fatalf("expected Addr() to return 0x%x; got 0x%x", exp, got)
	}
}
