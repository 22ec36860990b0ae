package console

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/MaciejSzybiak/first-os/device"
	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
)

// newTestConsole returns a console whose framebuffer is backed by a Go slice.
func newTestConsole(t *testing.T, columns, rows uint32) (*VgaTextConsole, []uint16) {
	fb := make([]uint16, columns*rows)
	cons := NewVgaTextConsole(columns, rows, uintptr(unsafe.Pointer(&fb[0])), 0)
	if err := cons.DriverInit(&bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	return cons, fb
}

func TestAttr(t *testing.T) {
	specs := []struct {
		fg, bg Color
		exp    Attr
	}{
		{LightGray, Black, 0x07},
		{White, Blue, 0x1f},
		{Yellow, Red, 0x4e},
		// out of range colors are truncated to 4 bits
		{Color(0x1a), Color(0x12), 0x2a},
	}

	for specIndex, spec := range specs {
		attr := MakeAttr(spec.fg, spec.bg)
		if attr != spec.exp {
			t.Errorf("[spec %d] expected attr 0x%x; got 0x%x", specIndex, spec.exp, attr)
			continue
		}

		if got := attr.Foreground(); got != spec.fg&0xf {
			t.Errorf("[spec %d] expected fg %d; got %d", specIndex, spec.fg&0xf, got)
		}

		if got := attr.Background(); got != spec.bg&0xf {
			t.Errorf("[spec %d] expected bg %d; got %d", specIndex, spec.bg&0xf, got)
		}
	}
}

func TestVgaTextDimensions(t *testing.T) {
	var cons Device = NewVgaTextConsole(40, 50, 0, 0)
	if w, h := cons.Dimensions(); w != 40 || h != 50 {
		t.Fatalf("expected console dimensions to be 40x50; got %dx%d", w, h)
	}

	if attr := cons.DefaultAttr(); attr != MakeAttr(LightGray, Black) {
		t.Fatalf("expected default attr to be light gray on black; got 0x%x", attr)
	}
}

func TestVgaTextFill(t *testing.T) {
	specs := []struct {
		// Input rect
		x, y, w, h uint32

		// Expected area to be cleared
		expStartX, expStartY, expEndX, expEndY uint32
	}{
		{0, 0, 500, 500, 1, 1, 80, 25},
		{10, 10, 11, 50, 10, 10, 20, 25},
		{10, 10, 110, 1, 10, 10, 80, 10},
		{90, 30, 20, 20, 80, 25, 80, 25},
		{12, 12, 5, 6, 12, 12, 16, 17},
		{80, 25, 1, 1, 80, 25, 80, 25},
	}

	cons, fb := newTestConsole(t, 80, 25)
	testPat := uint16(0xdead)
	attr := MakeAttr(White, Blue)
	clearPat := uint16(attr)<<8 | ' '

nextSpec:
	for specIndex, spec := range specs {
		for i := range fb {
			fb[i] = testPat
		}

		cons.Fill(spec.x, spec.y, spec.w, spec.h, attr)

		for y := uint32(1); y <= 25; y++ {
			for x := uint32(1); x <= 80; x++ {
				fbVal := fb[(y-1)*80+(x-1)]
				inside := x >= spec.expStartX && y >= spec.expStartY && x <= spec.expEndX && y <= spec.expEndY

				if inside && fbVal != clearPat {
					t.Errorf("[spec %d] expected char at (%d, %d) to be cleared", specIndex, x, y)
					continue nextSpec
				} else if !inside && fbVal != testPat {
					t.Errorf("[spec %d] expected char at (%d, %d) not to be cleared", specIndex, x, y)
					continue nextSpec
				}
			}
		}
	}
}

func TestVgaTextScroll(t *testing.T) {
	cons, fb := newTestConsole(t, 80, 25)

	for row := 0; row < 25; row++ {
		for col := 0; col < 80; col++ {
			fb[row*80+col] = uint16(row)
		}
	}

	// no-op scrolls
	cons.Scroll(0)
	cons.Scroll(26)
	if fb[0] != 0 {
		t.Fatal("expected out of range scrolls to be ignored")
	}

	cons.Scroll(2)
	for row := 0; row < 23; row++ {
		if got := fb[row*80+79]; got != uint16(row+2) {
			t.Fatalf("expected row %d to contain the contents of row %d; got %d", row, row+2, got)
		}
	}

	// the bottom rows are left untouched for the caller to clear
	if got := fb[24*80]; got != 24 {
		t.Fatalf("expected last row to be left untouched; got %d", got)
	}
}

func TestVgaTextWrite(t *testing.T) {
	cons, fb := newTestConsole(t, 80, 25)
	attr := MakeAttr(Green, Black)

	cons.Write('!', attr, 0, 1)
	cons.Write('!', attr, 81, 1)
	cons.Write('!', attr, 1, 26)
	for i, v := range fb {
		if v != uint16(cons.DefaultAttr())<<8|' ' {
			t.Fatalf("expected out of bounds writes to be ignored; cell %d changed to 0x%x", i, v)
		}
	}

	cons.Write('A', attr, 80, 25)
	if exp, got := uint16(0x0241), fb[80*25-1]; got != exp {
		t.Fatalf("expected last cell to be 0x%x; got 0x%x", exp, got)
	}
}

func TestVgaTextDriverInterface(t *testing.T) {
	var dev device.Driver = NewVgaTextConsole(80, 25, 0, 0)

	if err := dev.DriverInit(&bytes.Buffer{}); err != errNoFramebuffer {
		t.Fatalf("expected errNoFramebuffer; got %v", err)
	}

	if dev.DriverName() == "" {
		t.Fatal("DriverName() returned an empty string")
	}

	if major, minor, patch := dev.DriverVersion(); major+minor+patch == 0 {
		t.Fatal("DriverVersion() returned an invalid version number")
	}

	fb := make([]uint16, 80*25)
	var buf bytes.Buffer
	physOffset := uintptr(0x1000)
	cons := NewVgaTextConsole(80, 25, uintptr(unsafe.Pointer(&fb[0]))-physOffset, physOffset)
	if err := cons.DriverInit(&buf); err != nil {
		t.Fatal(err)
	}

	if &cons.fb[0] != &fb[0] {
		t.Fatal("expected framebuffer to be located at physOffset + fbPhysAddr")
	}

	if fb[0] != 0x0720 {
		t.Fatalf("expected framebuffer to be cleared; got 0x%x", fb[0])
	}

	if !bytes.Contains(buf.Bytes(), []byte("(80x25)")) {
		t.Fatalf("unexpected init output: %q", buf.String())
	}
}

func TestProbe(t *testing.T) {
	defer func() {
		getFramebufferInfoFn = multiboot.GetFramebufferInfo
	}()

	specs := []struct {
		info    *multiboot.FramebufferInfo
		expNil  bool
		expAddr uintptr
		expCols uint32
	}{
		{nil, false, 0xb8000, 80},
		{&multiboot.FramebufferInfo{Type: multiboot.FramebufferTypeEGA, PhysAddr: 0xb8000, Width: 100, Height: 40}, false, 0xb8000, 100},
		{&multiboot.FramebufferInfo{Type: multiboot.FramebufferTypeRGB, PhysAddr: 0xfd000000, Width: 1024, Height: 768}, true, 0, 0},
	}

	for specIndex, spec := range specs {
		getFramebufferInfoFn = func() *multiboot.FramebufferInfo { return spec.info }

		drv := Probe(0x1000)
		if spec.expNil {
			if drv != nil {
				t.Errorf("[spec %d] expected Probe to return nil", specIndex)
			}
			continue
		}

		cons, ok := drv.(*VgaTextConsole)
		if !ok {
			t.Errorf("[spec %d] expected Probe to return a *VgaTextConsole; got %T", specIndex, drv)
			continue
		}

		if cons.fbPhysAddr != spec.expAddr || cons.columns != spec.expCols || cons.physOffset != 0x1000 {
			t.Errorf("[spec %d] unexpected console settings: addr 0x%x, columns %d, offset 0x%x", specIndex, cons.fbPhysAddr, cons.columns, cons.physOffset)
		}
	}
}
