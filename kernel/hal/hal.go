// Package hal wires the console, terminal and interrupt controller drivers
// together and routes kernel output to the active terminal.
package hal

import (
	"github.com/MaciejSzybiak/first-os/device"
	"github.com/MaciejSzybiak/first-os/device/tty"
	"github.com/MaciejSzybiak/first-os/device/video/console"
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
)

// managedDevices contains the devices set up by the HAL.
type managedDevices struct {
	activeConsole console.Device
	activeTTY     *tty.VT
}

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	probeConsoleFn = console.Probe

	devices managedDevices

	// vt is statically allocated as it is set up before any memory
	// allocator is available.
	vt tty.VT

	prefix prefixBuffer

	errNoConsole = &kernel.Error{Module: "hal", Message: "no text console detected"}
)

// prefixBuffer is a fixed-size io.Writer used to format driver log prefixes
// without allocating memory. Writes beyond its capacity are truncated.
type prefixBuffer struct {
	data [64]byte
	len  int
}

func (b *prefixBuffer) Reset() {
	b.len = 0
}

func (b *prefixBuffer) Write(p []byte) (int, error) {
	n := copy(b.data[b.len:], p)
	b.len += n
	return len(p), nil
}

func (b *prefixBuffer) Bytes() []byte {
	return b.data[:b.len]
}

// ActiveTTY returns the currently active terminal or nil if no console has
// been detected.
func ActiveTTY() *tty.VT {
	return devices.activeTTY
}

// InitDriver initializes drv, tagging any output it produces with the driver
// name and version.
func InitDriver(drv device.Driver) *kernel.Error {
	var w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	prefix.Reset()
	major, minor, patch := drv.DriverVersion()
	kfmt.Fprintf(&prefix, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
	w.Prefix = prefix.Bytes()

	if err := drv.DriverInit(&w); err != nil {
		kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
		return err
	}

	kfmt.Fprintf(&w, "initialized\n")
	return nil
}

// DetectConsole probes for a text console reachable through the physical
// memory mapping at physOffset, attaches a terminal to it and makes the
// terminal the target for kernel output. Output produced before this call is
// replayed to the terminal.
func DetectConsole(physOffset uintptr) *kernel.Error {
	drv := probeConsoleFn(physOffset)
	if drv == nil {
		return errNoConsole
	}

	cons, ok := drv.(console.Device)
	if !ok {
		return errNoConsole
	}

	if err := InitDriver(drv); err != nil {
		return err
	}

	vt.Init(tty.DefaultTabWidth, tty.DefaultScrollback)
	if err := InitDriver(&vt); err != nil {
		return err
	}

	vt.AttachTo(cons)
	vt.SetState(tty.StateActive)

	devices.activeConsole = cons
	devices.activeTTY = &vt
	kfmt.SetOutputSink(&vt)
	return nil
}
