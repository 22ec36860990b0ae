package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	// The max number of gate entries; one per IDT slot.
	maxGates = 256

	// fxsaveAreaSize is the size of the memory image written by FXSAVE64.
	fxsaveAreaSize = 512
)

// errCodeVectors lists the exceptions for which the CPU pushes an error code.
var errCodeVectors = map[int]bool{
	8:  true, // double fault
	10: true, // invalid TSS
	11: true, // segment not present
	12: true, // stack-segment fault
	13: true, // general protection fault
	14: true, // page fault
	17: true, // alignment check
	21: true, // control protection
	29: true, // VMM communication
	30: true, // security
}

// savedRegs lists the general purpose registers in the order they are pushed
// by the common entry code. The last pushed register ends up at the lowest
// address and therefore maps to the first field of gate.Registers.
var savedRegs = []string{
	"R15", "R14", "R13", "R12", "R11", "R10", "R9", "R8",
	"BP", "DI", "SI", "DX", "CX", "BX", "AX",
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[makegates] error: %s\n", err.Error())
	os.Exit(1)
}

func genGateEntries(count int) (string, error) {
	if count <= 0 || count > maxGates {
		return "", fmt.Errorf("gate count must be in the range [1, %d]; got %d", maxGates, count)
	}

	var buf bytes.Buffer

	// Output header and the table lookup function
	fmt.Fprint(&buf, `// Code generated by makegates; DO NOT EDIT.

#include "textflag.h"

TEXT ·gateEntryAddr(SB),NOSPLIT,$0-16
	MOVBQZX vector+0(FP), AX
	LEAQ gateEntryTable<>(SB), BX
	MOVQ (BX)(AX*8), AX
	MOVQ AX, ret+8(FP)
	RET

// gateCommon saves the general purpose registers below the vector and error
// code pushed by each entry stub and the x87/SSE state in a 16-byte aligned
// area below them. It passes a pointer to the saved general purpose registers
// to dispatchInterrupt and resumes the interrupted code.
//
// Frame below the saved registers (AX):
//   0(SP)  dispatchInterrupt argument
//   8(SP)  AX, restored into SP after the call
//   16(SP) FXSAVE area
TEXT gateCommon<>(SB),NOSPLIT|NOFRAME,$0
`)
	for _, reg := range savedRegs {
		fmt.Fprintf(&buf, "\tPUSHQ %s\n", reg)
	}
	fmt.Fprintf(&buf, `	MOVQ SP, AX
	SUBQ $%d, SP
	ANDQ $~15, SP
	FXSAVE64 16(SP)
	MOVQ AX, 8(SP)
	MOVQ AX, 0(SP)
	CALL ·dispatchInterrupt(SB)
	FXRSTOR64 16(SP)
	MOVQ 8(SP), SP
`, 16+fxsaveAreaSize)
	for i := len(savedRegs) - 1; i >= 0; i-- {
		fmt.Fprintf(&buf, "\tPOPQ %s\n", savedRegs[i])
	}
	fmt.Fprint(&buf, "\tADDQ $16, SP // vector and error code\n\tIRETQ\n")

	// Output one entry stub per vector
	for vector := 0; vector < count; vector++ {
		fmt.Fprintf(&buf, "\nTEXT gateEntry%d<>(SB),NOSPLIT|NOFRAME,$0\n", vector)
		if !errCodeVectors[vector] {
			fmt.Fprint(&buf, "\tPUSHQ $0\n")
		}
		fmt.Fprintf(&buf, "\tPUSHQ $%d\n\tJMP gateCommon<>(SB)\n", vector)
	}

	// Output the stub address table
	fmt.Fprint(&buf, "\n")
	for vector := 0; vector < count; vector++ {
		fmt.Fprintf(&buf, "DATA gateEntryTable<>+%d(SB)/8, $gateEntry%d<>(SB)\n", vector*8, vector)
	}
	fmt.Fprintf(&buf, "GLOBL gateEntryTable<>(SB), RODATA, $%d\n", count*8)

	return buf.String(), nil
}

func runTool() error {
	count := flag.Int("count", 48, "the number of interrupt vectors to generate entry stubs for")
	output := flag.String("out", "-", "a file to write the generated assembly or - to output to STDOUT")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "makegates: generate the amd64 interrupt gate entry stubs\n\n")
		fmt.Fprint(os.Stderr, "Usage: makegates [options]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		exit(errors.New("unexpected arguments"))
	}

	asm, err := genGateEntries(*count)
	if err != nil {
		return err
	}

	switch *output {
	case "-":
		fmt.Fprint(os.Stdout, asm)
	default:
		return os.WriteFile(*output, []byte(asm), 0644)
	}

	return nil
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}
