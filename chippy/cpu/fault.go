package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/go-chippy/chippy/disasm"
)

// FaultKind classifies the terminal conditions of the execution loop.
type FaultKind int

const (
	// FaultUnhandledInstruction means decode found no matching rule.
	FaultUnhandledInstruction FaultKind = iota
	// FaultStackOverflow means a CALL exceeded the 16-level stack.
	FaultStackOverflow
	// FaultStackUnderflow means a RET was executed with an empty stack.
	FaultStackUnderflow
	// FaultMemoryRange means an access landed outside addressable memory.
	FaultMemoryRange
)

func (k FaultKind) String() string {
	switch k {
	case FaultUnhandledInstruction:
		return "unhandled instruction"
	case FaultStackOverflow:
		return "stack overflow"
	case FaultStackUnderflow:
		return "stack underflow"
	case FaultMemoryRange:
		return "memory access out of range"
	}
	return "unknown fault"
}

// Fault is a terminal CPU error carrying the full machine state at the
// point of failure, so the operator can see exactly what the program
// was doing instead of dropping into a debugger.
type Fault struct {
	Kind   FaultKind
	PC     uint16
	Opcode uint16
	I      uint16
	V      [16]uint8
	SP     uint8
	Stack  [16]uint16

	// Cause holds the underlying error for memory range faults.
	Cause error
}

func (f *Fault) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: pc=$%04x opcode=$%04x (%s) i=$%04x sp=%d",
		f.Kind, f.PC, f.Opcode, disasm.Format(f.Opcode), f.I, f.SP)

	b.WriteString(" v=[")
	for i, v := range f.V {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	b.WriteString("] stack=[")
	for i := uint8(0); i < f.SP && i < uint8(len(f.Stack)); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%04x", f.Stack[i])
	}
	b.WriteByte(']')

	if f.Cause != nil {
		fmt.Fprintf(&b, ": %v", f.Cause)
	}
	return b.String()
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// fault builds a Fault snapshotting the current machine state.
func (c *CPU) fault(kind FaultKind, opcode uint16, cause error) *Fault {
	return &Fault{
		Kind:   kind,
		PC:     c.pc,
		Opcode: opcode,
		I:      c.i,
		V:      c.v,
		SP:     c.sp,
		Stack:  c.stack,
		Cause:  cause,
	}
}
