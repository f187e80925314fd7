package memory

import (
	"fmt"

	"github.com/valerio/go-chippy/chippy/bit"
)

const (
	// Size is the total addressable memory of the machine.
	Size = 4096

	// ROMStart is the address where loaded programs begin. Everything
	// below it belonged to the original interpreter and stays zeroed.
	ROMStart = 0x200

	// MaxROMSize is the largest program that fits above ROMStart.
	MaxROMSize = Size - ROMStart
)

// Memory is the flat 4KB address space of the machine. All accesses are
// bounds checked; the CPU turns range errors into faults rather than
// letting an out of range index corrupt state.
type Memory struct {
	data [Size]byte
}

// New returns a zero-filled memory with no program loaded.
func New() *Memory {
	return &Memory{}
}

// NewWithROM returns a memory with the given program loaded at ROMStart.
func NewWithROM(rom []byte) (*Memory, error) {
	m := New()
	if err := m.LoadROM(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadROM copies a program into memory starting at ROMStart. The bytes
// below ROMStart and past the end of the program are left zeroed.
func (m *Memory) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("ROM size %d exceeds the %d bytes available above %#04x", len(rom), MaxROMSize, ROMStart)
	}
	copy(m.data[ROMStart:], rom)
	return nil
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= Size {
		return 0, fmt.Errorf("read at %#04x outside of addressable memory", address)
	}
	return m.data[address], nil
}

// Write stores a byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= Size {
		return fmt.Errorf("write at %#04x outside of addressable memory", address)
	}
	m.data[address] = value
	return nil
}

// ReadWord reads the big-endian 16 bit word at the given address.
// Instruction words are stored high byte first.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 >= Size {
		return 0, fmt.Errorf("word read at %#04x outside of addressable memory", address)
	}
	return bit.Combine(m.data[address], m.data[address+1]), nil
}

// Slice returns a copy of n bytes starting at the given address.
// Sprite reads use this so the display never aliases machine memory.
func (m *Memory) Slice(address uint16, n int) ([]byte, error) {
	if int(address)+n > Size {
		return nil, fmt.Errorf("read of %d bytes at %#04x outside of addressable memory", n, address)
	}
	out := make([]byte, n)
	copy(out, m.data[address:int(address)+n])
	return out, nil
}
