package cpu

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-chippy/chippy/bit"
	"github.com/valerio/go-chippy/chippy/disasm"
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/memory"
	"github.com/valerio/go-chippy/chippy/timer"
	"github.com/valerio/go-chippy/chippy/video"
)

// CPU implements the fetch/decode/execute core. It owns the register
// file and call stack directly and reaches the rest of the machine by
// reference. The execution loop is the sole writer of everything here;
// the timer and input collaborators are reached through their own
// concurrency-safe types.
type CPU struct {
	v     [16]uint8
	i     uint16
	pc    uint16
	sp    uint8 // number of stacked return addresses, 0 when empty
	stack [16]uint16

	mem     *memory.Memory
	display *video.Display
	keypad  *input.Keypad
	timers  *timer.Timers

	rng    *rand.Rand
	trace  bool
	cycles uint64
}

// New returns a CPU with the program counter at the ROM start address.
func New(mem *memory.Memory, display *video.Display, keypad *input.Keypad, timers *timer.Timers) *CPU {
	return &CPU{
		pc:      memory.ROMStart,
		mem:     mem,
		display: display,
		keypad:  keypad,
		timers:  timers,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetSeed makes the random instruction deterministic, for reproducible
// runs and tests.
func (c *CPU) SetSeed(seed uint64) {
	c.rng = rand.New(rand.NewPCG(seed, 0))
}

// SetTrace enables per-instruction debug logging.
func (c *CPU) SetTrace(enabled bool) {
	c.trace = enabled
}

// Step fetches, decodes and executes exactly one instruction. The
// program counter advances by 2 unless the instruction transfers
// control itself. A returned error is always a *Fault and is terminal
// for the execution loop; no instruction is ever partially applied
// before a fault is raised.
func (c *CPU) Step() error {
	opcode, err := c.mem.ReadWord(c.pc)
	if err != nil {
		return c.fault(FaultMemoryRange, 0, err)
	}

	if c.trace {
		slog.Debug("exec",
			"pc", fmt.Sprintf("$%04x", c.pc),
			"opcode", fmt.Sprintf("$%04x", opcode),
			"instr", disasm.Format(opcode))
	}

	c.cycles++
	return c.execute(opcode)
}

func (c *CPU) execute(opcode uint16) error {
	class := bit.Nibble(opcode, 3)
	x := bit.Nibble(opcode, 2)
	y := bit.Nibble(opcode, 1)
	n := bit.Nibble(opcode, 0)
	kk := bit.Low(opcode)
	nnn := opcode & 0x0FFF

	switch {
	case class == 0x0 && nnn == 0x0E0:
		// 00E0 - CLS
		c.display.Clear()

	case class == 0x0 && nnn == 0x0EE:
		// 00EE - RET. The pushed address points at the CALL itself, so
		// the trailing increment below lands just past it.
		if c.sp == 0 {
			return c.fault(FaultStackUnderflow, opcode, nil)
		}
		c.sp--
		c.pc = c.stack[c.sp]

	case class == 0x0:
		// 0nnn - SYS, ignored by modern interpreters.

	case class == 0x1:
		// 1nnn - JP addr
		c.pc = nnn
		return nil

	case class == 0x2:
		// 2nnn - CALL addr
		if int(c.sp) >= len(c.stack) {
			return c.fault(FaultStackOverflow, opcode, nil)
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = nnn
		return nil

	case class == 0x3:
		// 3xkk - SE Vx, byte
		if c.v[x] == kk {
			c.pc += 2
		}

	case class == 0x4:
		// 4xkk - SNE Vx, byte
		if c.v[x] != kk {
			c.pc += 2
		}

	case class == 0x6:
		// 6xkk - LD Vx, byte
		c.v[x] = kk

	case class == 0x7:
		// 7xkk - ADD Vx, byte (no carry flag)
		c.v[x] += kk

	case class == 0x8 && n == 0x0:
		// 8xy0 - LD Vx, Vy
		c.v[x] = c.v[y]

	case class == 0x8 && n == 0x2:
		// 8xy2 - AND Vx, Vy
		c.v[x] &= c.v[y]

	case class == 0x8 && n == 0x3:
		// 8xy3 - XOR Vx, Vy
		c.v[x] ^= c.v[y]

	case class == 0x8 && n == 0x4:
		// 8xy4 - ADD Vx, Vy with carry in VF
		sum := uint16(c.v[x]) + uint16(c.v[y])
		if sum > 0xFF {
			c.v[0xF] = 1
		} else {
			c.v[0xF] = 0
		}
		c.v[x] = uint8(sum)

	case class == 0x8 && n == 0x5:
		// 8xy5 - SUB Vx, Vy with NOT borrow in VF
		if c.v[x] > c.v[y] {
			c.v[0xF] = 1
		} else {
			c.v[0xF] = 0
		}
		c.v[x] -= c.v[y]

	case class == 0x8 && n == 0x6:
		// 8xy6 - SHR Vx
		c.v[0xF] = c.v[x] & 0x1
		c.v[x] >>= 1

	case class == 0xA:
		// Annn - LD I, addr
		c.i = nnn

	case class == 0xC:
		// Cxkk - RND Vx, byte
		c.v[x] = uint8(c.rng.IntN(256)) & kk

	case class == 0xD:
		// Dxyn - DRW Vx, Vy, nibble
		if err := c.draw(opcode, x, y, n); err != nil {
			return err
		}

	case class == 0xE && kk == 0x9E:
		// Ex9E - SKP Vx
		if c.keypad.IsPressed(input.Key(c.v[x])) {
			c.pc += 2
		}

	case class == 0xE && kk == 0xA1:
		// ExA1 - SKNP Vx
		if !c.keypad.IsPressed(input.Key(c.v[x])) {
			c.pc += 2
		}

	case class == 0xF && kk == 0x07:
		// Fx07 - LD Vx, DT
		c.v[x] = c.timers.Delay()

	case class == 0xF && kk == 0x0A:
		// Fx0A - LD Vx, K. With no key down the PC stays put and the
		// loop re-executes this instruction next cycle; the loop itself
		// never blocks.
		key, ok := c.keypad.FirstPressed()
		if !ok {
			return nil
		}
		c.v[x] = uint8(key)

	case class == 0xF && kk == 0x15:
		// Fx15 - LD DT, Vx
		c.timers.SetDelay(c.v[x])

	case class == 0xF && kk == 0x18:
		// Fx18 - LD ST, Vx
		c.timers.SetSound(c.v[x])

	case class == 0xF && kk == 0x1E:
		// Fx1E - ADD I, Vx. I may grow past 0xFFF here; the memory
		// accessors re-check bounds on every use.
		c.i += uint16(c.v[x])

	case class == 0xF && kk == 0x33:
		// Fx33 - LD B, Vx. The middle byte is Vx/10, not the tens
		// digit; the classic interpreter stores it this way and test
		// ROMs depend on it.
		if err := c.writeBCD(opcode, c.v[x]); err != nil {
			return err
		}

	case class == 0xF && kk == 0x65:
		// Fx65 - LD Vx, [I]. Read the whole range up front so a range
		// fault never leaves the registers half loaded.
		values, err := c.mem.Slice(c.i, int(x)+1)
		if err != nil {
			return c.fault(FaultMemoryRange, opcode, err)
		}
		copy(c.v[:], values)

	default:
		return c.fault(FaultUnhandledInstruction, opcode, nil)
	}

	c.pc += 2
	return nil
}

func (c *CPU) draw(opcode uint16, x, y, n uint8) error {
	sprite, err := c.mem.Slice(c.i, int(n))
	if err != nil {
		return c.fault(FaultMemoryRange, opcode, err)
	}

	if c.display.DrawSprite(c.v[x], c.v[y], sprite) {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
	return nil
}

func (c *CPU) writeBCD(opcode uint16, value uint8) error {
	// Validate the whole range first so a fault never leaves a digit
	// half written.
	if _, err := c.mem.Slice(c.i, 3); err != nil {
		return c.fault(FaultMemoryRange, opcode, err)
	}

	digits := []byte{value / 100, value / 10, value % 10}
	for offset, digit := range digits {
		if err := c.mem.Write(c.i+uint16(offset), digit); err != nil {
			return c.fault(FaultMemoryRange, opcode, err)
		}
	}
	return nil
}

// Debug getter methods for state display and tests.
func (c *CPU) PC() uint16      { return c.pc }
func (c *CPU) I() uint16       { return c.i }
func (c *CPU) SP() uint8       { return c.sp }
func (c *CPU) V(index int) uint8 { return c.v[index] }
func (c *CPU) Cycles() uint64  { return c.cycles }
