package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/memory"
	"github.com/valerio/go-chippy/chippy/timer"
	"github.com/valerio/go-chippy/chippy/video"
)

func newTestCPU(t *testing.T, rom ...byte) *CPU {
	t.Helper()
	mem, err := memory.NewWithROM(rom)
	require.NoError(t, err)
	return New(mem, video.NewDisplay(), input.NewKeypad(), timer.New(nil))
}

func TestCPU_LoadImmediate(t *testing.T) {
	// 6xkk across the register file: the loaded register must be the
	// one named in the opcode, every other register stays zero.
	testCases := []struct {
		x  uint8
		kk uint8
	}{
		{x: 0x0, kk: 0x01},
		{x: 0x5, kk: 0x42},
		{x: 0xE, kk: 0xFF},
	}
	for _, tC := range testCases {
		c := newTestCPU(t, 0x60|tC.x, tC.kk)

		require.NoError(t, c.Step())

		for i := range c.v {
			if uint8(i) == tC.x {
				assert.Equal(t, tC.kk, c.v[i])
			} else {
				assert.Zero(t, c.v[i])
			}
		}
	}
}

func TestCPU_AddImmediate(t *testing.T) {
	testCases := []struct {
		desc    string
		x       uint8
		initial uint8
		kk      uint8
		want    uint8
	}{
		{desc: "simple add", x: 0, initial: 1, kk: 2, want: 3},
		{desc: "wraps at 256", x: 7, initial: 0xFF, kk: 0x02, want: 0x01},
		{desc: "add zero", x: 0xD, initial: 0x42, kk: 0, want: 0x42},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, 0x70|tC.x, tC.kk) // 7xkk
			c.v[tC.x] = tC.initial
			c.v[0xF] = 1 // must not influence the result

			require.NoError(t, c.Step())

			assert.Equal(t, tC.want, c.v[tC.x])
			assert.Equal(t, uint8(1), c.v[0xF], "7xkk never touches VF")
			assert.Equal(t, uint16(memory.ROMStart+2), c.pc)
		})
	}
}

func TestCPU_AddRegisters(t *testing.T) {
	testCases := []struct {
		desc   string
		x, y   uint8
		vx, vy uint8
		want   uint8
		wantVF uint8
	}{
		{desc: "carry set", x: 0, y: 1, vx: 250, vy: 10, want: 4, wantVF: 1},
		{desc: "no carry", x: 4, y: 9, vx: 1, vy: 1, want: 2, wantVF: 0},
		{desc: "exactly 255", x: 0xA, y: 2, vx: 0xFE, vy: 0x01, want: 0xFF, wantVF: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, 0x80|tC.x, tC.y<<4|0x04) // 8xy4: Vx += Vy
			c.v[tC.x] = tC.vx
			c.v[tC.y] = tC.vy

			require.NoError(t, c.Step())

			assert.Equal(t, tC.want, c.v[tC.x])
			assert.Equal(t, tC.wantVF, c.v[0xF])
		})
	}
}

func TestCPU_SubRegisters(t *testing.T) {
	testCases := []struct {
		desc   string
		x, y   uint8
		vx, vy uint8
		want   uint8
		wantVF uint8
	}{
		{desc: "no borrow", x: 0, y: 1, vx: 5, vy: 3, want: 2, wantVF: 1},
		{desc: "borrow wraps", x: 8, y: 3, vx: 3, vy: 5, want: 254, wantVF: 0},
		{desc: "equal values", x: 0xC, y: 6, vx: 7, vy: 7, want: 0, wantVF: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, 0x80|tC.x, tC.y<<4|0x05) // 8xy5: Vx -= Vy
			c.v[tC.x] = tC.vx
			c.v[tC.y] = tC.vy

			require.NoError(t, c.Step())

			assert.Equal(t, tC.want, c.v[tC.x])
			assert.Equal(t, tC.wantVF, c.v[0xF])
		})
	}
}

func TestCPU_Logic(t *testing.T) {
	testCases := []struct {
		desc string
		rom  []byte
		want uint8
	}{
		{desc: "ld vx vy", rom: []byte{0x83, 0x90}, want: 0x0F},
		{desc: "and", rom: []byte{0x83, 0x92}, want: 0x0C},
		{desc: "xor", rom: []byte{0x83, 0x93}, want: 0xF3},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, tC.rom...)
			c.v[3] = 0xFC
			c.v[9] = 0x0F

			require.NoError(t, c.Step())

			assert.Equal(t, tC.want, c.v[3])
			assert.Equal(t, uint8(0x0F), c.v[9], "Vy is read-only")
		})
	}
}

func TestCPU_ShiftRight(t *testing.T) {
	testCases := []struct {
		desc   string
		vx     uint8
		want   uint8
		wantVF uint8
	}{
		{desc: "odd sets VF", vx: 0x05, want: 0x02, wantVF: 1},
		{desc: "even clears VF", vx: 0x04, want: 0x02, wantVF: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, 0x86, 0x06) // 8xy6 on V6
			c.v[6] = tC.vx

			require.NoError(t, c.Step())

			assert.Equal(t, tC.want, c.v[6])
			assert.Equal(t, tC.wantVF, c.v[0xF])
		})
	}
}

func TestCPU_Skips(t *testing.T) {
	testCases := []struct {
		desc    string
		rom     []byte
		x       uint8
		vx      uint8
		skipped bool
	}{
		{desc: "SE skips on equal", rom: []byte{0x3B, 0x42}, x: 0xB, vx: 0x42, skipped: true},
		{desc: "SE falls through on unequal", rom: []byte{0x3B, 0x42}, x: 0xB, vx: 0x41, skipped: false},
		{desc: "SNE skips on unequal", rom: []byte{0x42, 0x42}, x: 2, vx: 0x41, skipped: true},
		{desc: "SNE falls through on equal", rom: []byte{0x42, 0x42}, x: 2, vx: 0x42, skipped: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, tC.rom...)
			c.v[tC.x] = tC.vx

			require.NoError(t, c.Step())

			want := uint16(memory.ROMStart + 2)
			if tC.skipped {
				want += 2
			}
			assert.Equal(t, want, c.pc)
		})
	}
}

func TestCPU_Jump(t *testing.T) {
	c := newTestCPU(t, 0x1A, 0xBC)

	require.NoError(t, c.Step())

	assert.Equal(t, uint16(0xABC), c.pc)
}

func TestCPU_CallRet(t *testing.T) {
	// 0x200: CALL 0x204; 0x202: unused; 0x204: RET
	c := newTestCPU(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	require.NoError(t, c.Step())
	assert.Equal(t, uint16(0x204), c.pc)
	assert.Equal(t, uint8(1), c.sp)
	assert.Equal(t, uint16(0x200), c.stack[0])

	require.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.pc, "RET resumes just past the CALL")
	assert.Equal(t, uint8(0), c.sp)
}

func TestCPU_CallRetRepeated(t *testing.T) {
	c := newTestCPU(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	for i := 0; i < 16; i++ {
		c.pc = 0x200
		require.NoError(t, c.Step())
		require.NoError(t, c.Step())
		assert.Equal(t, uint16(0x202), c.pc)
		assert.Equal(t, uint8(0), c.sp)
	}
}

func TestCPU_StackOverflow(t *testing.T) {
	// CALL 0x200 repeatedly: each call pushes and jumps back to itself.
	c := newTestCPU(t, 0x22, 0x00)

	for i := 0; i < 16; i++ {
		require.NoError(t, c.Step())
	}
	assert.Equal(t, uint8(16), c.sp)

	err := c.Step()
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultStackOverflow, fault.Kind)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
}

func TestCPU_StackUnderflow(t *testing.T) {
	c := newTestCPU(t, 0x00, 0xEE)

	err := c.Step()
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultStackUnderflow, fault.Kind)
}

func TestCPU_SysIsIgnored(t *testing.T) {
	c := newTestCPU(t, 0x01, 0x23)

	require.NoError(t, c.Step())

	assert.Equal(t, uint16(memory.ROMStart+2), c.pc)
}

func TestCPU_LoadIndex(t *testing.T) {
	c := newTestCPU(t, 0xA1, 0x23)

	require.NoError(t, c.Step())

	assert.Equal(t, uint16(0x123), c.i)
}

func TestCPU_AddIndex(t *testing.T) {
	c := newTestCPU(t, 0xF0, 0x1E)
	c.i = 0xFFE
	c.v[0] = 0x10

	require.NoError(t, c.Step())

	assert.Equal(t, uint16(0x100E), c.i, "I may grow past 0xFFF")
}

func TestCPU_Random(t *testing.T) {
	c := newTestCPU(t, 0xC7, 0x0F)
	c.SetSeed(1)

	require.NoError(t, c.Step())

	assert.Zero(t, c.v[7]&0xF0, "result is masked by kk")

	// Same seed, same ROM: the value must reproduce.
	c2 := newTestCPU(t, 0xC7, 0x0F)
	c2.SetSeed(1)
	require.NoError(t, c2.Step())
	assert.Equal(t, c.v[7], c2.v[7])
}

func TestCPU_SkipOnKey(t *testing.T) {
	testCases := []struct {
		desc    string
		rom     []byte
		pressed bool
		skipped bool
	}{
		{desc: "SKP skips when pressed", rom: []byte{0xE3, 0x9E}, pressed: true, skipped: true},
		{desc: "SKP falls through when released", rom: []byte{0xE3, 0x9E}, pressed: false, skipped: false},
		{desc: "SKNP skips when released", rom: []byte{0xE3, 0xA1}, pressed: false, skipped: true},
		{desc: "SKNP falls through when pressed", rom: []byte{0xE3, 0xA1}, pressed: true, skipped: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, tC.rom...)
			c.v[3] = 0x7
			if tC.pressed {
				c.keypad.Press(0x7)
			}

			require.NoError(t, c.Step())

			want := uint16(memory.ROMStart + 2)
			if tC.skipped {
				want += 2
			}
			assert.Equal(t, want, c.pc)
		})
	}
}

func TestCPU_WaitForKey(t *testing.T) {
	c := newTestCPU(t, 0xF5, 0x0A)

	// No key pressed: the same instruction spins without advancing.
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Step())
		assert.Equal(t, uint16(memory.ROMStart), c.pc)
	}

	c.keypad.Press(0xB)
	require.NoError(t, c.Step())

	assert.Equal(t, uint8(0xB), c.v[5])
	assert.Equal(t, uint16(memory.ROMStart+2), c.pc)
}

func TestCPU_Timers(t *testing.T) {
	// LD DT, V0; LD ST, V1; LD V2, DT
	c := newTestCPU(t, 0xF0, 0x15, 0xF1, 0x18, 0xF2, 0x07)
	c.v[0] = 0x30
	c.v[1] = 0x40

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	assert.Equal(t, uint8(0x30), c.timers.Delay())
	assert.Equal(t, uint8(0x40), c.timers.Sound())
	assert.Equal(t, uint8(0x30), c.v[2])
}

func TestCPU_BCD(t *testing.T) {
	testCases := []struct {
		desc  string
		value uint8
		want  [3]byte
	}{
		// The middle byte is value/10, not the tens digit: the classic
		// interpreter behaves this way for values >= 100.
		{desc: "quirky middle byte", value: 254, want: [3]byte{2, 25, 4}},
		{desc: "two digits", value: 42, want: [3]byte{0, 4, 2}},
		{desc: "one digit", value: 7, want: [3]byte{0, 0, 7}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, 0xF0, 0x33)
			c.v[0] = tC.value
			c.i = 0x300

			require.NoError(t, c.Step())

			for offset, want := range tC.want {
				got, err := c.mem.Read(0x300 + uint16(offset))
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCPU_LoadRegisters(t *testing.T) {
	c := newTestCPU(t, 0xF2, 0x65, 0x0A, 0x0B, 0x0C, 0x0D)
	c.i = 0x202

	require.NoError(t, c.Step())

	assert.Equal(t, uint8(0x0A), c.v[0])
	assert.Equal(t, uint8(0x0B), c.v[1])
	assert.Equal(t, uint8(0x0C), c.v[2])
	assert.Equal(t, uint8(0), c.v[3], "registers past Vx are untouched")
}

func TestCPU_Draw(t *testing.T) {
	// LD I, 0x204; DRW V0, V1, 1; sprite byte 0x80 (single pixel)
	c := newTestCPU(t, 0xA2, 0x04, 0xD0, 0x11, 0x80)

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	assert.True(t, c.display.Pixel(0, 0))
	assert.Equal(t, uint8(0), c.v[0xF])

	// Drawing the same sprite again erases it and reports collision.
	c.pc = 0x202
	require.NoError(t, c.Step())

	assert.False(t, c.display.Pixel(0, 0))
	assert.Equal(t, uint8(1), c.v[0xF])
}

func TestCPU_DrawOutOfRange(t *testing.T) {
	c := newTestCPU(t, 0xD0, 0x15)
	c.i = 0xFFE

	err := c.Step()
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultMemoryRange, fault.Kind)
}

func TestCPU_Clear(t *testing.T) {
	c := newTestCPU(t, 0xA2, 0x04, 0xD0, 0x11, 0x00, 0xE0, 0x80)

	require.NoError(t, c.Step()) // LD I
	c.i = 0x206
	require.NoError(t, c.Step()) // DRW
	assert.True(t, c.display.Pixel(0, 0))

	require.NoError(t, c.Step()) // CLS
	frame := c.display.Frame()
	for _, px := range frame.ToSlice() {
		require.False(t, px)
	}
}

func TestCPU_UnhandledInstruction(t *testing.T) {
	testCases := []struct {
		desc string
		rom  []byte
	}{
		{desc: "8xy1 OR", rom: []byte{0x80, 0x11}},
		{desc: "9xy0 SNE register", rom: []byte{0x90, 0x10}},
		{desc: "Bnnn jump", rom: []byte{0xB2, 0x00}},
		{desc: "Fx29 font", rom: []byte{0xF0, 0x29}},
		{desc: "Fx55 store", rom: []byte{0xF0, 0x55}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := newTestCPU(t, tC.rom...)
			c.v[3] = 0xAB
			c.i = 0x123

			err := c.Step()
			require.Error(t, err)

			var fault *Fault
			require.True(t, errors.As(err, &fault))
			assert.Equal(t, FaultUnhandledInstruction, fault.Kind)
			assert.Equal(t, uint16(memory.ROMStart), fault.PC)
			assert.Equal(t, uint8(0xAB), fault.V[3])
			assert.Equal(t, uint16(0x123), fault.I)
		})
	}
}

func TestCPU_FetchOutOfRange(t *testing.T) {
	c := newTestCPU(t)
	c.pc = 0xFFF

	err := c.Step()
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultMemoryRange, fault.Kind)
}

func TestCPU_FaultMessage(t *testing.T) {
	c := newTestCPU(t, 0xF0, 0x55)

	err := c.Step()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "unhandled instruction")
	assert.Contains(t, err.Error(), "pc=$0200")
	assert.Contains(t, err.Error(), "opcode=$f055")
}
