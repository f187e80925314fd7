// Package disasm formats CHIP-8 instruction words as assembly
// mnemonics, used for trace logging and fault reports.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup finds the instruction matching a 16 bit opcode word and
// returns its mnemonic.
func Lookup(opcode uint16) (string, bool) {
	firstNibble := int(opcode&0xF000) >> 12
	for _, op := range chip8.Opcodes[firstNibble] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction.Name, true
		}
	}
	return "", false
}

// Format returns the assembly representation of an opcode word, e.g.
// "ld v1, $0a". Words that decode to no known instruction are rendered
// as raw data.
func Format(opcode uint16) string {
	name, ok := Lookup(opcode)
	if !ok {
		return fmt.Sprintf(".dw $%04x", opcode)
	}

	params := formatParams(name, opcode)
	if params == "" {
		return name
	}
	return name + " " + params
}

func formatParams(name string, opcode uint16) string {
	x := (opcode & 0x0F00) >> 8
	y := (opcode & 0x00F0) >> 4
	n := opcode & 0x000F
	kk := opcode & 0x00FF
	nnn := opcode & 0x0FFF

	switch name {
	case chip8.Cls.Name, chip8.Ret.Name:
		return ""
	case chip8.Jp.Name:
		if opcode&0xF000 == 0xB000 {
			return fmt.Sprintf("v0, $%03x", nnn)
		}
		return fmt.Sprintf("$%03x", nnn)
	case chip8.Call.Name:
		return fmt.Sprintf("$%03x", nnn)
	case chip8.Se.Name, chip8.Sne.Name:
		if opcode&0xF000 == 0x5000 || opcode&0xF000 == 0x9000 {
			return fmt.Sprintf("v%x, v%x", x, y)
		}
		return fmt.Sprintf("v%x, $%02x", x, kk)
	case chip8.Ld.Name:
		return formatLoadParams(opcode, x, y, kk, nnn)
	case chip8.Add.Name:
		switch opcode & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("v%x, $%02x", x, kk)
		case 0xF000:
			return fmt.Sprintf("i, v%x", x)
		}
		return fmt.Sprintf("v%x, v%x", x, y)
	case chip8.Or.Name, chip8.And.Name, chip8.Xor.Name, chip8.Sub.Name, chip8.Subn.Name:
		return fmt.Sprintf("v%x, v%x", x, y)
	case chip8.Shr.Name, chip8.Shl.Name:
		return fmt.Sprintf("v%x", x)
	case chip8.Rnd.Name:
		return fmt.Sprintf("v%x, $%02x", x, kk)
	case chip8.Drw.Name:
		return fmt.Sprintf("v%x, v%x, $%x", x, y, n)
	case chip8.Skp.Name, chip8.Sknp.Name:
		return fmt.Sprintf("v%x", x)
	}
	return ""
}

func formatLoadParams(opcode, x, y, kk, nnn uint16) string {
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("v%x, $%02x", x, kk)
	case 0x8000:
		return fmt.Sprintf("v%x, v%x", x, y)
	case 0xA000:
		return fmt.Sprintf("i, $%03x", nnn)
	}

	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("v%x, dt", x)
	case 0x0A:
		return fmt.Sprintf("v%x, k", x)
	case 0x15:
		return fmt.Sprintf("dt, v%x", x)
	case 0x18:
		return fmt.Sprintf("st, v%x", x)
	case 0x29:
		return fmt.Sprintf("f, v%x", x)
	case 0x33:
		return fmt.Sprintf("b, v%x", x)
	case 0x55:
		return fmt.Sprintf("[i], v%x", x)
	case 0x65:
		return fmt.Sprintf("v%x, [i]", x)
	}
	return ""
}
