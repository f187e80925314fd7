package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// Nibble extracts the 4-bit group at the given position of a 16 bit word.
// Position 0 is the least significant nibble, 3 the most significant.
func Nibble(value uint16, position uint8) uint8 {
	return uint8((value >> (4 * position)) & 0xF)
}
