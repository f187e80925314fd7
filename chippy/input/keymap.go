package input

// DefaultKeyMap is the fixed logical layout mapping the 4x4 block of
// keys 1234/qwer/asdf/zxcv on a standard keyboard onto the hex keypad:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
//
// Backends use this as their base mapping.
var DefaultKeyMap = map[rune]Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyFromRune returns the keypad key mapped to the given keyboard rune,
// if one exists.
func KeyFromRune(r rune) (Key, bool) {
	key, ok := DefaultKeyMap[r]
	return key, ok
}
