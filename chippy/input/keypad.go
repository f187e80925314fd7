package input

import "sync/atomic"

// NumKeys is the number of keys on the hex keypad.
const NumKeys = 16

// Key identifies one of the 16 hex keypad keys (0x0 through 0xF).
type Key uint8

// Keypad tracks the pressed state of the hex keypad. The input
// collaborator is the only writer; the CPU loop only reads, so each key
// is an atomic flag and no lock is needed.
type Keypad struct {
	keys [NumKeys]atomic.Bool
}

// NewKeypad returns a keypad with all keys released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks a key as held down. Out of range keys are ignored.
func (k *Keypad) Press(key Key) {
	if key < NumKeys {
		k.keys[key].Store(true)
	}
}

// Release marks a key as released. Out of range keys are ignored.
func (k *Keypad) Release(key Key) {
	if key < NumKeys {
		k.keys[key].Store(false)
	}
}

// IsPressed reports whether the given key is currently held down.
func (k *Keypad) IsPressed(key Key) bool {
	return key < NumKeys && k.keys[key].Load()
}

// FirstPressed scans the keypad in key order and returns the lowest
// pressed key, if any. The wait-for-key instruction uses this.
func (k *Keypad) FirstPressed() (Key, bool) {
	for i := range k.keys {
		if k.keys[i].Load() {
			return Key(i), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	for i := range k.keys {
		k.keys[i].Store(false)
	}
}
