package cia

// KeyboardState tracks the single most recently pressed key and the
// shift state, updated by an external key-event source and sampled by
// CIA1 without locking (both fields are single bytes, matching the
// concurrency model's "atomic byte-sized updates" requirement).
type KeyboardState struct {
	lastKeyCode byte
	shiftState  byte
	pressed     bool
}

// NewKeyboardState creates a keyboard with no key currently pressed.
func NewKeyboardState() *KeyboardState {
	return &KeyboardState{}
}

// Press records a key press. row/col identify a cell in the 8x8 C64
// keyboard matrix; shift records whether a shift key is also held.
func (k *KeyboardState) Press(row, col byte, shift bool) {
	k.lastKeyCode = (row << 3) | (col & 0x07)
	k.pressed = true
	k.shiftState = 0
	if shift {
		k.shiftState = 1
	}
}

// Release clears the currently pressed key.
func (k *KeyboardState) Release() {
	k.pressed = false
}

// rowCol returns the matrix row and column of the pressed key, or
// ok=false when no key is held.
func (k *KeyboardState) rowCol() (row, col byte, ok bool) {
	if !k.pressed {
		return 0, 0, false
	}
	return k.lastKeyCode >> 3, k.lastKeyCode & 0x07, true
}

// Left Shift lives at matrix position (row 1, column 7) on the real
// C64 keyboard.
const (
	shiftRow = 1
	shiftCol = 7
)

// Scan implements the CIA1 keyboard-matrix protocol: strobe is the
// byte written to port A (one bit low per column being scanned, active
// low); the returned byte has a bit cleared for each row in which the
// pressed key, if any, lives and whose column is currently strobed, and
// likewise for the Shift key's own matrix cell when shiftState is set.
func (k *KeyboardState) Scan(strobe byte) byte {
	result := byte(0xff)
	if row, col, ok := k.rowCol(); ok && strobe&(1<<col) == 0 {
		result &^= 1 << row
	}
	if k.shiftState != 0 && strobe&(1<<shiftCol) == 0 {
		result &^= 1 << shiftRow
	}
	return result
}
