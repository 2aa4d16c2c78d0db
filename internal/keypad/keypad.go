// Package keypad implements the 16 key hexadecimal keypad.
package keypad

import "sync"

// KeyCount is the number of keys.
const KeyCount = 16

// Keypad holds the pressed state of the 16 keys. It is safe for concurrent
// use, the frontend presses keys while the CPU reads them.
type Keypad struct {
	mu      sync.RWMutex
	pressed [KeyCount]bool
}

// New returns a keypad with all keys released.
func New() *Keypad {
	return &Keypad{}
}

// Press marks the key as pressed. Invalid keys are ignored.
func (k *Keypad) Press(key uint8) {
	k.set(key, true)
}

// Release marks the key as released. Invalid keys are ignored.
func (k *Keypad) Release(key uint8) {
	k.set(key, false)
}

// IsPressed returns whether the key is pressed. Invalid keys are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pressed[key]
}

// ReleaseAll releases all keys.
func (k *Keypad) ReleaseAll() {
	k.mu.Lock()
	k.pressed = [KeyCount]bool{}
	k.mu.Unlock()
}

// Pressed returns the pressed keys in ascending order.
func (k *Keypad) Pressed() []uint8 {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var keys []uint8
	for key, pressed := range k.pressed {
		if pressed {
			keys = append(keys, uint8(key))
		}
	}
	return keys
}

func (k *Keypad) set(key uint8, pressed bool) {
	if key >= KeyCount {
		return
	}
	k.mu.Lock()
	k.pressed[key] = pressed
	k.mu.Unlock()
}
