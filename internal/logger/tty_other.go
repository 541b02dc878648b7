//go:build !linux

package logger

import "os"

// IsTerminal falls back to the character-device mode bit.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
