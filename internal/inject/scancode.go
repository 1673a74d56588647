package inject

import (
	"unicode"

	"github.com/dkazmin/macroplay/internal/event"
)

// scanCodes maps canonical key names to PC set-1 scan codes. Right Ctrl and
// right Alt share the left variant's code and are distinguished by the
// extended flag (see extendedKeys).
var scanCodes = map[string]uint16{
	"shift_l": 0x2A, "shift_r": 0x36,
	"ctrl_l": 0x1D, "ctrl_r": 0x1D,
	"alt_l": 0x38, "alt_r": 0x38,

	"a": 0x1E, "b": 0x30, "c": 0x2E, "d": 0x20, "e": 0x12, "f": 0x21,
	"g": 0x22, "h": 0x23, "i": 0x17, "j": 0x24, "k": 0x25, "l": 0x26,
	"m": 0x32, "n": 0x31, "o": 0x18, "p": 0x19, "q": 0x10, "r": 0x13,
	"s": 0x1F, "t": 0x14, "u": 0x16, "v": 0x2F, "w": 0x11, "x": 0x2D,
	"y": 0x15, "z": 0x2C,

	"0": 0x0B, "1": 0x02, "2": 0x03, "3": 0x04, "4": 0x05, "5": 0x06,
	"6": 0x07, "7": 0x08, "8": 0x09, "9": 0x0A,

	"space": 0x39, "enter": 0x1C, "esc": 0x01, "tab": 0x0F,

	"f1": 0x3B, "f2": 0x3C, "f3": 0x3D, "f4": 0x3E, "f5": 0x3F,
	"f6": 0x40, "f7": 0x41, "f8": 0x42, "f9": 0x43, "f10": 0x44,
	"f11": 0x57, "f12": 0x58,

	"up": 0x48, "down": 0x50, "left": 0x4B, "right": 0x4D,
	"insert": 0x52, "delete": 0x53, "home": 0x47, "end": 0x4F,
	"page_up": 0x49, "page_down": 0x51,
	"backspace": 0x0E, "caps_lock": 0x3A,
	"num_lock": 0x45, "scroll_lock": 0x46,
}

// extendedKeys lists the names that need the extended-key flag.
var extendedKeys = map[string]bool{
	"ctrl_r": true,
	"alt_r":  true,
}

// Resolve maps a canonical key name to the scan code to inject.
//
// Resolution order: the fixed name table; keycode fallback tokens translated
// through the platform's virtual-key-to-scan-code mapping; single printable
// characters translated through the same mapping via their upper-case code
// point. Anything else is an UnresolvedKeyError.
func Resolve(name string) (ScanCode, error) {
	if code, ok := scanCodes[name]; ok {
		return ScanCode{Code: code, Extended: extendedKeys[name]}, nil
	}

	if vk, ok := event.ParseFallback(name); ok {
		code, err := vkToScan(vk)
		if err != nil {
			return ScanCode{}, &UnresolvedKeyError{Key: name}
		}
		return ScanCode{Code: code}, nil
	}

	if event.IsCharacter(name) {
		r := unicode.ToUpper([]rune(name)[0])
		if r <= 0xFF {
			code, err := vkToScan(int(r))
			if err != nil {
				return ScanCode{}, &UnresolvedKeyError{Key: name}
			}
			return ScanCode{Code: code}, nil
		}
	}

	return ScanCode{}, &UnresolvedKeyError{Key: name}
}
