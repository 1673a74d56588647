package event

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// RawKey is an untranslated key notification as delivered by a capture
// source: the layout-dependent virtual-key code, the character the key
// produced under the active layout (0 if none), and an optional symbolic
// name for non-character keys.
type RawKey struct {
	VK   int
	Rune rune
	Name string
}

// vkNames maps the virtual-key codes of named non-character keys to their
// canonical lowercase names. Generic (side-ambiguous) modifier codes fold to
// the left variant so a plain Shift notification and an explicit left Shift
// produce the same stream.
var vkNames = map[int]string{
	0x08: "backspace",
	0x09: "tab",
	0x0D: "enter",
	0x10: "shift_l", // generic shift
	0x11: "ctrl_l",  // generic ctrl
	0x12: "alt_l",   // generic alt
	0x13: "pause",
	0x14: "caps_lock",
	0x1B: "esc",
	0x20: "space",
	0x21: "page_up",
	0x22: "page_down",
	0x23: "end",
	0x24: "home",
	0x25: "left",
	0x26: "up",
	0x27: "right",
	0x28: "down",
	0x2C: "print_screen",
	0x2D: "insert",
	0x2E: "delete",
	0x5B: "cmd",
	0x5C: "cmd_r",
	0x70: "f1",
	0x71: "f2",
	0x72: "f3",
	0x73: "f4",
	0x74: "f5",
	0x75: "f6",
	0x76: "f7",
	0x77: "f8",
	0x78: "f9",
	0x79: "f10",
	0x7A: "f11",
	0x7B: "f12",
	0x90: "num_lock",
	0x91: "scroll_lock",
	0xA0: "shift_l",
	0xA1: "shift_r",
	0xA2: "ctrl_l",
	0xA3: "ctrl_r",
	0xA4: "alt_l",
	0xA5: "alt_r",
}

// altLayout maps the virtual-key range emitted by Cyrillic-layout keyboards
// for their letter keys back to the Latin letter on the same physical key,
// so a recording made under one layout replays identically under the other.
var altLayout = map[int]string{
	192: "a", 193: "b", 194: "c", 195: "d", 196: "e", 197: "f", 198: "g",
	199: "h", 200: "i", 201: "j", 202: "k", 203: "l", 204: "m", 205: "n",
	206: "o", 207: "p", 208: "q", 209: "r", 210: "s", 211: "t", 212: "u",
	213: "v", 214: "w", 215: "x", 216: "y", 217: "z",
	218: "[", 219: "]", 220: `\`, 221: ";", 222: "'", 223: "`",
}

// genericModifiers folds side-ambiguous symbolic names to the left variant.
var genericModifiers = map[string]string{
	"shift": "shift_l",
	"ctrl":  "ctrl_l",
	"alt":   "alt_l",
}

// Canonical resolves a raw key notification to its canonical identifier:
// a lowercase symbolic name for recognized keys, the produced character for
// printable keys (letters folded to their Latin lowercase form regardless of
// layout), or a keycode fallback token for anything unresolved.
func Canonical(k RawKey) string {
	if k.Name != "" {
		name := strings.ToLower(k.Name)
		if folded, ok := genericModifiers[name]; ok {
			return folded
		}
		return norm.NFC.String(name)
	}

	if name, ok := vkNames[k.VK]; ok {
		return name
	}

	if unicode.IsLetter(k.Rune) {
		switch {
		case k.VK >= 'A' && k.VK <= 'Z':
			return string(rune(k.VK - 'A' + 'a'))
		case k.VK >= 192 && k.VK <= 223:
			if latin, ok := altLayout[k.VK]; ok {
				return latin
			}
			return FallbackName(k.VK)
		default:
			return norm.NFC.String(strings.ToLower(string(k.Rune)))
		}
	}

	if k.Rune != 0 && unicode.IsGraphic(k.Rune) {
		return norm.NFC.String(string(k.Rune))
	}

	return FallbackName(k.VK)
}

// FallbackName encodes an unrecognized virtual-key code as a canonical
// fallback token.
func FallbackName(vk int) string {
	return fmt.Sprintf("keycode(%d)", vk)
}

// ParseFallback extracts the virtual-key code from a fallback token.
// The second return is false if name is not a fallback token.
func ParseFallback(name string) (int, bool) {
	if !strings.HasPrefix(name, "keycode(") || !strings.HasSuffix(name, ")") {
		return 0, false
	}
	var vk int
	if _, err := fmt.Sscanf(name, "keycode(%d)", &vk); err != nil {
		return 0, false
	}
	return vk, true
}

// IsCharacter reports whether name is a single printable character rather
// than a symbolic key name.
func IsCharacter(name string) bool {
	return utf8.RuneCountInString(name) == 1
}
