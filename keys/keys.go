// Package keys defines the platform-neutral key codes used for the mute
// shortcut. Codes follow the Linux input event numbering (KEY_*), which is
// also the value persisted in the shortcut document.
package keys

import (
	"fmt"
	"sort"
	"strings"
)

type Key uint16

// Modifier is the fixed modifier held together with the bound key.
const Modifier = LeftShift

const (
	Esc        Key = 1
	Num1       Key = 2
	Num2       Key = 3
	Num3       Key = 4
	Num4       Key = 5
	Num5       Key = 6
	Num6       Key = 7
	Num7       Key = 8
	Num8       Key = 9
	Num9       Key = 10
	Num0       Key = 11
	Minus      Key = 12
	Equal      Key = 13
	Backspace  Key = 14
	Tab        Key = 15
	Q          Key = 16
	W          Key = 17
	E          Key = 18
	R          Key = 19
	T          Key = 20
	Y          Key = 21
	U          Key = 22
	I          Key = 23
	O          Key = 24
	P          Key = 25
	LeftBrace  Key = 26
	RightBrace Key = 27
	Enter      Key = 28
	LeftCtrl   Key = 29
	A          Key = 30
	S          Key = 31
	D          Key = 32
	F          Key = 33
	G          Key = 34
	H          Key = 35
	J          Key = 36
	K          Key = 37
	L          Key = 38
	Semicolon  Key = 39
	Apostrophe Key = 40
	Grave      Key = 41
	LeftShift  Key = 42
	Backslash  Key = 43
	Z          Key = 44
	X          Key = 45
	C          Key = 46
	V          Key = 47
	B          Key = 48
	N          Key = 49
	M          Key = 50
	Comma      Key = 51
	Dot        Key = 52
	Slash      Key = 53
	RightShift Key = 54
	KPAsterisk Key = 55
	LeftAlt    Key = 56
	Space      Key = 57
	CapsLock   Key = 58
	F1         Key = 59
	F2         Key = 60
	F3         Key = 61
	F4         Key = 62
	F5         Key = 63
	F6         Key = 64
	F7         Key = 65
	F8         Key = 66
	F9         Key = 67
	F10        Key = 68
	NumLock    Key = 69
	ScrollLock Key = 70
	KP7        Key = 71
	KP8        Key = 72
	KP9        Key = 73
	KPMinus    Key = 74
	KP4        Key = 75
	KP5        Key = 76
	KP6        Key = 77
	KPPlus     Key = 78
	KP1        Key = 79
	KP2        Key = 80
	KP3        Key = 81
	KP0        Key = 82
	KPDot      Key = 83
	Key102nd   Key = 86
	F11        Key = 87
	F12        Key = 88
	KPEnter    Key = 96
	RightCtrl  Key = 97
	KPSlash    Key = 98
	SysRq      Key = 99
	RightAlt   Key = 100
	Home       Key = 102
	Up         Key = 103
	PageUp     Key = 104
	Left       Key = 105
	Right      Key = 106
	End        Key = 107
	Down       Key = 108
	PageDown   Key = 109
	Insert     Key = 110
	Delete     Key = 111
	Pause      Key = 119
	LeftMeta   Key = 125
	RightMeta  Key = 126
	Compose    Key = 127
	F13        Key = 183
	F14        Key = 184
	F15        Key = 185
	F16        Key = 186
	F17        Key = 187
	F18        Key = 188
	F19        Key = 189
	F20        Key = 190
	F21        Key = 191
	F22        Key = 192
	F23        Key = 193
	F24        Key = 194
)

// Default is bound when nothing usable is persisted.
const Default = Grave

var names = map[Key]string{
	Esc: "Esc", Num1: "1", Num2: "2", Num3: "3", Num4: "4", Num5: "5",
	Num6: "6", Num7: "7", Num8: "8", Num9: "9", Num0: "0",
	Minus: "Minus", Equal: "Equal", Backspace: "Backspace", Tab: "Tab",
	Q: "Q", W: "W", E: "E", R: "R", T: "T", Y: "Y", U: "U", I: "I", O: "O", P: "P",
	LeftBrace: "LeftBrace", RightBrace: "RightBrace", Enter: "Enter", LeftCtrl: "LeftCtrl",
	A: "A", S: "S", D: "D", F: "F", G: "G", H: "H", J: "J", K: "K", L: "L",
	Semicolon: "Semicolon", Apostrophe: "Apostrophe", Grave: "Grave",
	LeftShift: "LeftShift", Backslash: "Backslash",
	Z: "Z", X: "X", C: "C", V: "V", B: "B", N: "N", M: "M",
	Comma: "Comma", Dot: "Dot", Slash: "Slash", RightShift: "RightShift",
	KPAsterisk: "KPAsterisk", LeftAlt: "LeftAlt", Space: "Space", CapsLock: "CapsLock",
	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",
	NumLock: "NumLock", ScrollLock: "ScrollLock",
	KP0: "KP0", KP1: "KP1", KP2: "KP2", KP3: "KP3", KP4: "KP4",
	KP5: "KP5", KP6: "KP6", KP7: "KP7", KP8: "KP8", KP9: "KP9",
	KPMinus: "KPMinus", KPPlus: "KPPlus", KPDot: "KPDot", KPEnter: "KPEnter", KPSlash: "KPSlash",
	Key102nd: "102nd", RightCtrl: "RightCtrl", SysRq: "SysRq", RightAlt: "RightAlt",
	Home: "Home", Up: "Up", PageUp: "PageUp", Left: "Left", Right: "Right",
	End: "End", Down: "Down", PageDown: "PageDown", Insert: "Insert", Delete: "Delete",
	Pause: "Pause", LeftMeta: "LeftMeta", RightMeta: "RightMeta", Compose: "Compose",
	F13: "F13", F14: "F14", F15: "F15", F16: "F16", F17: "F17", F18: "F18",
	F19: "F19", F20: "F20", F21: "F21", F22: "F22", F23: "F23", F24: "F24",
}

var byName = func() map[string]Key {
	m := make(map[string]Key, len(names))
	for k, n := range names {
		m[strings.ToLower(n)] = k
	}
	return m
}()

// String returns the canonical platform name of k.
func (k Key) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// Known reports whether k is in the key table.
func Known(k Key) bool {
	_, ok := names[k]
	return ok
}

// Valid reports whether k may be bound as the shortcut key.
func Valid(k Key) bool {
	return k != Modifier && Known(k)
}

// Parse resolves a canonical key name, case-insensitively.
func Parse(name string) (Key, error) {
	k, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// All returns every known key in ascending code order.
func All() []Key {
	all := make([]Key, 0, len(names))
	for k := range names {
		all = append(all, k)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}
