package keyboard

import (
	"strings"

	"micmute/keys"
)

// terminalKeys maps key names as a terminal reports them (bubbletea's
// KeyMsg strings) to physical keys. Shifted symbols map to the key that
// produces them on a US layout.
var terminalKeys = map[string]keys.Key{
	" ": keys.Space, "space": keys.Space,
	"enter": keys.Enter, "tab": keys.Tab, "esc": keys.Esc, "backspace": keys.Backspace,
	"up": keys.Up, "down": keys.Down, "left": keys.Left, "right": keys.Right,
	"home": keys.Home, "end": keys.End, "pgup": keys.PageUp, "pgdown": keys.PageDown,
	"delete": keys.Delete, "insert": keys.Insert,
	"`": keys.Grave, "~": keys.Grave,
	"-": keys.Minus, "_": keys.Minus,
	"=": keys.Equal, "+": keys.Equal,
	"[": keys.LeftBrace, "{": keys.LeftBrace,
	"]": keys.RightBrace, "}": keys.RightBrace,
	";": keys.Semicolon, ":": keys.Semicolon,
	"'": keys.Apostrophe, "\"": keys.Apostrophe,
	"\\": keys.Backslash, "|": keys.Backslash,
	",": keys.Comma, "<": keys.Comma,
	".": keys.Dot, ">": keys.Dot,
	"/": keys.Slash, "?": keys.Slash,
	"1": keys.Num1, "!": keys.Num1,
	"2": keys.Num2, "@": keys.Num2,
	"3": keys.Num3, "#": keys.Num3,
	"4": keys.Num4, "$": keys.Num4,
	"5": keys.Num5, "%": keys.Num5,
	"6": keys.Num6, "^": keys.Num6,
	"7": keys.Num7, "&": keys.Num7,
	"8": keys.Num8, "*": keys.Num8,
	"9": keys.Num9, "(": keys.Num9,
	"0": keys.Num0, ")": keys.Num0,
}

// FromTerminal resolves a terminal key name to a physical key.
func FromTerminal(s string) (keys.Key, bool) {
	if k, ok := terminalKeys[s]; ok {
		return k, true
	}
	if len(s) == 1 && ((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z')) {
		k, err := keys.Parse(s)
		return k, err == nil
	}
	if len(s) >= 2 && len(s) <= 3 && strings.HasPrefix(s, "f") {
		k, err := keys.Parse(s)
		return k, err == nil
	}
	return 0, false
}
