package keyboard

import "micmute/keys"

// virtualKeys maps keys to US-layout Win32 virtual-key codes.
var virtualKeys = map[keys.Key]uint16{
	keys.Esc: 0x1B, keys.Backspace: 0x08, keys.Tab: 0x09, keys.Enter: 0x0D,
	keys.Space: 0x20, keys.CapsLock: 0x14, keys.Pause: 0x13, keys.SysRq: 0x2C,
	keys.PageUp: 0x21, keys.PageDown: 0x22, keys.End: 0x23, keys.Home: 0x24,
	keys.Left: 0x25, keys.Up: 0x26, keys.Right: 0x27, keys.Down: 0x28,
	keys.Insert: 0x2D, keys.Delete: 0x2E,
	keys.Num0: 0x30, keys.Num1: 0x31, keys.Num2: 0x32, keys.Num3: 0x33, keys.Num4: 0x34,
	keys.Num5: 0x35, keys.Num6: 0x36, keys.Num7: 0x37, keys.Num8: 0x38, keys.Num9: 0x39,
	keys.A: 0x41, keys.B: 0x42, keys.C: 0x43, keys.D: 0x44, keys.E: 0x45, keys.F: 0x46,
	keys.G: 0x47, keys.H: 0x48, keys.I: 0x49, keys.J: 0x4A, keys.K: 0x4B, keys.L: 0x4C,
	keys.M: 0x4D, keys.N: 0x4E, keys.O: 0x4F, keys.P: 0x50, keys.Q: 0x51, keys.R: 0x52,
	keys.S: 0x53, keys.T: 0x54, keys.U: 0x55, keys.V: 0x56, keys.W: 0x57, keys.X: 0x58,
	keys.Y: 0x59, keys.Z: 0x5A,
	keys.LeftMeta: 0x5B, keys.RightMeta: 0x5C, keys.Compose: 0x5D,
	keys.KP0: 0x60, keys.KP1: 0x61, keys.KP2: 0x62, keys.KP3: 0x63, keys.KP4: 0x64,
	keys.KP5: 0x65, keys.KP6: 0x66, keys.KP7: 0x67, keys.KP8: 0x68, keys.KP9: 0x69,
	keys.KPAsterisk: 0x6A, keys.KPPlus: 0x6B, keys.KPMinus: 0x6D, keys.KPDot: 0x6E, keys.KPSlash: 0x6F,
	keys.F1: 0x70, keys.F2: 0x71, keys.F3: 0x72, keys.F4: 0x73, keys.F5: 0x74, keys.F6: 0x75,
	keys.F7: 0x76, keys.F8: 0x77, keys.F9: 0x78, keys.F10: 0x79, keys.F11: 0x7A, keys.F12: 0x7B,
	keys.F13: 0x7C, keys.F14: 0x7D, keys.F15: 0x7E, keys.F16: 0x7F, keys.F17: 0x80, keys.F18: 0x81,
	keys.F19: 0x82, keys.F20: 0x83, keys.F21: 0x84, keys.F22: 0x85, keys.F23: 0x86, keys.F24: 0x87,
	keys.NumLock: 0x90, keys.ScrollLock: 0x91,
	keys.LeftShift: 0xA0, keys.RightShift: 0xA1, keys.LeftCtrl: 0xA2, keys.RightCtrl: 0xA3,
	keys.LeftAlt: 0xA4, keys.RightAlt: 0xA5,
	keys.Semicolon: 0xBA, keys.Equal: 0xBB, keys.Comma: 0xBC, keys.Minus: 0xBD,
	keys.Dot: 0xBE, keys.Slash: 0xBF, keys.Grave: 0xC0,
	keys.LeftBrace: 0xDB, keys.Backslash: 0xDC, keys.RightBrace: 0xDD, keys.Apostrophe: 0xDE,
	keys.Key102nd: 0xE2,
}

// layoutKeys produce a different virtual key per keyboard layout. Their
// evdev codes equal the set-1 scan codes of the same physical key.
var layoutKeys = []keys.Key{
	keys.Grave, keys.Minus, keys.Equal, keys.LeftBrace, keys.RightBrace,
	keys.Semicolon, keys.Apostrophe, keys.Backslash, keys.Comma, keys.Dot,
	keys.Slash, keys.Key102nd,
}

// resolveVirtualKeys builds a table where every virtual key belongs to
// exactly one physical key. Layout keys are looked up by scan code through
// scanToVK; a static entry whose code was claimed by a layout key is
// dropped. A nil scanToVK returns the US table.
func resolveVirtualKeys(scanToVK func(scan uint16) uint16) map[keys.Key]uint16 {
	out := make(map[keys.Key]uint16, len(virtualKeys))
	used := make(map[uint16]bool, len(virtualKeys))

	if scanToVK != nil {
		for _, k := range layoutKeys {
			if vk := scanToVK(uint16(k)); vk != 0 && !used[vk] {
				out[k] = vk
				used[vk] = true
			}
		}
	}
	for k, vk := range virtualKeys {
		if _, done := out[k]; done || used[vk] {
			continue
		}
		out[k] = vk
		used[vk] = true
	}
	return out
}
