//go:build darwin

package keyboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.design/x/hotkey"

	"micmute/keys"
)

// macOS gives no unprivileged access to raw key state, so the bound
// combination is registered as a global hotkey and its press/release
// events stand in for "both keys held".
var darwinKeys = map[keys.Key]hotkey.Key{
	keys.A: hotkey.KeyA, keys.B: hotkey.KeyB, keys.C: hotkey.KeyC, keys.D: hotkey.KeyD,
	keys.E: hotkey.KeyE, keys.F: hotkey.KeyF, keys.G: hotkey.KeyG, keys.H: hotkey.KeyH,
	keys.I: hotkey.KeyI, keys.J: hotkey.KeyJ, keys.K: hotkey.KeyK, keys.L: hotkey.KeyL,
	keys.M: hotkey.KeyM, keys.N: hotkey.KeyN, keys.O: hotkey.KeyO, keys.P: hotkey.KeyP,
	keys.Q: hotkey.KeyQ, keys.R: hotkey.KeyR, keys.S: hotkey.KeyS, keys.T: hotkey.KeyT,
	keys.U: hotkey.KeyU, keys.V: hotkey.KeyV, keys.W: hotkey.KeyW, keys.X: hotkey.KeyX,
	keys.Y: hotkey.KeyY, keys.Z: hotkey.KeyZ,
	keys.Num0: hotkey.Key0, keys.Num1: hotkey.Key1, keys.Num2: hotkey.Key2, keys.Num3: hotkey.Key3,
	keys.Num4: hotkey.Key4, keys.Num5: hotkey.Key5, keys.Num6: hotkey.Key6, keys.Num7: hotkey.Key7,
	keys.Num8: hotkey.Key8, keys.Num9: hotkey.Key9,
	keys.F1: hotkey.KeyF1, keys.F2: hotkey.KeyF2, keys.F3: hotkey.KeyF3, keys.F4: hotkey.KeyF4,
	keys.F5: hotkey.KeyF5, keys.F6: hotkey.KeyF6, keys.F7: hotkey.KeyF7, keys.F8: hotkey.KeyF8,
	keys.F9: hotkey.KeyF9, keys.F10: hotkey.KeyF10, keys.F11: hotkey.KeyF11, keys.F12: hotkey.KeyF12,
	keys.Space: hotkey.KeySpace, keys.Enter: hotkey.KeyReturn, keys.Esc: hotkey.KeyEscape,
	keys.Tab: hotkey.KeyTab, keys.Backspace: hotkey.KeyDelete,
	keys.Left: hotkey.KeyLeft, keys.Right: hotkey.KeyRight, keys.Up: hotkey.KeyUp, keys.Down: hotkey.KeyDown,
	keys.Grave: hotkey.Key(0x32), // kVK_ANSI_Grave
}

type hotkeySource struct {
	mu    sync.Mutex
	hk    *hotkey.Hotkey
	bound keys.Key
	stop  chan struct{}
	down  atomic.Bool
}

// New creates a source backed by a registered Shift+key hotkey.
func New() Source {
	return &hotkeySource{}
}

func (s *hotkeySource) Open() error { return nil }

func (s *hotkeySource) Bind(k keys.Key) error {
	code, ok := darwinKeys[k]
	if !ok {
		return fmt.Errorf("%s cannot be registered as a macOS hotkey", k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked()

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModShift}, code)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering Shift+%s: %w", k, err)
	}
	stop := make(chan struct{})
	s.hk, s.bound, s.stop = hk, k, stop
	s.down.Store(false)
	go s.watch(hk, stop)
	return nil
}

func (s *hotkeySource) watch(hk *hotkey.Hotkey, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-hk.Keydown():
			s.down.Store(true)
		case <-hk.Keyup():
			s.down.Store(false)
		}
	}
}

func (s *hotkeySource) unregisterLocked() {
	if s.hk == nil {
		return
	}
	close(s.stop)
	s.hk.Unregister()
	s.hk = nil
	s.down.Store(false)
}

// IsDown only knows the registered pair: both report held while the
// hotkey is down.
func (s *hotkeySource) IsDown(k keys.Key) bool {
	s.mu.Lock()
	bound := s.bound
	s.mu.Unlock()
	if k != bound && k != keys.LeftShift {
		return false
	}
	return s.down.Load()
}

func (s *hotkeySource) NextKeyDown(context.Context) (keys.Key, error) {
	return 0, ErrCaptureUnsupported
}

func (s *hotkeySource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked()
}

// Diagnose checks hotkey availability and returns a status message.
func Diagnose() (string, error) {
	return "hotkey support available (Shift+key registration)", nil
}
