//go:build windows

package keyboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/windows"

	"micmute/keys"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	procMapVirtualKeyW   = user32.NewProc("MapVirtualKeyW")
)

const mapvkVscToVkEx = 3

const capturePoll = 10 * time.Millisecond

type pollSource struct {
	vk map[keys.Key]uint16
}

// New creates a source that samples GetAsyncKeyState.
func New() Source {
	return &pollSource{vk: resolveVirtualKeys(nil)}
}

// Open resolves layout-dependent keys against the active keyboard layout.
func (s *pollSource) Open() error {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoKeyboard, err)
	}
	if procMapVirtualKeyW.Find() == nil {
		s.vk = resolveVirtualKeys(scanToVK)
	}
	return nil
}

func scanToVK(scan uint16) uint16 {
	r, _, _ := procMapVirtualKeyW.Call(uintptr(scan), mapvkVscToVkEx)
	return uint16(r)
}

func (s *pollSource) Close() {}

func asyncDown(vk uint16) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

func (s *pollSource) IsDown(k keys.Key) bool {
	vk, ok := s.vk[k]
	return ok && asyncDown(vk)
}

// NextKeyDown polls every mapped key and returns the first one that goes
// from up to down after the call begins.
func (s *pollSource) NextKeyDown(ctx context.Context) (keys.Key, error) {
	all := keys.All()
	prev := make(map[keys.Key]bool, len(all))
	for _, k := range all {
		prev[k] = s.IsDown(k)
	}

	ticker := time.NewTicker(capturePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
		for _, k := range all {
			down := s.IsDown(k)
			if down && !prev[k] {
				return k, nil
			}
			prev[k] = down
		}
	}
}

// Diagnose checks that key state can be sampled.
func Diagnose() (string, error) {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return "", fmt.Errorf("GetAsyncKeyState unavailable: %w", err)
	}
	return "key state polling available (GetAsyncKeyState)", nil
}
