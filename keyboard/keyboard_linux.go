//go:build linux

package keyboard

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"micmute/keys"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
)

// input_event is 24 bytes on 64-bit Linux:
// timeval (16 bytes) + type (2) + code (2) + value (4)
const inputEventSize = 24

type evdevSource struct {
	mu    sync.Mutex
	held  map[keys.Key]int // per-key count across devices
	downs chan keys.Key
	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

// New creates a source reading /dev/input directly.
// Requires the user to be in the 'input' group.
func New() Source {
	return &evdevSource{
		held:  make(map[keys.Key]int),
		downs: make(chan keys.Key, 16),
	}
}

func (s *evdevSource) Open() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("%w (is user in 'input' group?)", ErrNoKeyboard)
	}

	s.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		s.files = append(s.files, f)
		go s.readEvents(f)
	}

	if len(s.files) == 0 {
		return fmt.Errorf("%w: could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)", ErrNoKeyboard)
	}

	return nil
}

func (s *evdevSource) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	// Keys this device reported held; released on exit so a vanished
	// keyboard cannot leave a key stuck down.
	local := make(map[keys.Key]bool)
	defer func() {
		s.mu.Lock()
		for k := range local {
			s.releaseLocked(k)
		}
		s.mu.Unlock()
	}()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		decodeEvents(buf[:n], func(k keys.Key, pressed bool) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if pressed {
				if local[k] {
					return
				}
				local[k] = true
				s.held[k]++
				select {
				case s.downs <- k:
				default:
				}
				return
			}
			if local[k] {
				delete(local, k)
				s.releaseLocked(k)
			}
		})
	}
}

func (s *evdevSource) releaseLocked(k keys.Key) {
	if s.held[k] <= 1 {
		delete(s.held, k)
		return
	}
	s.held[k]--
}

// decodeEvents walks raw input_event records and reports key presses and
// releases. Autorepeat (value 2) and non-key events are skipped.
func decodeEvents(buf []byte, fn func(k keys.Key, pressed bool)) {
	for i := 0; i+inputEventSize <= len(buf); i += inputEventSize {
		evType := binary.LittleEndian.Uint16(buf[i+16:])
		evCode := binary.LittleEndian.Uint16(buf[i+18:])
		evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

		if evType != evKey {
			continue
		}
		switch evValue {
		case keyPress:
			fn(keys.Key(evCode), true)
		case keyRelease:
			fn(keys.Key(evCode), false)
		}
	}
}

func (s *evdevSource) IsDown(k keys.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[k] > 0
}

// NextKeyDown returns the first key pressed after the call begins.
func (s *evdevSource) NextKeyDown(ctx context.Context) (keys.Key, error) {
drain:
	for {
		select {
		case <-s.downs:
		default:
			break drain
		}
	}
	select {
	case k := <-s.downs:
		return k, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *evdevSource) Close() {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
		}
		for _, f := range s.files {
			f.Close()
		}
	})
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join("/dev/input", e.Name())
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, path)
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	// Real keyboards have long key capability bitmaps
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

// Diagnose checks evdev access and returns a status message.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("%w (is user in 'input' group?)", ErrNoKeyboard)
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
