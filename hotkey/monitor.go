// Package hotkey watches for the mute shortcut (left Shift plus the bound
// key) and toggles the endpoint once per physical press.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"micmute/keyboard"
	"micmute/keys"
	"micmute/log"
	"micmute/mute"
)

// DefaultInterval is how often the keyboard is sampled.
const DefaultInterval = 50 * time.Millisecond

var (
	ErrInvalidBinding = errors.New("invalid shortcut key")
	ErrCaptureActive  = errors.New("key capture in progress")
	// ErrCaptureCancelled is returned when Esc is pressed during capture.
	ErrCaptureCancelled = fmt.Errorf("key capture cancelled: %w", context.Canceled)
)

// chordKeys are never captured. A key pressed while one of them is held is
// part of a chord (Ctrl+C) rather than a binding.
var chordKeys = map[keys.Key]bool{
	keys.LeftCtrl: true, keys.RightCtrl: true,
	keys.LeftAlt: true, keys.RightAlt: true,
	keys.LeftMeta: true, keys.RightMeta: true,
}

// Toggler flips the mute state and reports the new one.
type Toggler interface {
	Toggle() (mute.State, error)
}

// BindingStore persists the bound key. Load never fails; it falls back to
// the default key.
type BindingStore interface {
	Load() keys.Key
	Save(k keys.Key) error
}

type Trigger int

const (
	TriggerShortcut Trigger = iota
	TriggerManual
)

func (t Trigger) String() string {
	if t == TriggerManual {
		return "manual"
	}
	return "shortcut"
}

// ToggleEvent describes one toggle attempt. When Err is set, State is not
// meaningful.
type ToggleEvent struct {
	State   mute.State
	Err     error
	Binding keys.Key
	Source  Trigger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// Monitor polls the keyboard and toggles mute once each time the bound key
// and left Shift become held together.
type Monitor struct {
	src      keyboard.State
	ctl      Toggler
	store    BindingStore
	interval time.Duration

	// mu covers one tick and one rebinding+save.
	mu      sync.Mutex
	binding keys.Key
	armed   bool

	capturing atomic.Bool

	obsMu     sync.Mutex
	observers []func(ToggleEvent)

	runMu sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

// New builds a stopped Monitor. The binding comes from store; an invalid
// stored key falls back to keys.Default.
func New(src keyboard.State, ctl Toggler, store BindingStore, opts ...Option) *Monitor {
	m := &Monitor{
		src:      src,
		ctl:      ctl,
		store:    store,
		interval: DefaultInterval,
		binding:  store.Load(),
	}
	if !keys.Valid(m.binding) {
		m.binding = keys.Default
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Interval is the effective poll interval.
func (m *Monitor) Interval() time.Duration { return m.interval }

// Start begins polling. Calling it on a running monitor does nothing.
func (m *Monitor) Start() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.stop != nil {
		return
	}

	if b, ok := m.src.(keyboard.Binder); ok {
		m.mu.Lock()
		if err := b.Bind(m.binding); err != nil {
			log.Warnf("bind %s: %v", keys.ShortcutLabel(m.binding), err)
		}
		m.mu.Unlock()
	}

	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
}

// Stop halts polling and returns once the loop has exited.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
	m.stop, m.done = nil, nil
}

func (m *Monitor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	m.mu.Lock()
	if m.capturing.Load() {
		m.mu.Unlock()
		return
	}

	held := m.src.IsDown(keys.Modifier) && m.src.IsDown(m.binding)
	if !held {
		m.armed = false
		m.mu.Unlock()
		return
	}
	if m.armed {
		m.mu.Unlock()
		return
	}

	// Armed even if the toggle fails, so a held combo fires once.
	m.armed = true
	ev := m.toggleLocked(TriggerShortcut)
	m.mu.Unlock()

	m.notify(ev)
}

func (m *Monitor) toggleLocked(src Trigger) ToggleEvent {
	st, err := m.ctl.Toggle()
	return ToggleEvent{State: st, Err: err, Binding: m.binding, Source: src}
}

// ToggleNow toggles immediately without touching the press state. During
// capture nothing is toggled and the event carries ErrCaptureActive.
func (m *Monitor) ToggleNow() ToggleEvent {
	m.mu.Lock()
	if m.capturing.Load() {
		ev := ToggleEvent{Err: ErrCaptureActive, Binding: m.binding, Source: TriggerManual}
		m.mu.Unlock()
		return ev
	}
	ev := m.toggleLocked(TriggerManual)
	m.mu.Unlock()

	m.notify(ev)
	return ev
}

// OnToggled registers fn to run after every toggle, on the goroutine that
// performed it.
func (m *Monitor) OnToggled(fn func(ToggleEvent)) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

func (m *Monitor) notify(ev ToggleEvent) {
	m.obsMu.Lock()
	obs := make([]func(ToggleEvent), len(m.observers))
	copy(obs, m.observers)
	m.obsMu.Unlock()

	for _, fn := range obs {
		fn(ev)
	}
}

func (m *Monitor) Binding() keys.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}

func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Monitor) Capturing() bool { return m.capturing.Load() }

// SetBinding replaces the shortcut key and persists it. A save failure is
// returned but the new key stays active.
func (m *Monitor) SetBinding(k keys.Key) error {
	if !keys.Valid(k) {
		return fmt.Errorf("%w: %s", ErrInvalidBinding, keys.DisplayName(k))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.src.(keyboard.Binder); ok {
		if err := b.Bind(k); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidBinding, keys.DisplayName(k), err)
		}
	}

	prev := m.binding
	m.binding = k
	err := m.store.Save(k)
	log.Rebound(keys.DisplayName(prev), keys.DisplayName(k), err)
	return err
}

// Capture suspends the shortcut, waits for the next bare key from r and
// binds it. Esc cancels with ErrCaptureCancelled. Modifiers and keys pressed
// while Ctrl, Alt or Meta is held are skipped.
func (m *Monitor) Capture(ctx context.Context, r keyboard.KeyReader) (keys.Key, error) {
	if !m.capturing.CompareAndSwap(false, true) {
		return 0, ErrCaptureActive
	}
	// Wait out a tick that read the flag before it was set.
	m.mu.Lock()
	m.mu.Unlock()

	defer func() {
		// Keys still held from the capture press must be released before
		// the shortcut can fire.
		m.mu.Lock()
		m.armed = true
		m.mu.Unlock()
		m.capturing.Store(false)
	}()

	for {
		k, err := r.NextKeyDown(ctx)
		if err != nil {
			return 0, err
		}
		if k == keys.Esc {
			return 0, ErrCaptureCancelled
		}
		if k == keys.Modifier || chordKeys[k] || !keys.Valid(k) || m.chordHeld() {
			continue
		}
		return k, m.SetBinding(k)
	}
}

func (m *Monitor) chordHeld() bool {
	for k := range chordKeys {
		if m.src.IsDown(k) {
			return true
		}
	}
	return false
}
