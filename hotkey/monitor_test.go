package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"micmute/keyboard"
	"micmute/keys"
	"micmute/mute"
	"micmute/shortcut"
)

type memStore struct {
	mu      sync.Mutex
	key     keys.Key
	saves   int
	saveErr error
}

func (s *memStore) Load() keys.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *memStore) Save(k keys.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.key = k
	return nil
}

func (s *memStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type recorder struct {
	mu     sync.Mutex
	events []ToggleEvent
}

func (r *recorder) record(ev ToggleEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) last() ToggleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	kb    *keyboard.Fake
	ep    *mute.FakeEndpoint
	store *memStore
	mon   *Monitor
	rec   *recorder
}

func newFixture(t *testing.T, bound keys.Key) *fixture {
	t.Helper()
	f := &fixture{
		kb:    keyboard.NewFake(),
		ep:    mute.NewFakeEndpoint(false),
		store: &memStore{key: bound},
		rec:   &recorder{},
	}
	f.mon = New(f.kb, mute.NewController(f.ep), f.store)
	f.mon.OnToggled(f.rec.record)
	return f
}

func TestShortcutTogglesOncePerHold(t *testing.T) {
	f := newFixture(t, keys.M)

	f.kb.Press(keys.LeftShift, keys.M)
	f.mon.tick()
	if f.rec.count() != 1 {
		t.Fatalf("toggles = %d, want 1", f.rec.count())
	}
	if ev := f.rec.last(); ev.State != mute.Muted || ev.Err != nil || ev.Source != TriggerShortcut {
		t.Errorf("unexpected event %+v", ev)
	}

	for range 5 {
		f.mon.tick()
	}
	if f.rec.count() != 1 {
		t.Fatalf("held combo retriggered: toggles = %d", f.rec.count())
	}

	f.kb.Release(keys.LeftShift)
	f.mon.tick()
	if f.mon.Armed() {
		t.Error("still armed after Shift release")
	}

	f.kb.Press(keys.LeftShift)
	f.mon.tick()
	if f.rec.count() != 2 {
		t.Fatalf("toggles = %d, want 2", f.rec.count())
	}
	if f.rec.last().State != mute.Unmuted {
		t.Error("second press should unmute")
	}
}

func TestReleaseEitherKeyDisarms(t *testing.T) {
	for _, k := range []keys.Key{keys.LeftShift, keys.Grave} {
		t.Run(k.String(), func(t *testing.T) {
			f := newFixture(t, keys.Grave)
			f.kb.Press(keys.LeftShift, keys.Grave)
			f.mon.tick()
			if !f.mon.Armed() {
				t.Fatal("not armed after press")
			}
			f.kb.Release(k)
			f.mon.tick()
			if f.mon.Armed() {
				t.Error("still armed")
			}
			if f.rec.count() != 1 {
				t.Errorf("toggles = %d, want 1", f.rec.count())
			}
		})
	}
}

func TestBoundKeyAloneDoesNothing(t *testing.T) {
	f := newFixture(t, keys.M)
	f.kb.Press(keys.M)
	f.mon.tick()
	f.kb.Set(keys.LeftShift, keys.N)
	f.mon.tick()
	if f.rec.count() != 0 {
		t.Errorf("toggles = %d, want 0", f.rec.count())
	}
}

func TestInvalidStoredKeyFallsBack(t *testing.T) {
	f := newFixture(t, keys.LeftShift)
	if f.mon.Binding() != keys.Default {
		t.Errorf("binding = %v, want default", f.mon.Binding())
	}
}

func TestSetBindingRejectsModifier(t *testing.T) {
	f := newFixture(t, keys.M)
	for _, k := range []keys.Key{keys.LeftShift, keys.Key(0), keys.Key(999)} {
		err := f.mon.SetBinding(k)
		if !errors.Is(err, ErrInvalidBinding) {
			t.Errorf("SetBinding(%v) = %v, want ErrInvalidBinding", k, err)
		}
	}
	if f.store.Saves() != 0 {
		t.Errorf("store written %d times for rejected keys", f.store.Saves())
	}
	if f.mon.Binding() != keys.M {
		t.Errorf("binding changed to %v", f.mon.Binding())
	}
}

func TestSetBindingPersists(t *testing.T) {
	f := newFixture(t, keys.M)
	if err := f.mon.SetBinding(keys.F5); err != nil {
		t.Fatal(err)
	}
	if f.store.Load() != keys.F5 {
		t.Errorf("stored %v, want F5", f.store.Load())
	}
}

func TestSetBindingSaveFailureKeepsKey(t *testing.T) {
	f := newFixture(t, keys.M)
	f.store.saveErr = fmt.Errorf("%w: disk full", shortcut.ErrConfigWrite)

	err := f.mon.SetBinding(keys.F5)
	if !errors.Is(err, shortcut.ErrConfigWrite) {
		t.Fatalf("got %v, want ErrConfigWrite", err)
	}
	if f.mon.Binding() != keys.F5 {
		t.Errorf("binding = %v, want F5 in memory", f.mon.Binding())
	}

	f.kb.Press(keys.LeftShift, keys.F5)
	f.mon.tick()
	if f.rec.count() != 1 {
		t.Errorf("new binding did not fire")
	}
}

func TestRebindWhileArmed(t *testing.T) {
	f := newFixture(t, keys.M)
	f.kb.Press(keys.LeftShift, keys.M, keys.N)
	f.mon.tick()
	if f.rec.count() != 1 {
		t.Fatal("expected first toggle")
	}

	if err := f.mon.SetBinding(keys.N); err != nil {
		t.Fatal(err)
	}
	f.mon.tick()
	if f.rec.count() != 1 {
		t.Errorf("rebinding while held caused a toggle")
	}
}

func TestUnavailableEndpoint(t *testing.T) {
	f := newFixture(t, keys.M)
	f.ep.SetUnavailable(true)

	f.kb.Press(keys.LeftShift, keys.M)
	for range 3 {
		f.mon.tick()
	}
	if f.rec.count() != 1 {
		t.Fatalf("events = %d, want 1 per hold", f.rec.count())
	}
	if ev := f.rec.last(); !errors.Is(ev.Err, mute.ErrEndpointUnavailable) {
		t.Errorf("event err = %v", ev.Err)
	}
	if !f.mon.Armed() {
		t.Error("failed toggle should still arm")
	}

	f.ep.SetUnavailable(false)
	f.kb.Release(keys.M)
	f.mon.tick()
	f.kb.Press(keys.M)
	f.mon.tick()
	if ev := f.rec.last(); ev.Err != nil || ev.State != mute.Muted {
		t.Errorf("recovery event %+v", ev)
	}
}

func TestToggleNow(t *testing.T) {
	f := newFixture(t, keys.M)
	ev := f.mon.ToggleNow()
	if ev.Source != TriggerManual || ev.State != mute.Muted {
		t.Errorf("unexpected event %+v", ev)
	}
	if f.rec.count() != 1 {
		t.Error("observer not called")
	}
	if f.mon.Armed() {
		t.Error("ToggleNow changed press state")
	}
}

func TestObserversInOrder(t *testing.T) {
	f := newFixture(t, keys.M)
	var order []int
	f.mon.OnToggled(func(ToggleEvent) { order = append(order, 1) })
	f.mon.OnToggled(func(ToggleEvent) { order = append(order, 2) })
	f.mon.ToggleNow()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, keys.M)
	f.mon = New(f.kb, mute.NewController(f.ep), f.store, WithInterval(5*time.Millisecond))
	fired := make(chan ToggleEvent, 4)
	f.mon.OnToggled(func(ev ToggleEvent) { fired <- ev })

	f.mon.Stop() // before Start
	f.mon.Start()
	f.mon.Start()

	f.kb.Press(keys.LeftShift, keys.M)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for toggle")
	}

	f.mon.Stop()
	f.mon.Stop()

	writes := f.ep.Writes()
	f.kb.Set()
	time.Sleep(20 * time.Millisecond)
	f.kb.Press(keys.LeftShift, keys.M)
	time.Sleep(30 * time.Millisecond)
	if f.ep.Writes() != writes {
		t.Error("toggle ran after Stop returned")
	}
}

func TestStartBindsSource(t *testing.T) {
	f := newFixture(t, keys.F9)
	f.mon.Start()
	defer f.mon.Stop()
	if f.kb.Bound() != keys.F9 {
		t.Errorf("bound %v, want F9", f.kb.Bound())
	}
	if err := f.mon.SetBinding(keys.F10); err != nil {
		t.Fatal(err)
	}
	if f.kb.Bound() != keys.F10 {
		t.Errorf("bound %v after rebind, want F10", f.kb.Bound())
	}
}

func TestCapture(t *testing.T) {
	f := newFixture(t, keys.M)
	type result struct {
		k   keys.Key
		err error
	}
	res := make(chan result, 1)
	go func() {
		k, err := f.mon.Capture(context.Background(), f.kb)
		res <- result{k, err}
	}()

	deadline := time.After(time.Second)
	for !f.mon.Capturing() {
		select {
		case <-deadline:
			t.Fatal("capture did not start")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Shortcut is suspended while capturing.
	f.kb.Press(keys.LeftShift, keys.M)
	f.mon.tick()
	if f.rec.count() != 0 {
		t.Error("toggle fired during capture")
	}

	if _, err := f.mon.Capture(context.Background(), f.kb); !errors.Is(err, ErrCaptureActive) {
		t.Errorf("second capture = %v, want ErrCaptureActive", err)
	}

	f.kb.Emit(keys.LeftShift)
	f.kb.Emit(keys.F7)

	select {
	case r := <-res:
		if r.err != nil || r.k != keys.F7 {
			t.Fatalf("Capture = %v, %v", r.k, r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for capture")
	}

	if f.mon.Capturing() {
		t.Error("still capturing")
	}
	if f.mon.Binding() != keys.F7 || f.store.Load() != keys.F7 {
		t.Errorf("binding = %v stored = %v", f.mon.Binding(), f.store.Load())
	}

	// The capture press must be released before the new combo fires.
	f.kb.Set(keys.LeftShift, keys.F7)
	f.mon.tick()
	if f.rec.count() != 0 {
		t.Error("capture press toggled")
	}
	f.kb.Release(keys.F7)
	f.mon.tick()
	f.kb.Press(keys.F7)
	f.mon.tick()
	if f.rec.count() != 1 {
		t.Errorf("toggles = %d, want 1", f.rec.count())
	}
}

func TestCaptureCancelled(t *testing.T) {
	f := newFixture(t, keys.M)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.mon.Capture(ctx, f.kb)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", err)
	}
	if f.mon.Binding() != keys.M {
		t.Error("binding changed")
	}
	if f.mon.Capturing() {
		t.Error("still capturing")
	}
}

// blockingToggler holds its first Toggle call until release is closed.
type blockingToggler struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingToggler) Toggle() (mute.State, error) {
	if b.calls.Add(1) == 1 {
		b.entered <- struct{}{}
		<-b.release
	}
	return mute.Muted, nil
}

func TestStopWaitsForInFlightToggle(t *testing.T) {
	kb := keyboard.NewFake()
	tg := &blockingToggler{entered: make(chan struct{}, 1), release: make(chan struct{})}
	mon := New(kb, tg, &memStore{key: keys.M}, WithInterval(time.Millisecond))

	kb.Press(keys.LeftShift, keys.M)
	mon.Start()
	select {
	case <-tg.entered:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for toggle")
	}

	stopped := make(chan struct{})
	go func() {
		mon.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a toggle was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(tg.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after toggle completed")
	}

	calls := tg.calls.Load()
	if calls != 1 {
		t.Fatalf("toggles = %d, want 1", calls)
	}
	kb.Set()
	time.Sleep(10 * time.Millisecond)
	kb.Press(keys.LeftShift, keys.M)
	time.Sleep(30 * time.Millisecond)
	if tg.calls.Load() != calls {
		t.Error("toggle ran after Stop returned")
	}
}

func TestSetBindingBindFailure(t *testing.T) {
	f := newFixture(t, keys.M)
	f.mon.Start()
	defer f.mon.Stop()

	f.kb.FailBind(errors.New("registration refused"))
	if err := f.mon.SetBinding(keys.F5); !errors.Is(err, ErrInvalidBinding) {
		t.Fatalf("got %v, want ErrInvalidBinding", err)
	}
	if f.mon.Binding() != keys.M || f.kb.Bound() != keys.M {
		t.Errorf("binding = %v bound = %v, want M", f.mon.Binding(), f.kb.Bound())
	}
	if f.store.Saves() != 0 {
		t.Error("store written after bind failure")
	}
}

func startCapture(t *testing.T, f *fixture, ctx context.Context) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	r := keyboard.Merge(f.kb, keyboard.NewChan())
	go func() {
		_, err := f.mon.Capture(ctx, r)
		errc <- err
	}()
	deadline := time.After(time.Second)
	for !f.mon.Capturing() {
		select {
		case <-deadline:
			t.Fatal("capture did not start")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	return errc
}

func TestCaptureEscCancels(t *testing.T) {
	f := newFixture(t, keys.M)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	errc := startCapture(t, f, ctx)
	f.kb.Emit(keys.Esc)

	err := <-errc
	if !errors.Is(err, ErrCaptureCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want ErrCaptureCancelled", err)
	}
	if f.mon.Binding() != keys.M || f.store.Saves() != 0 {
		t.Errorf("binding = %v saves = %d after Esc", f.mon.Binding(), f.store.Saves())
	}
}

func TestCaptureSkipsCtrlChord(t *testing.T) {
	f := newFixture(t, keys.M)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f.kb.Press(keys.LeftCtrl)
	errc := startCapture(t, f, ctx)
	f.kb.Emit(keys.LeftCtrl)
	f.kb.Emit(keys.C)

	if err := <-errc; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if f.mon.Binding() != keys.M || f.store.Saves() != 0 {
		t.Fatalf("binding = %v saves = %d after Ctrl+C", f.mon.Binding(), f.store.Saves())
	}

	f.kb.Release(keys.LeftCtrl)
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	errc = startCapture(t, f, ctx2)
	f.kb.Emit(keys.F4)
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if f.mon.Binding() != keys.F4 {
		t.Errorf("binding = %v, want F4", f.mon.Binding())
	}
}

func TestToggleNowDuringCapture(t *testing.T) {
	f := newFixture(t, keys.M)
	ctx, cancel := context.WithCancel(context.Background())
	errc := startCapture(t, f, ctx)

	ev := f.mon.ToggleNow()
	if !errors.Is(ev.Err, ErrCaptureActive) {
		t.Errorf("event err = %v, want ErrCaptureActive", ev.Err)
	}
	if f.ep.Writes() != 0 || f.rec.count() != 0 {
		t.Errorf("writes = %d events = %d during capture", f.ep.Writes(), f.rec.count())
	}

	cancel()
	<-errc
	if ev := f.mon.ToggleNow(); ev.Err != nil || ev.State != mute.Muted {
		t.Errorf("after capture: %+v", ev)
	}
}

func TestInterval(t *testing.T) {
	kb := keyboard.NewFake()
	tg := mute.NewController(mute.NewFakeEndpoint(false))
	if got := New(kb, tg, &memStore{key: keys.M}).Interval(); got != DefaultInterval {
		t.Errorf("default interval = %v, want %v", got, DefaultInterval)
	}
	if got := New(kb, tg, &memStore{key: keys.M}, WithInterval(0)).Interval(); got != DefaultInterval {
		t.Errorf("zero interval = %v, want %v", got, DefaultInterval)
	}
	if got := New(kb, tg, &memStore{key: keys.M}, WithInterval(time.Second)).Interval(); got != time.Second {
		t.Errorf("interval = %v, want 1s", got)
	}
}
