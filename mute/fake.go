package mute

import "sync"

type FakeEndpoint struct {
	mu          sync.Mutex
	muted       bool
	unavailable bool
	writes      int
	closed      bool
}

func NewFakeEndpoint(muted bool) *FakeEndpoint {
	return &FakeEndpoint{muted: muted}
}

func (f *FakeEndpoint) Muted() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return false, unavailable("fake: no default endpoint")
	}
	return f.muted, nil
}

func (f *FakeEndpoint) SetMute(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return unavailable("fake: no default endpoint")
	}
	f.muted = muted
	f.writes++
	return nil
}

func (f *FakeEndpoint) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// SetUnavailable simulates the default device disappearing.
func (f *FakeEndpoint) SetUnavailable(v bool) {
	f.mu.Lock()
	f.unavailable = v
	f.mu.Unlock()
}

func (f *FakeEndpoint) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FakeEndpoint) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
