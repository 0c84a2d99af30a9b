package keyboard

import (
	"context"
	"sync"

	"micmute/keys"
)

type Fake struct {
	mu     sync.Mutex
	down   map[keys.Key]bool
	events chan keys.Key
	bound   keys.Key
	bindErr error
}

func NewFake() *Fake {
	return &Fake{
		down:   make(map[keys.Key]bool),
		events: make(chan keys.Key, 16),
	}
}

func (f *Fake) Open() error { return nil }
func (f *Fake) Close()      {}

func (f *Fake) IsDown(k keys.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down[k]
}

func (f *Fake) Press(ks ...keys.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range ks {
		f.down[k] = true
	}
}

func (f *Fake) Release(ks ...keys.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range ks {
		delete(f.down, k)
	}
}

// Set replaces the held set with exactly ks.
func (f *Fake) Set(ks ...keys.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = make(map[keys.Key]bool, len(ks))
	for _, k := range ks {
		f.down[k] = true
	}
}

// Emit queues a key-down event for NextKeyDown without changing held state.
func (f *Fake) Emit(k keys.Key) {
	f.events <- k
}

func (f *Fake) NextKeyDown(ctx context.Context) (keys.Key, error) {
	select {
	case k := <-f.events:
		return k, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (f *Fake) Bind(k keys.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bindErr != nil {
		return f.bindErr
	}
	f.bound = k
	return nil
}

// FailBind makes later Bind calls return err; nil restores success.
func (f *Fake) FailBind(err error) {
	f.mu.Lock()
	f.bindErr = err
	f.mu.Unlock()
}

func (f *Fake) Bound() keys.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound
}
