// Package keyboard reports which physical keys are held.
package keyboard

import (
	"context"
	"errors"

	"micmute/keys"
)

var (
	ErrNoKeyboard         = errors.New("no keyboard device available")
	ErrCaptureUnsupported = errors.New("key capture not supported by this source")
)

// State answers whether a key is physically held right now.
type State interface {
	IsDown(k keys.Key) bool
}

// KeyReader yields the next physical key press.
type KeyReader interface {
	NextKeyDown(ctx context.Context) (keys.Key, error)
}

// Source is a platform keyboard backend.
type Source interface {
	State
	KeyReader
	Open() error
	Close()
}

// Binder is implemented by sources that can only observe the registered
// combination and must be told which key is bound.
type Binder interface {
	Bind(k keys.Key) error
}

// Chan is a KeyReader fed by another input surface, such as the terminal.
type Chan chan keys.Key

func NewChan() Chan { return make(Chan, 1) }

// Send offers k without blocking; it is dropped if a key is already pending.
func (c Chan) Send(k keys.Key) {
	select {
	case c <- k:
	default:
	}
}

func (c Chan) NextKeyDown(ctx context.Context) (keys.Key, error) {
	select {
	case k := <-c:
		return k, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type merged []KeyReader

// Merge returns a KeyReader yielding the first key from any of rs. Readers
// that report ErrCaptureUnsupported are ignored.
func Merge(rs ...KeyReader) KeyReader { return merged(rs) }

func (m merged) NextKeyDown(ctx context.Context) (keys.Key, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		k   keys.Key
		err error
	}
	results := make(chan result, len(m))
	for _, r := range m {
		go func(r KeyReader) {
			k, err := r.NextKeyDown(ctx)
			results <- result{k, err}
		}(r)
	}

	for range m {
		res := <-results
		if res.err == nil {
			return res.k, nil
		}
		if !errors.Is(res.err, ErrCaptureUnsupported) {
			return 0, res.err
		}
	}
	return 0, ErrCaptureUnsupported
}
