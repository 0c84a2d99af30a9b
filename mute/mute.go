// Package mute reads and flips the mute flag of the default audio endpoint.
package mute

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrEndpointUnavailable means no default endpoint could be resolved, e.g.
// no active audio device or no sound server. Callers treat the mute state
// as unknown.
var ErrEndpointUnavailable = errors.New("audio endpoint unavailable")

type State int

const (
	Unmuted State = iota
	Muted
)

func StateOf(muted bool) State {
	if muted {
		return Muted
	}
	return Unmuted
}

func (s State) Muted() bool { return s == Muted }

func (s State) String() string {
	if s == Muted {
		return "muted"
	}
	return "unmuted"
}

// Flow selects which default endpoint is controlled.
type Flow int

const (
	Capture Flow = iota // microphone
	Render              // speakers
)

func (f Flow) String() string {
	if f == Render {
		return "render"
	}
	return "capture"
}

func ParseFlow(s string) (Flow, error) {
	switch strings.ToLower(s) {
	case "capture", "input", "mic":
		return Capture, nil
	case "render", "output":
		return Render, nil
	}
	return Capture, fmt.Errorf("unknown flow %q (use capture or render)", s)
}

// Endpoint is the OS capability behind a Controller. Implementations
// return errors wrapping ErrEndpointUnavailable when no default endpoint
// resolves.
type Endpoint interface {
	Muted() (bool, error)
	SetMute(muted bool) error
	Close()
}

// Controller serializes all access to one endpoint so a toggle is never
// observed half-applied.
type Controller struct {
	mu sync.Mutex
	ep Endpoint
}

func NewController(ep Endpoint) *Controller {
	return &Controller{ep: ep}
}

// Open connects to the platform's default endpoint for flow.
func Open(flow Flow) (*Controller, error) {
	ep, err := openEndpoint(flow)
	if err != nil {
		return nil, err
	}
	return NewController(ep), nil
}

func (c *Controller) IsMuted() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ep.Muted()
}

func (c *Controller) State() (State, error) {
	muted, err := c.IsMuted()
	if err != nil {
		return Unmuted, err
	}
	return StateOf(muted), nil
}

// SetMuted applies muted. Nothing is written when the endpoint already
// reports the requested value.
func (c *Controller) SetMuted(muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, err := c.ep.Muted()
	if err != nil {
		return err
	}
	if cur == muted {
		return nil
	}
	return c.ep.SetMute(muted)
}

// Toggle inverts the mute flag and returns the resulting state.
func (c *Controller) Toggle() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, err := c.ep.Muted()
	if err != nil {
		return Unmuted, err
	}
	next := !cur
	if err := c.ep.SetMute(next); err != nil {
		return StateOf(cur), err
	}
	return StateOf(next), nil
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ep.Close()
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEndpointUnavailable, fmt.Sprintf(format, args...))
}
