//go:build darwin

package mute

import (
	"os/exec"
	"strconv"
	"strings"
)

// CoreAudio has no scriptable input mute flag, so capture mute is emulated by
// zeroing the input volume and restoring the previous level on unmute.
const defaultInputVolume = 75

type scriptEndpoint struct {
	flow        Flow
	savedVolume int
}

func openEndpoint(flow Flow) (Endpoint, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, unavailable("osascript: %v", err)
	}
	return &scriptEndpoint{flow: flow, savedVolume: defaultInputVolume}, nil
}

func osascript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", unavailable("osascript: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *scriptEndpoint) inputVolume() (int, error) {
	out, err := osascript("input volume of (get volume settings)")
	if err != nil {
		return 0, err
	}
	// "missing value" when there is no input device.
	v, err := strconv.Atoi(out)
	if err != nil {
		return 0, unavailable("no default input device (%q)", out)
	}
	return v, nil
}

func (s *scriptEndpoint) Muted() (bool, error) {
	if s.flow == Render {
		out, err := osascript("output muted of (get volume settings)")
		if err != nil {
			return false, err
		}
		if out != "true" && out != "false" {
			return false, unavailable("no default output device (%q)", out)
		}
		return out == "true", nil
	}
	v, err := s.inputVolume()
	if err != nil {
		return false, err
	}
	return v == 0, nil
}

func (s *scriptEndpoint) SetMute(muted bool) error {
	if s.flow == Render {
		_, err := osascript("set volume output muted " + strconv.FormatBool(muted))
		return err
	}
	if muted {
		if v, err := s.inputVolume(); err == nil && v > 0 {
			s.savedVolume = v
		}
		_, err := osascript("set volume input volume 0")
		return err
	}
	_, err := osascript("set volume input volume " + strconv.Itoa(s.savedVolume))
	return err
}

func (s *scriptEndpoint) Close() {}
