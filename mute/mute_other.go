//go:build !linux && !windows && !darwin

package mute

import "runtime"

func openEndpoint(Flow) (Endpoint, error) {
	return nil, unavailable("no mute backend for %s", runtime.GOOS)
}
