//go:build !linux && !windows && !darwin

package keyboard

import (
	"context"
	"fmt"
	"runtime"

	"micmute/keys"
)

type noSource struct{}

func New() Source { return noSource{} }

func (noSource) Open() error {
	return fmt.Errorf("%w on %s", ErrNoKeyboard, runtime.GOOS)
}
func (noSource) Close()                {}
func (noSource) IsDown(keys.Key) bool { return false }
func (noSource) NextKeyDown(context.Context) (keys.Key, error) {
	return 0, ErrCaptureUnsupported
}

func Diagnose() (string, error) {
	return "", fmt.Errorf("%w on %s", ErrNoKeyboard, runtime.GOOS)
}
