//go:build !linux && !darwin && !windows

package beep

func Init()        {}
func PlayMuted()   {}
func PlayUnmuted() {}
func PlayError()   {}
