package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	diagName = "diagnostics_log.txt"

	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 28
)

var (
	diagLog  zerolog.Logger
	diagFile *lumberjack.Logger
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: MICMUTE_LOG_PATH environment variable
	if envPath := os.Getenv("MICMUTE_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	// lumberjack opens lazily; touch the file now so permission problems
	// surface here instead of on the first log line.
	diagPath := filepath.Join(dir, diagName)
	f, err := os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	f.Close()

	diagFile = &lumberjack.Logger{
		Filename:   diagPath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		LocalTime:  true,
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Toggled records a successful mute toggle.
func Toggled(muted bool, key, trigger string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Bool("muted", muted).
		Str("key", key).
		Str("trigger", trigger).
		Msg("toggle")
}

func ToggleFailed(err error, key, trigger string) {
	if !logReady {
		return
	}
	diagLog.Error().
		Err(err).
		Str("key", key).
		Str("trigger", trigger).
		Msg("toggle_failed")
}

func Rebound(from, to string, saveErr error) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if saveErr != nil {
		ev = diagLog.Warn().Err(saveErr)
	}
	ev.Str("from", from).Str("to", to).Msg("rebind")
}

func SessionStart(flow, key string, interval string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("flow", flow).
		Str("key", key).
		Str("interval", interval).
		Msg("session_start")
}

func SessionEnd(toggles int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("toggles", toggles).
		Msg("session_end")
}
