// Package doctor runs interactive checks of keyboard access, the audio
// endpoint and the shortcut file.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"micmute/keyboard"
	"micmute/keys"
	"micmute/mute"
	"micmute/shutdown"
)

type Config struct {
	Flow       mute.Flow
	Key        keys.Key
	ConfigPath string
}

type check struct {
	name string
	fn   func(ctx context.Context, w io.Writer) bool
}

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg Config) int {
	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	fmt.Println("micmute doctor - system diagnostics")
	fmt.Println("===================================")

	checks := []check{
		{"Keyboard access", func(_ context.Context, w io.Writer) bool { return checkKeyboard(w) }},
		{"Shortcut detection", func(ctx context.Context, w io.Writer) bool { return checkShortcut(ctx, w, cfg.Key) }},
		{"Audio endpoint", func(_ context.Context, w io.Writer) bool { return checkEndpoint(w, cfg.Flow) }},
		{"Shortcut file", func(_ context.Context, w io.Writer) bool { return checkConfigDir(w, cfg.ConfigPath) }},
	}
	return run(ctx, os.Stdout, checks)
}

func run(ctx context.Context, w io.Writer, checks []check) int {
	allPass := true
	for i, c := range checks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(checks), c.name)
		if ctx.Err() != nil {
			fmt.Fprintln(w, "  SKIP: interrupted")
			allPass = false
			continue
		}
		if !c.fn(ctx, w) {
			allPass = false
		}
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}

func checkKeyboard(w io.Writer) bool {
	msg, err := keyboard.Diagnose()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "  PASS: %s\n", msg)
	return true
}

func checkShortcut(ctx context.Context, w io.Writer, k keys.Key) bool {
	src := keyboard.New()
	if err := src.Open(); err != nil {
		fmt.Fprintf(w, "  FAIL: could not open keyboard: %v\n", err)
		return false
	}
	defer src.Close()

	if b, ok := src.(keyboard.Binder); ok {
		if err := b.Bind(k); err != nil {
			fmt.Fprintf(w, "  FAIL: could not register shortcut: %v\n", err)
			return false
		}
	}

	fmt.Fprintf(w, "Press %s...\n", keys.ShortcutLabel(k))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := waitHeld(ctx, src, keys.Modifier, k); err != nil {
		fmt.Fprintf(w, "  FAIL: %v waiting for shortcut\n", err)
		return false
	}
	fmt.Fprintln(w, "  PASS: shortcut detected")
	return true
}

// waitHeld polls src until every key in ks is down.
func waitHeld(ctx context.Context, src keyboard.State, ks ...keys.Key) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		all := true
		for _, k := range ks {
			if !src.IsDown(k) {
				all = false
				break
			}
		}
		if all {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func checkEndpoint(w io.Writer, flow mute.Flow) bool {
	ctl, err := mute.Open(flow)
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %v\n", err)
		return false
	}
	defer ctl.Close()
	return verifyToggle(w, ctl)
}

// verifyToggle flips the endpoint twice and checks it lands where it started.
func verifyToggle(w io.Writer, ctl *mute.Controller) bool {
	before, err := ctl.State()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: cannot read mute state: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "Default endpoint is %s, toggling twice\n", before)

	flipped, err := ctl.Toggle()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: toggle failed: %v\n", err)
		return false
	}
	if flipped == before {
		fmt.Fprintf(w, "  FAIL: state did not change (still %s)\n", flipped)
		return false
	}
	after, err := ctl.Toggle()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: restore failed, endpoint left %s: %v\n", flipped, err)
		return false
	}
	if after != before {
		fmt.Fprintf(w, "  FAIL: endpoint left %s, expected %s\n", after, before)
		return false
	}
	fmt.Fprintln(w, "  PASS: mute toggles and restores")
	return true
}

func checkConfigDir(w io.Writer, path string) bool {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".micmute-doctor-*")
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %s is not writable: %v\n", dir, err)
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(w, "  PASS: %s will be created on first run\n", path)
		return true
	}
	fmt.Fprintf(w, "  PASS: %s\n", path)
	return true
}
