package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"micmute/beep"
	"micmute/doctor"
	"micmute/hotkey"
	"micmute/keyboard"
	"micmute/keys"
	"micmute/log"
	"micmute/mute"
	"micmute/shortcut"
	"micmute/shutdown"
)

var version = "dev"

type options struct {
	configPath string
	flow       mute.Flow
	interval   time.Duration
	tui        bool
	quiet      bool
	logPath    string
	doctor     bool
	version    bool
	key        string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("micmute", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	flowFlag := fs.String("flow", "capture", "Endpoint to control: capture (microphone) or render (speakers)")
	fs.StringVar(&o.configPath, "config", "", "Shortcut file path (default: micmute.yaml next to the executable)")
	fs.DurationVar(&o.interval, "interval", hotkey.DefaultInterval, "Keyboard poll interval")
	fs.BoolVar(&o.tui, "tui", true, "Run with terminal UI")
	fs.BoolVar(&o.quiet, "quiet", false, "Disable mute/unmute beeps")
	fs.StringVar(&o.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.BoolVar(&o.doctor, "doctor", false, "Run system diagnostics and exit")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.StringVar(&o.key, "key", "", "Set the shortcut key (e.g. M, F5, Grave) and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	flow, err := mute.ParseFlow(*flowFlag)
	if err != nil {
		return o, err
	}
	o.flow = flow
	if o.interval <= 0 {
		return o, fmt.Errorf("interval must be positive, got %s", o.interval)
	}
	return o, nil
}

func run() {
	os.Exit(start(os.Args[1:]))
}

func start(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Printf("micmute %s\n", version)
		return 0
	}

	logPath, err := log.ResolveDir(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	setupCrashLog()

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	cfgPath := opts.configPath
	if cfgPath == "" {
		if cfgPath, err = shortcut.DefaultPath(); err != nil {
			log.Errorf("config path: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	store := shortcut.NewStore(cfgPath)

	if opts.key != "" {
		return setKey(store, opts.key)
	}

	if opts.doctor {
		return doctor.Run(doctor.Config{
			Flow:       opts.flow,
			Key:        store.Peek(),
			ConfigPath: cfgPath,
		})
	}

	if opts.quiet {
		beep.Disable()
	}

	ctl, err := mute.Open(opts.flow)
	if err != nil {
		log.Errorf("audio endpoint: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening audio endpoint: %v\n", err)
		return 1
	}
	defer ctl.Close()

	src := keyboard.New()
	if err := src.Open(); err != nil {
		log.Errorf("keyboard: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening keyboard: %v\n", err)
		return 1
	}
	defer src.Close()

	mon := hotkey.New(src, ctl, store, hotkey.WithInterval(opts.interval))

	var toggles atomic.Int64
	mon.OnToggled(func(ev hotkey.ToggleEvent) {
		name := keys.DisplayName(ev.Binding)
		if ev.Err != nil {
			log.ToggleFailed(ev.Err, name, ev.Source.String())
		} else {
			toggles.Add(1)
			log.Toggled(ev.State.Muted(), name, ev.Source.String())
		}
		beep.Play(ev.State.Muted(), ev.Err)
	})

	log.SessionStart(opts.flow.String(), keys.DisplayName(mon.Binding()), mon.Interval().String())
	defer func() { log.SessionEnd(int(toggles.Load())) }()

	go beep.Init()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	if opts.tui && term.IsTerminal(int(os.Stdout.Fd())) {
		runTUI(ctx, mon, ctl, src)
		return 0
	}

	fmt.Printf("micmute %s: %s toggles %s mute (Ctrl+C to quit)\n",
		version, keys.ShortcutLabel(mon.Binding()), opts.flow)
	mon.Start()
	<-ctx.Done()
	log.Info("shutdown signal received")
	mon.Stop()
	return 0
}

func runTUI(ctx context.Context, mon *hotkey.Monitor, ctl *mute.Controller, src keyboard.Source) {
	feed := keyboard.NewChan()
	reader := keyboard.Merge(src, feed)

	m := newTUIModel(mon.Binding(), tuiActions{
		toggle:  func() { mon.ToggleNow() },
		capture: func(ctx context.Context) (keys.Key, error) { return mon.Capture(ctx, reader) },
		feed:    feed.Send,
	})
	if st, err := ctl.State(); err != nil {
		m.lastErr = err.Error()
	} else {
		m.status = statusOf(st)
	}

	p := NewTUIProgram(m)
	mon.OnToggled(func(ev hotkey.ToggleEvent) { p.Send(ToggledMsg{Event: ev}) })

	mon.Start()
	defer mon.Stop()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
	}
}

// setKey persists a shortcut key given on the command line.
func setKey(store *shortcut.Store, name string) int {
	k, err := keys.Parse(name)
	if err == nil && !keys.Valid(k) {
		err = fmt.Errorf("%s is the fixed modifier", keys.DisplayName(k))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid shortcut key %q: %v\n", name, err)
		return 2
	}

	prev := store.Load()
	err = store.Save(k)
	log.Rebound(keys.DisplayName(prev), keys.DisplayName(k), err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Shortcut set to %s (%s)\n", keys.ShortcutLabel(k), store.Path())
	return 0
}

func setupCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}
