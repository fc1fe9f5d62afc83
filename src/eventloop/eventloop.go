package eventloop

import (
	"context"
	"fmt"
	"log"
	"time"

	"mouse-overlay/src/config"
	"mouse-overlay/src/hotkey"
	"mouse-overlay/src/input"
	"mouse-overlay/src/scene"
	"mouse-overlay/src/singleinstance"
)

// State is what the tray mirrors: effect checkboxes and overlay visibility.
type State struct {
	Effects config.Effects
	Visible bool
}

// Options wires the loop to its collaborators. Source is required; the rest
// are optional.
type Options struct {
	Source     input.Source
	Server     singleinstance.Server
	ConfigPath string
	// Watch enables live reload through fsnotify.
	Watch bool
	// Cancel stops the whole process (exit hotkey, quit command).
	Cancel context.CancelFunc
	// OnChange is called from the loop goroutine after settings or
	// visibility change.
	OnChange func(State)
}

// Loop is the single-threaded coordinator: input events, hotkeys, config
// reloads, control commands and tray actions all pass through Run.
type Loop struct {
	scene   *scene.Scene
	opts    Options
	exit    *hotkey.Matcher
	toggle  *hotkey.Matcher
	actions chan action
	now     func() time.Time
}

type actionKind int

const (
	actReload actionKind = iota
	actSetEffect
	actToggleVisible
	actQuit
)

type action struct {
	kind   actionKind
	effect string
	on     bool
}

// New creates a loop driving sc.
func New(sc *scene.Scene, opts Options) *Loop {
	if opts.Cancel == nil {
		opts.Cancel = func() {}
	}
	return &Loop{
		scene:   sc,
		opts:    opts,
		actions: make(chan action, 16),
		now:     time.Now,
	}
}

// Reload asks the loop to re-read the settings file.
func (l *Loop) Reload() { l.post(action{kind: actReload}) }

// SetEffect asks the loop to switch an effect category and persist it.
func (l *Loop) SetEffect(name string, on bool) {
	l.post(action{kind: actSetEffect, effect: name, on: on})
}

// ToggleVisible asks the loop to hide or show the whole overlay.
func (l *Loop) ToggleVisible() { l.post(action{kind: actToggleVisible}) }

// Quit asks the loop to stop the process.
func (l *Loop) Quit() { l.post(action{kind: actQuit}) }

func (l *Loop) post(a action) {
	select {
	case l.actions <- a:
	default:
		log.Printf("eventloop: action queue full, dropping action %d", a.kind)
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.opts.Source == nil {
		return fmt.Errorf("eventloop: no input source")
	}
	l.applyHotkeys(l.scene.Config())

	events, err := l.opts.Source.Start(ctx)
	if err != nil {
		return fmt.Errorf("start input hook: %w", err)
	}
	defer l.opts.Source.Stop()

	if l.opts.Watch && l.opts.ConfigPath != "" {
		w, err := config.NewWatcher(l.opts.ConfigPath)
		if err != nil {
			log.Printf("Live reload disabled: %v", err)
		} else {
			defer w.Close()
			log.Printf("Watching %s for changes", w.Path())
			go w.Run(ctx, l.Reload)
		}
	}

	// Accept loop in background so slow clients never stall input handling
	var reqCh chan singleinstance.Conn
	if l.opts.Server != nil {
		runCtx, stop := context.WithCancel(ctx)
		conns := make(chan singleinstance.Conn, 4)
		reqCh = conns
		go l.forward(runCtx, conns)
		defer func() {
			// Anything accepted while shutting down still gets an answer.
			stop()
			for conn := range conns {
				reject(conn)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				log.Printf("eventloop: input source closed")
				return nil
			}
			l.handleEvent(ev)
		case a := <-l.actions:
			l.handleAction(a)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		}
	}
}

func (l *Loop) forward(ctx context.Context, out chan<- singleinstance.Conn) {
	defer close(out)
	for {
		conn, err := l.opts.Server.Next(ctx)
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			reject(conn)
			return
		}
		select {
		case out <- conn:
		case <-ctx.Done():
			reject(conn)
			return
		}
	}
}

func reject(conn singleinstance.Conn) {
	_ = conn.RespondError("overlay is shutting down")
	_ = conn.Close()
}

func (l *Loop) handleEvent(ev input.Event) {
	now := l.now()
	switch ev.Kind {
	case input.Move:
		l.scene.Move(ev.X, ev.Y, now)
	case input.Press:
		l.scene.Press(ev.Button, ev.X, ev.Y, now)
	case input.Release:
		l.scene.Release(ev.Button, ev.X, ev.Y, now)
	case input.KeyDown:
		key := keyOf(ev)
		if l.exit.KeyDown(key) {
			log.Printf("Exit hotkey %s pressed", l.exit.Combo())
			l.quit()
			return
		}
		if l.toggle.KeyDown(key) {
			l.toggleVisible()
		}
		l.scene.KeyDown(key, now)
	case input.KeyUp:
		key := keyOf(ev)
		l.exit.KeyUp(key)
		l.toggle.KeyUp(key)
		l.scene.KeyUp(key, now)
	}
}

func keyOf(ev input.Event) hotkey.Key {
	return hotkey.Key{Rawcode: ev.Rawcode, Keycode: ev.Keycode, Keychar: ev.Keychar}
}

func (l *Loop) handleAction(a action) {
	switch a.kind {
	case actReload:
		_ = l.reload()
	case actSetEffect:
		if err := l.setEffect(a.effect, a.on); err != nil {
			log.Printf("Failed to switch effect %q: %v", a.effect, err)
		}
	case actToggleVisible:
		l.toggleVisible()
	case actQuit:
		l.quit()
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	cmd := conn.Command()
	var (
		reply string
		err   error
	)
	switch cmd.Verb {
	case singleinstance.VerbReload:
		err = l.reload()
	case singleinstance.VerbToggle:
		reply, err = l.flipEffect(cmd.Arg)
	case singleinstance.VerbVisible:
		if l.toggleVisible() {
			reply = "visible"
		} else {
			reply = "hidden"
		}
	case singleinstance.VerbQuit:
		_ = conn.RespondOK("")
		l.quit()
		return
	default:
		err = fmt.Errorf("%w: %s", singleinstance.ErrUnknownCommand, cmd.Verb)
	}
	if err != nil {
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondOK(reply)
}

// reload re-reads the settings file. An invalid file keeps the current
// settings so a half-saved edit never blanks the overlay.
func (l *Loop) reload() error {
	if l.opts.ConfigPath == "" {
		return fmt.Errorf("no config file")
	}
	cfg, err := config.Read(l.opts.ConfigPath)
	if err != nil {
		log.Printf("Config reload failed, keeping previous settings: %v", err)
		return err
	}
	log.Printf("Config reloaded from %s", l.opts.ConfigPath)
	l.apply(cfg)
	return nil
}

// setEffect persists the switch to the settings file. If the file cannot be
// written the change still applies for this session.
func (l *Loop) setEffect(name string, on bool) error {
	canonical, ok := config.CanonicalEffect(name)
	if !ok {
		return fmt.Errorf("unknown effect %q", name)
	}
	var cfg *config.Config
	if l.opts.ConfigPath != "" {
		patched, err := config.Patch(l.opts.ConfigPath, map[string]any{"effects." + canonical: on})
		if err != nil {
			log.Printf("Could not save effect %s: %v", canonical, err)
		} else {
			cfg = patched
		}
	}
	if cfg == nil {
		cfg = l.scene.Config()
		cfg.Effects.SetEffect(canonical, on)
	}
	log.Printf("Effect %s set to %v", canonical, on)
	l.apply(cfg)
	return nil
}

func (l *Loop) flipEffect(name string) (string, error) {
	canonical, ok := config.CanonicalEffect(name)
	if !ok {
		return "", fmt.Errorf("unknown effect %q", name)
	}
	on, _ := l.scene.Config().Effects.Effect(canonical)
	if err := l.setEffect(canonical, !on); err != nil {
		return "", err
	}
	if on {
		return canonical + " off", nil
	}
	return canonical + " on", nil
}

func (l *Loop) toggleVisible() bool {
	v := !l.scene.Visible()
	l.scene.SetVisible(v)
	log.Printf("Overlay visible: %v", v)
	l.notify()
	return v
}

func (l *Loop) quit() {
	log.Printf("Quit requested")
	l.opts.Cancel()
}

func (l *Loop) apply(cfg *config.Config) {
	l.scene.SetConfig(cfg)
	l.applyHotkeys(cfg)
	l.notify()
}

func (l *Loop) applyHotkeys(cfg *config.Config) {
	l.exit = l.rebuild(l.exit, cfg.ExitHotkey, "exit")
	l.toggle = l.rebuild(l.toggle, cfg.ToggleHotkey, "toggle")
}

func (l *Loop) rebuild(cur *hotkey.Matcher, combo, what string) *hotkey.Matcher {
	if cur != nil && cur.Combo() == combo {
		return cur
	}
	m, err := hotkey.NewMatcher(combo)
	if err != nil {
		log.Printf("Invalid %s hotkey %q, disabled: %v", what, combo, err)
		return nil
	}
	return m
}

func (l *Loop) notify() {
	if l.opts.OnChange == nil {
		return
	}
	l.opts.OnChange(State{Effects: l.scene.Config().Effects, Visible: l.scene.Visible()})
}
