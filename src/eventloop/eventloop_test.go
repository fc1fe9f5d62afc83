package eventloop

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	hook "github.com/robotn/gohook"

	"mouse-overlay/src/config"
	"mouse-overlay/src/display"
	"mouse-overlay/src/input"
	"mouse-overlay/src/scene"
	"mouse-overlay/src/singleinstance"
)

type fakeSource struct {
	ch chan input.Event
}

func (f *fakeSource) Start(ctx context.Context) (<-chan input.Event, error) { return f.ch, nil }
func (f *fakeSource) Stop()                                                {}

type fakeConn struct {
	cmd    singleinstance.Command
	ok     *string
	errMsg *string
	closed bool
}

func (c *fakeConn) Command() singleinstance.Command { return c.cmd }
func (c *fakeConn) RespondOK(text string) error     { c.ok = &text; return nil }
func (c *fakeConn) RespondError(msg string) error   { c.errMsg = &msg; return nil }
func (c *fakeConn) Close() error                    { c.closed = true; return nil }

// fakeServer hands out queued connections and then blocks until ctx ends.
type fakeServer struct {
	pending []*fakeConn
	handed  []*fakeConn
}

func (f *fakeServer) Start(ctx context.Context) error { return nil }
func (f *fakeServer) Port() int                       { return 0 }
func (f *fakeServer) Close() error                    { return nil }

func (f *fakeServer) Next(ctx context.Context) (singleinstance.Conn, error) {
	if len(f.pending) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := f.pending[0]
	f.pending = f.pending[1:]
	f.handed = append(f.handed, c)
	return c, nil
}

func newLoop(t *testing.T, cfg *config.Config, opts Options) (*Loop, *scene.Scene) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	layout := display.FromBounds([]image.Rectangle{image.Rect(0, 0, 1280, 720)})
	sc := scene.New(cfg, layout)
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), config.FileName)
	}
	l := New(sc, opts)
	l.applyHotkeys(cfg)
	return l, sc
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExitHotkeyCancelsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{ch: make(chan input.Event, 8)}
	l, _ := newLoop(t, nil, Options{Source: src, Cancel: cancel})

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	src.ch <- input.Event{Kind: input.KeyDown, Rawcode: 162}
	src.ch <- input.Event{Kind: input.KeyDown, Rawcode: 160}
	src.ch <- input.Event{Kind: input.KeyDown, Rawcode: 81, Keychar: 'q'}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("exit hotkey did not stop the loop")
	}
}

func TestRunRequiresSource(t *testing.T) {
	l, _ := newLoop(t, nil, Options{})
	if err := l.Run(context.Background()); err == nil {
		t.Error("Run without a source succeeded")
	}
}

func TestRunStopsWhenSourceCloses(t *testing.T) {
	src := &fakeSource{ch: make(chan input.Event)}
	l, _ := newLoop(t, nil, Options{Source: src})
	close(src.ch)
	if err := l.Run(context.Background()); err != nil {
		t.Errorf("Run = %v, want nil after source closed", err)
	}
}

func TestRunClosesConnectionsAcceptedAtShutdown(t *testing.T) {
	srv := &fakeServer{}
	for i := 0; i < 8; i++ {
		srv.pending = append(srv.pending, &fakeConn{cmd: singleinstance.Command{Verb: singleinstance.VerbPing}})
	}
	src := &fakeSource{ch: make(chan input.Event)}
	close(src.ch)
	l, _ := newLoop(t, nil, Options{Source: src, Server: srv})

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the source closed")
	}
	if len(srv.handed) == 0 {
		t.Fatal("no connection was accepted")
	}
	for i, c := range srv.handed {
		if !c.closed {
			t.Errorf("connection %d left open", i)
		}
		if c.ok == nil && c.errMsg == nil {
			t.Errorf("connection %d got no reply", i)
		}
	}
}

func TestEventsReachScene(t *testing.T) {
	l, sc := newLoop(t, nil, Options{})
	l.handleEvent(input.Event{Kind: input.Press, Button: input.ButtonLeft, X: 10, Y: 10})
	l.handleEvent(input.Event{Kind: input.Move, X: 60, Y: 10})
	l.handleEvent(input.Event{Kind: input.Move, X: 90, Y: 10})
	l.handleEvent(input.Event{Kind: input.Release, Button: input.ButtonLeft, X: 120, Y: 10})
	if got := sc.Stats().Strokes; got != 1 {
		t.Errorf("strokes = %d, want 1", got)
	}
}

func TestToggleHotkeyHidesOverlay(t *testing.T) {
	cfg := config.Default()
	cfg.ToggleHotkey = "ctrl+h"
	var states []State
	l, sc := newLoop(t, cfg, Options{OnChange: func(s State) { states = append(states, s) }})

	l.handleEvent(input.Event{Kind: input.KeyDown, Rawcode: 162})
	l.handleEvent(input.Event{Kind: input.KeyDown, Rawcode: 72, Keychar: 'h'})
	if sc.Visible() {
		t.Fatal("overlay still visible after toggle hotkey")
	}
	if len(states) != 1 || states[0].Visible {
		t.Errorf("OnChange states = %+v, want one hidden state", states)
	}
}

func TestToggleHotkeyFromHookKeycodes(t *testing.T) {
	cfg := config.Default()
	cfg.ToggleHotkey = "ctrl+h"
	l, sc := newLoop(t, cfg, Options{})

	l.handleEvent(input.Event{Kind: input.KeyDown, Rawcode: 0xffe3, Keycode: hook.Keycode["ctrl"]})
	l.handleEvent(input.Event{Kind: input.KeyDown, Rawcode: 0x68, Keycode: hook.Keycode["h"]})
	if sc.Visible() {
		t.Error("overlay still visible after toggle hotkey with X11 rawcodes")
	}
}

func TestReloadKeepsPreviousOnInvalidFile(t *testing.T) {
	l, sc := newLoop(t, nil, Options{})
	path := l.opts.ConfigPath

	writeFile(t, path, `{"click_radius": 30}`)
	if err := l.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := sc.Config().ClickRadius; got != 30 {
		t.Fatalf("click_radius = %v, want 30", got)
	}

	writeFile(t, path, `{"click_radius": `)
	if err := l.reload(); err == nil {
		t.Error("reload of a broken file succeeded")
	}
	if got := sc.Config().ClickRadius; got != 30 {
		t.Errorf("click_radius = %v after bad reload, want 30 kept", got)
	}
}

func TestReloadRebuildsHotkeys(t *testing.T) {
	l, _ := newLoop(t, nil, Options{})
	writeFile(t, l.opts.ConfigPath, `{"exit_hotkey": "", "toggle_hotkey": "<alt>+t"}`)
	if err := l.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if l.exit != nil {
		t.Errorf("exit matcher = %q, want disabled", l.exit.Combo())
	}
	if l.toggle.Combo() != "alt+t" {
		t.Errorf("toggle matcher = %q, want alt+t", l.toggle.Combo())
	}
}

func TestSetEffectPersists(t *testing.T) {
	l, sc := newLoop(t, nil, Options{})
	if err := l.setEffect("tail", false); err != nil {
		t.Fatalf("setEffect: %v", err)
	}
	if sc.Config().Effects.CursorTail {
		t.Error("scene still has the tail enabled")
	}
	saved, err := config.Read(l.opts.ConfigPath)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if saved.Effects.CursorTail {
		t.Error("tail switch was not written to the settings file")
	}
}

func TestSetEffectFallsBackToMemory(t *testing.T) {
	l, sc := newLoop(t, nil, Options{ConfigPath: filepath.Join(t.TempDir(), "missing-dir", config.FileName)})
	if err := l.setEffect("key_display", true); err != nil {
		t.Fatalf("setEffect: %v", err)
	}
	if !sc.Config().Effects.KeyDisplay {
		t.Error("effect not applied when the file cannot be written")
	}
}

func TestSetEffectUnknown(t *testing.T) {
	l, _ := newLoop(t, nil, Options{})
	if err := l.setEffect("sparkles", true); err == nil {
		t.Error("unknown effect accepted")
	}
}

func TestHandleConn(t *testing.T) {
	tests := []struct {
		name    string
		cmd     singleinstance.Command
		wantOK  string
		wantErr bool
	}{
		{"reload", singleinstance.Command{Verb: singleinstance.VerbReload}, "", false},
		{"toggle trails", singleinstance.Command{Verb: singleinstance.VerbToggle, Arg: "trails"}, "drag_trails off", false},
		{"visible", singleinstance.Command{Verb: singleinstance.VerbVisible}, "hidden", false},
		{"toggle unknown", singleinstance.Command{Verb: singleinstance.VerbToggle, Arg: "sparkles"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLoop(t, nil, Options{})
			conn := &fakeConn{cmd: tt.cmd}
			l.handleConn(conn)
			if !conn.closed {
				t.Error("connection left open")
			}
			if tt.wantErr {
				if conn.errMsg == nil {
					t.Errorf("expected error reply, got OK %v", conn.ok)
				}
				return
			}
			if conn.ok == nil || *conn.ok != tt.wantOK {
				t.Errorf("reply = %v (error %v), want OK %q", conn.ok, conn.errMsg, tt.wantOK)
			}
		})
	}
}

func TestQuitCommandCancels(t *testing.T) {
	cancelled := false
	l, _ := newLoop(t, nil, Options{Cancel: func() { cancelled = true }})
	conn := &fakeConn{cmd: singleinstance.Command{Verb: singleinstance.VerbQuit}}
	l.handleConn(conn)
	if !cancelled || conn.ok == nil {
		t.Errorf("cancelled=%v reply=%v, want cancel and OK", cancelled, conn.ok)
	}
}

func TestActionsAreQueued(t *testing.T) {
	l, sc := newLoop(t, nil, Options{})
	l.ToggleVisible()
	l.SetEffect("clicks", false)
	for len(l.actions) > 0 {
		l.handleAction(<-l.actions)
	}
	if sc.Visible() || sc.Config().Effects.ClickEffects {
		t.Errorf("visible=%v clicks=%v, want both off", sc.Visible(), sc.Config().Effects.ClickEffects)
	}
}
