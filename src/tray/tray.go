package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"mouse-overlay/src/config"
)

// Controller receives menu actions. The event loop implements it.
type Controller interface {
	SetEffect(name string, on bool)
	ToggleVisible()
	Reload()
	Quit()
}

// Config describes the tray icon.
type Config struct {
	Title      string
	Tooltip    string
	Effects    config.Effects
	Controller Controller
	// OpenPanel starts the control panel; nil hides the menu entry.
	OpenPanel func() error
}

// Tray is the system tray icon with effect toggles.
type Tray struct {
	cfg Config

	mu      sync.Mutex
	ready   bool
	effects map[string]*systray.MenuItem
	visible *systray.MenuItem
	state   config.Effects
	shown   bool
}

var effectLabels = map[string]string{
	"cursor_ring":   "Cursor ring",
	"cursor_tail":   "Cursor tail",
	"click_effects": "Click effects",
	"drag_trails":   "Drag trails",
	"key_display":   "Key display",
}

func effectLabel(name string) string {
	if l, ok := effectLabels[name]; ok {
		return l
	}
	return name
}

// New creates the tray. Run shows it.
func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "Mouse Overlay"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg, effects: map[string]*systray.MenuItem{}, state: cfg.Effects, shown: true}
}

// Run blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() { log.Printf("Tray exited") })
}

// Quit removes the icon.
func (t *Tray) Quit() { systray.Quit() }

// Update mirrors the loop's state in the checkboxes.
func (t *Tray) Update(effects config.Effects, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = effects
	t.shown = visible
	if !t.ready {
		return
	}
	t.syncLocked()
}

func (t *Tray) syncLocked() {
	for name, item := range t.effects {
		on, _ := t.state.Effect(name)
		setChecked(item, on)
	}
	setChecked(t.visible, t.shown)
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *Tray) onReady() {
	if icon, err := Icon(); err != nil {
		log.Printf("Tray icon: %v", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	t.mu.Lock()
	for _, name := range config.EffectNames {
		on, _ := t.state.Effect(name)
		item := systray.AddMenuItemCheckbox(effectLabel(name), "Toggle "+effectLabel(name), on)
		t.effects[name] = item
		go t.watchEffect(name, item)
	}
	systray.AddSeparator()
	t.visible = systray.AddMenuItemCheckbox("Show overlay", "Hide or show everything", t.shown)
	t.ready = true
	t.mu.Unlock()

	mReload := systray.AddMenuItem("Reload config", "Re-read the settings file")
	var mPanel *systray.MenuItem
	if t.cfg.OpenPanel != nil {
		mPanel = systray.AddMenuItem("Control panel…", "Edit settings")
	} else {
		mPanel = &systray.MenuItem{ClickedCh: make(chan struct{})}
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the overlay")

	ctl := t.cfg.Controller
	go func() {
		for {
			select {
			case <-t.visible.ClickedCh:
				ctl.ToggleVisible()
			case <-mReload.ClickedCh:
				ctl.Reload()
			case <-mPanel.ClickedCh:
				if err := t.cfg.OpenPanel(); err != nil {
					log.Printf("Failed to open control panel: %v", err)
				}
			case <-mQuit.ClickedCh:
				ctl.Quit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) watchEffect(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		// The checkbox is updated once the loop reports the new state.
		t.cfg.Controller.SetEffect(name, t.flipped(name))
	}
}

// flipped is the opposite of the last state the loop reported for name.
func (t *Tray) flipped(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	on, _ := t.state.Effect(name)
	return !on
}
