package panel

import (
	"fmt"
	"log"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"mouse-overlay/src/config"
)

// Run opens the control panel for the settings file at path and blocks
// until the window is closed. Saving writes only changed keys; a running
// overlay picks them up through live reload.
func Run(path string) error {
	a := app.NewWithID("mouse-overlay.panel")
	w := a.NewWindow("Mouse Overlay")
	w.Resize(fyne.NewSize(720, 640))
	w.CenterOnScreen()

	p := &panel{path: path, window: w}
	err := p.load()
	w.SetContent(p.build())
	if err != nil {
		dialog.ShowError(err, w)
	}
	w.ShowAndRun()
	return nil
}

type panel struct {
	path   string
	window fyne.Window
	base   *config.Config
	state  formState

	checks  map[string]*widget.Check
	sliders map[string]*widget.Slider
	values  map[string]*widget.Label
	colors  map[string]*widget.Entry
	hotkeys map[string]*widget.Entry
	status  *widget.Label
}

// load reads the settings file; an unreadable file leaves the panel on the
// defaults and reports the error.
func (p *panel) load() error {
	cfg, err := config.Read(p.path)
	if err != nil {
		log.Printf("Panel: %v", err)
		cfg = config.Default()
	}
	p.base = cfg
	p.state = stateFromConfig(cfg)
	return err
}

func formatNumber(f numberField, v float64) string {
	if f.integer {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (p *panel) build() fyne.CanvasObject {
	p.checks = map[string]*widget.Check{}
	p.sliders = map[string]*widget.Slider{}
	p.values = map[string]*widget.Label{}
	p.colors = map[string]*widget.Entry{}
	p.hotkeys = map[string]*widget.Entry{}

	effects := container.NewVBox()
	for _, name := range config.EffectNames {
		name := name
		check := widget.NewCheck(effectTitle(name), func(on bool) { p.state.effects[name] = on })
		p.checks[name] = check
		effects.Add(check)
	}

	numbers := container.NewVBox()
	for _, f := range numberFields {
		f := f
		value := widget.NewLabel("")
		value.Alignment = fyne.TextAlignTrailing
		slider := widget.NewSlider(f.min, f.max)
		slider.Step = f.step
		slider.OnChanged = func(v float64) {
			p.state.numbers[f.key] = v
			value.SetText(formatNumber(f, v))
		}
		p.sliders[f.key] = slider
		p.values[f.key] = value
		title := widget.NewLabel(f.label)
		title.TextStyle = fyne.TextStyle{Bold: true}
		numbers.Add(container.NewVBox(container.NewBorder(nil, nil, title, value, nil), slider))
	}

	colorForm := widget.NewForm()
	for _, f := range colorFields {
		f := f
		entry := widget.NewEntry()
		entry.SetPlaceHolder("#aarrggbb or red")
		entry.OnChanged = func(text string) { p.state.colors[f.key] = text }
		p.colors[f.key] = entry
		colorForm.Append(f.label, entry)
	}
	hotkeyForm := widget.NewForm()
	for _, f := range hotkeyFields {
		f := f
		entry := widget.NewEntry()
		entry.SetPlaceHolder("ctrl+shift+q")
		entry.OnChanged = func(text string) { p.state.hotkeys[f.key] = text }
		p.hotkeys[f.key] = entry
		hotkeyForm.Append(f.label, entry)
	}

	p.status = widget.NewLabel(p.path)
	save := widget.NewButton("Save", p.save)
	save.Importance = widget.HighImportance
	revert := widget.NewButton("Revert", func() {
		if err := p.load(); err != nil {
			dialog.ShowError(err, p.window)
		}
		p.refresh()
		p.status.SetText("Reloaded " + p.path)
	})

	left := container.NewVBox(
		widget.NewCard("Effects", "", effects),
		widget.NewCard("Colors", "", colorForm),
		widget.NewCard("Hotkeys", "", hotkeyForm),
	)
	right := widget.NewCard("Sizes and timing", "", container.NewVScroll(numbers))
	body := container.NewGridWithColumns(2, left, right)
	footer := container.NewBorder(nil, nil, p.status, container.NewHBox(revert, save))

	p.refresh()
	return container.NewPadded(container.NewBorder(nil, footer, nil, nil, body))
}

// refresh copies the form state into the widgets.
func (p *panel) refresh() {
	st := p.state.clone()
	for name, check := range p.checks {
		check.SetChecked(st.effects[name])
	}
	for _, f := range numberFields {
		v := st.numbers[f.key]
		p.sliders[f.key].SetValue(v)
		p.values[f.key].SetText(formatNumber(f, v))
	}
	for key, entry := range p.colors {
		entry.SetText(st.colors[key])
	}
	for key, entry := range p.hotkeys {
		entry.SetText(st.hotkeys[key])
	}
	// Widget callbacks above rewrite p.state; restore it verbatim.
	p.state = st
}

func (p *panel) save() {
	values, err := p.state.patch(p.base)
	if err != nil {
		dialog.ShowError(err, p.window)
		return
	}
	if len(values) == 0 {
		p.status.SetText("No changes")
		return
	}
	cfg, err := config.Patch(p.path, values)
	if err != nil {
		dialog.ShowError(err, p.window)
		return
	}
	log.Printf("Panel saved %d settings to %s", len(values), p.path)
	p.base = cfg
	p.state = stateFromConfig(cfg)
	p.status.SetText(fmt.Sprintf("Saved %d setting(s)", len(values)))
}

func effectTitle(name string) string {
	switch name {
	case "cursor_ring":
		return "Cursor ring"
	case "cursor_tail":
		return "Cursor tail"
	case "click_effects":
		return "Click effects"
	case "drag_trails":
		return "Drag trails"
	case "key_display":
		return "Key display"
	}
	return name
}
