package ui

import (
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Options configures the window.
type Options struct {
	Title string
	// FontSize is the text size; 0 keeps the theme default.
	FontSize float32
	// PreviewWidth is the preview image width in pixels; 0 hides the preview.
	PreviewWidth int
	Logger       *slog.Logger
}

// Window is the Fyne front end of a Shell.
type Window struct {
	shell  *Shell
	opts   Options
	logger *slog.Logger

	win      fyne.Window
	selector *widget.Select
	status   *widget.Label
	preview  *canvas.Image
	buttons  map[Event]*widget.Button
	syncing  bool
}

// Run shows the window and blocks until the shell terminates.
func Run(shell *Shell, opts Options) {
	a := app.NewWithID("io.github.vantagedatachat.img2ppt")
	if opts.FontSize > 0 {
		a.Settings().SetTheme(&sizedTheme{Theme: theme.DefaultTheme(), text: opts.FontSize})
	}
	NewWindow(a, shell, opts).ShowAndRun()
}

// NewWindow builds the window for shell on a.
func NewWindow(a fyne.App, shell *Shell, opts Options) *Window {
	if opts.Title == "" {
		opts.Title = "Img2PPT"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Window{
		shell:   shell,
		opts:    opts,
		logger:  logger,
		win:     a.NewWindow(opts.Title),
		status:  widget.NewLabel(shell.Status()),
		buttons: map[Event]*widget.Button{},
	}
	w.selector = widget.NewSelect(nil, w.selected)

	button := func(ev Event) *widget.Button {
		b := widget.NewButton(ev.String(), func() { w.Dispatch(ev) })
		w.buttons[ev] = b
		return b
	}
	controls := container.NewVBox(
		w.selector,
		widget.NewSeparator(),
		container.NewHBox(button(EventAddSlide), button(EventPasteImage)),
		widget.NewSeparator(),
		container.NewHBox(button(EventStretchAll), button(EventFitVertical), button(EventFitHorizontal), button(EventFitFour)),
		widget.NewSeparator(),
		button(EventExit),
	)

	var center fyne.CanvasObject = widget.NewLabel("")
	if opts.PreviewWidth > 0 {
		w.preview = canvas.NewImageFromImage(nil)
		w.preview.FillMode = canvas.ImageFillContain
		w.preview.SetMinSize(fyne.NewSize(float32(opts.PreviewWidth), float32(opts.PreviewWidth)*9/16))
		center = w.preview
	}
	w.win.SetContent(container.NewBorder(controls, w.status, nil, nil, center))
	w.win.SetMaster()
	w.win.SetCloseIntercept(func() { w.Dispatch(EventWindowClosed) })

	w.refresh()
	return w
}

// ShowAndRun shows the window and runs the app until it quits. The shell is
// terminated afterwards however the app was quit.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
	w.shell.Handle(EventExit)
}

// Dispatch hands ev to the shell and updates the widgets.
func (w *Window) Dispatch(ev Event) {
	if w.shell.Handle(ev) == Terminated {
		w.win.Close()
		return
	}
	w.refresh()
}

func (w *Window) selected(value string) {
	if w.syncing {
		return
	}
	ordinal, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	if w.shell.Select(ordinal) == Terminated {
		w.win.Close()
		return
	}
	w.refresh()
}

// refresh copies the shell state into the widgets.
func (w *Window) refresh() {
	w.syncing = true
	defer func() { w.syncing = false }()

	ordinals := w.shell.Ordinals()
	options := make([]string, len(ordinals))
	for i, n := range ordinals {
		options[i] = strconv.Itoa(n)
	}
	w.selector.Options = options
	if sel := w.shell.Selected(); sel > 0 {
		w.selector.SetSelected(strconv.Itoa(sel))
	} else {
		w.selector.ClearSelected()
	}
	w.selector.Refresh()
	w.status.SetText(w.shell.Status())

	if w.preview == nil {
		return
	}
	img, err := w.shell.Preview(w.opts.PreviewWidth)
	if err != nil {
		w.logger.Warn("preview failed", slog.Any("err", err))
	}
	w.preview.Image = img
	w.preview.Refresh()
}

// sizedTheme overrides the text size of a theme.
type sizedTheme struct {
	fyne.Theme
	text float32
}

func (t *sizedTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.text
	}
	return t.Theme.Size(name)
}
