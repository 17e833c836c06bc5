package lib

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/handoff"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/sequencer"
	"github.com/nvlled/photocage/lib/strip"
	"github.com/sirupsen/logrus"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// ErrQuit is returned from Update when the user closes the booth.
var ErrQuit = errors.New("quit")

var lightBorderImage *ebiten.Image
var darkBorderImage *ebiten.Image

// Options are the command line overrides for the app.
type Options struct {
	SettingsFile string
	WindowTitle  string

	// CameraDir plays back images from a directory instead of the screen.
	CameraDir string

	Layout     sequencer.Layout
	Filter     filter.Option
	Background strip.Background
}

type App struct {
	tickCounter int

	regularFont font.Face
	smallFont   font.Face
	tinyFont    font.Face

	scrp *ScreenPrint
	log  *logrus.Entry

	settingFilename  string
	settings         Settings
	mustSaveSettings bool

	err error

	ctx    context.Context
	cancel context.CancelFunc

	source  camera.Source
	seq     *sequencer.Sequencer
	events  Queue[sequencer.Event]
	handoff *handoff.Channel
	decoder *strip.Decoder

	view        View
	captureView *CaptureView
	previewView *PreviewView
}

func NewApp(opts Options) (*App, error) {
	app := &App{
		scrp:            NewScreenPrint(),
		log:             logger.Scope("app"),
		settingFilename: opts.SettingsFile,
		handoff:         handoff.NewChannel(),
		decoder:         strip.NewDecoder(),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	if app.settingFilename == "" {
		app.settingFilename = SettingsPath()
	}
	settings, err := LoadSettings(app.settingFilename)
	if err != nil {
		// keep going on defaults, but tell the user
		app.setError(err)
	}
	app.settings = settings
	if opts.WindowTitle != "" {
		app.settings.WindowTitle = opts.WindowTitle
	}

	if opts.CameraDir != "" {
		src, err := camera.NewDirSource(opts.CameraDir)
		if err != nil {
			return nil, err
		}
		app.source = src
	} else {
		app.source = camera.NewScreenSource(app.settings.CameraRect.Rectangle())
	}

	if opts.Layout.Name == "" {
		opts.Layout = sequencer.DefaultLayout
	}
	if opts.Filter.Name == "" {
		opts.Filter = filter.Normal
	}
	if opts.Background.Name == "" {
		opts.Background = strip.DefaultBackground
	}

	app.seq = sequencer.New(app.source,
		sequencer.WithLayout(opts.Layout),
		sequencer.WithFilter(opts.Filter),
		sequencer.WithObserver(app.events.Push),
	)
	app.captureView = NewCaptureView(app)
	app.previewView = NewPreviewView(app, opts.Background)
	return app, nil
}

func (g *App) Init() error {
	lightBorderImage = ebiten.NewImage(1, 1)
	darkBorderImage = ebiten.NewImage(1, 1)

	wr := g.settings.WindowRect
	ebiten.SetWindowPosition(wr.X, wr.Y)
	ebiten.SetWindowSize(wr.W, wr.H)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	g.updateWindowTitle()

	if err := g.loadFonts(); err != nil {
		return err
	}
	g.scrp.Font = g.regularFont
	g.scrp.Border = 20
	g.scrp.Color = color.White
	g.scrp.LineSpacing = 10

	g.navigate(g.captureView)
	return nil
}

// Close stops a running countdown and any pending work.
func (g *App) Close() {
	g.seq.Close()
	g.cancel()
	if g.mustSaveSettings {
		g.onSettingsChanged()
	}
}

func (g *App) navigate(view View) {
	if g.view != nil {
		g.view.Leave()
	}
	g.log.WithField("view", view.Name()).Debug("navigate")
	g.view = view
	view.Enter()
}

// newSession drops every photo and returns to a fresh capture view.
func (g *App) newSession() {
	g.seq.Reset()
	g.handoff = handoff.NewChannel()
	g.decoder.Flush()
	g.err = nil
	g.log.WithField("session", g.seq.Status().Session).Info("new session")
	g.navigate(g.captureView)
}

func (g *App) Update() error {
	g.tickCounter++

	if g.mustSaveSettings && g.tickCounter%50 == 0 {
		g.onSettingsChanged()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}

	if g.err != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.err = nil
		}
		return nil
	}

	if !g.seq.Status().Capturing() {
		if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
			g.chooseOutputFile()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF8) {
			g.setOutputType((g.settings.OutputType + 1) % OutputType_Size)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
			ebiten.SetWindowDecorated(!ebiten.IsWindowDecorated())
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
			s := &g.settings
			s.OutputMethod = (s.OutputMethod + 1) % OutputMethod_Size
			g.scheduleSaveSettings()
		}
	}

	if g.view != nil {
		g.view.Update()
	}
	return nil
}

func (g *App) chooseOutputFile() {
	ext := g.settings.OutputType.String()
	filename, err := dialog.File().
		Filter(ext, ext).
		Save()
	if err != nil && err != dialog.ErrCancelled {
		g.setError(err)
		return
	}
	if filename != "" {
		g.settings.OutputFilename = filename
		g.setOutputType(g.settings.OutputType)
	}
}

func (g *App) setOutputType(outputType OutputType) {
	s := &g.settings
	s.OutputType = outputType
	s.OutputFilename = ReplaceExt(s.OutputFilename, outputType.String())
	g.scheduleSaveSettings()
}

func (g *App) nextOutputFilename() (string, error) {
	filename := g.settings.OutputFilename
	if g.settings.OutputMethod != OutputMethodNewFile {
		return filename, nil
	}
	return NextFreeFilename(filename)
}

func (g *App) drawBorder(screen *ebiten.Image) {
	light, dark := ColorTeal, ColorTealDark
	switch st := g.seq.Status(); {
	case st.Capturing():
		light, dark = ColorCoral, ColorCoralDark
	case st.Err != nil:
		light, dark = ColorRed, ColorRedDark
	}
	lightBorderImage.Fill(light)
	darkBorderImage.Fill(dark)

	b := screen.Bounds()
	sw, sh := float64(b.Dx()-1), float64(b.Dy()-1)
	for i, img := range []*ebiten.Image{lightBorderImage, darkBorderImage} {
		n := float64(i)
		for _, edge := range [][4]float64{
			{sw - n, 1, n, n},
			{1, sh - n, n, n},
			{sw - n, 1, n, sh - n},
			{1, sh - n, sw - n, n},
		} {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(edge[0], edge[1])
			op.GeoM.Translate(edge[2], edge[3])
			screen.DrawImage(img, op)
		}
	}
}

func (g *App) Draw(screen *ebiten.Image) {
	g.scrp.Reset(screen)

	b := screen.Bounds()
	ebitenutil.DrawRect(screen, 0, 0, float64(b.Dx()), float64(b.Dy()), ColorShade)
	g.drawBorder(screen)

	if g.err != nil {
		g.scrp.Font = g.smallFont
		g.scrp.Color = ColorRed
		g.scrp.PrintAt(AlignCenter, AlignCenter, g.err.Error())
		g.scrp.Color = ColorWhite
		g.scrp.PrintAt(AlignCenter, AlignEnd, "Dismiss [Enter]")
		return
	}

	var infoColor color.Color = ColorWhite
	if g.seq.Status().Capturing() {
		infoColor = ColorGray
	}
	if g.settings.WindowRect.H >= 250 {
		g.scrp.AlignX = AlignStart
		g.scrp.Font = g.tinyFont
		g.scrp.Color = infoColor
		g.scrp.PrintColumn(
			fmt.Sprintf("Output file [F5]: %v", g.settings.OutputFilename),
			"Toggle frame [F9]",
		)
		g.scrp.PrintColumn(
			fmt.Sprintf("Output method [F12]: %v", g.settings.OutputMethod),
			"Quit [Esc]",
		)
		g.scrp.Printf("Output type [F8]: %v", g.settings.OutputType)
		g.scrp.Skip(10)
	}

	if g.view != nil {
		g.view.Draw(screen)
	}
}

func (g *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	wr := &g.settings.WindowRect
	x, y := ebiten.WindowPosition()

	if wr.W != outsideWidth || wr.H != outsideHeight || wr.X != x || wr.Y != y {
		g.mustSaveSettings = true
	}

	wr.X, wr.Y = x, y
	wr.W = outsideWidth
	wr.H = outsideHeight

	return outsideWidth, outsideHeight
}

func (g *App) loadFonts() error {
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		return err
	}

	const dpi = 72
	faces := []struct {
		face *font.Face
		size float64
	}{
		{&g.regularFont, 24},
		{&g.smallFont, 18},
		{&g.tinyFont, 15},
	}
	for _, f := range faces {
		face, err := opentype.NewFace(tt, &opentype.FaceOptions{
			Size:    f.size,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return err
		}
		*f.face = face
	}
	return nil
}

func (g *App) scheduleSaveSettings() {
	g.mustSaveSettings = true
}

func (g *App) onSettingsChanged() {
	g.log.Debug("settings changed")
	if err := SaveSettings(g.settingFilename, g.settings); err != nil {
		g.logError(err)
	}
	g.mustSaveSettings = false
	g.updateWindowTitle()
}

func (g *App) updateWindowTitle() {
	wr := &g.settings.WindowRect
	ebiten.SetWindowTitle(fmt.Sprintf("%v %vx%v", g.settings.WindowTitle, wr.W, wr.H))
}

func (g *App) setError(err error) {
	g.err = err
	g.log.WithError(err).Error("error")
}

func (g *App) logError(err error) {
	g.log.WithError(err).Warn("ignored error")
}
