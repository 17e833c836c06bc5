package lib

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/nvlled/photocage/lib/flipbook"
	"github.com/nvlled/photocage/lib/photo"
	"github.com/nvlled/photocage/lib/strip"
)

// gifFrameDelay is how long each photo shows in the flipbook, in
// hundredths of a second.
const gifFrameDelay = 100

type PreviewView struct {
	app *App

	frames      []photo.Frame
	cancel      context.CancelFunc
	composeTask *Task[*strip.Composer]
	composer    *strip.Composer
	background  strip.Background
	canvas      *image.RGBA
	stripImage  *ebiten.Image

	saveTask     *Task[string]
	message      string
	messageColor color.Color
	err          error
}

func NewPreviewView(app *App, bg strip.Background) *PreviewView {
	return &PreviewView{app: app, background: bg}
}

func (view *PreviewView) Name() string { return "preview" }

// Enter takes the handed-off frames. Without any there is nothing to show
// and the app goes back to capturing.
func (view *PreviewView) Enter() {
	app := view.app
	frames, ok, err := app.handoff.Receive()
	if err != nil {
		app.logError(err)
	}
	if !ok || len(frames) == 0 {
		app.log.Info("no photos to preview, back to capture")
		app.navigate(app.captureView)
		return
	}

	view.frames = frames
	view.err = nil
	view.message = ""

	ctx, cancel := context.WithCancel(app.ctx)
	view.cancel = cancel
	decoder := app.decoder
	view.composeTask = Go(func() (*strip.Composer, error) {
		return strip.NewComposer(ctx, frames, strip.WithDecoder(decoder))
	})
}

// Leave discards the strip. A compose still running is cancelled and its
// result is never looked at.
func (view *PreviewView) Leave() {
	if view.cancel != nil {
		view.cancel()
		view.cancel = nil
	}
	view.composeTask = nil
	view.saveTask = nil
	view.composer = nil
	view.canvas = nil
	view.frames = nil
	if view.stripImage != nil {
		view.stripImage.Dispose()
		view.stripImage = nil
	}
}

func (view *PreviewView) Update() {
	if task := view.composeTask; task != nil && task.IsDone() {
		view.composeTask = nil
		if task.Err != nil {
			view.err = task.Err
			view.app.logError(task.Err)
		} else {
			view.composer = task.Result
			view.render()
		}
	}

	if task := view.saveTask; task != nil && task.IsDone() {
		view.saveTask = nil
		if task.Err != nil {
			view.app.logError(task.Err)
			view.message = "Could not save: " + task.Err.Error()
			view.messageColor = ColorRed
		} else {
			view.app.log.WithField("file", task.Result).Info("strip saved")
			view.message = "Saved to " + task.Result
			view.messageColor = ColorGreen
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		view.app.newSession()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		view.cycleBackground(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		view.cycleBackground(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		view.save()
	}
}

func (view *PreviewView) cycleBackground(step int) {
	view.background = strip.CycleBackground(view.background, step)
	view.render()
}

// render redraws the strip from the decoded frames; nothing is decoded
// again.
func (view *PreviewView) render() {
	if view.composer == nil {
		return
	}
	view.canvas = view.composer.Render(view.background.Color)
	if view.stripImage != nil {
		view.stripImage.Dispose()
	}
	view.stripImage = ebiten.NewImageFromImage(view.canvas)
}

func (view *PreviewView) save() {
	if view.canvas == nil || view.saveTask != nil {
		return
	}
	filename, err := view.app.nextOutputFilename()
	if err != nil {
		view.app.setError(err)
		return
	}
	outputType := view.app.settings.OutputType
	canvas, frames := view.canvas, view.frames
	view.message = "Saving..."
	view.messageColor = ColorWhite
	view.saveTask = Go(func() (string, error) {
		return filename, WriteOutput(filename, outputType, canvas, frames)
	})
}

// WriteOutput saves the rendered strip as PNG, or the frames as a GIF
// flipbook.
func WriteOutput(filename string, outputType OutputType, canvas image.Image, frames []photo.Frame) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	switch outputType {
	case OutputTypeGif:
		err = flipbook.Encode(file, frames, gifFrameDelay)
	case OutputTypePng:
		err = png.Encode(file, canvas)
	default:
		err = fmt.Errorf("unsupported output type %v", outputType)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

func (view *PreviewView) Draw(screen *ebiten.Image) {
	app := view.app
	scrp := app.scrp
	b := screen.Bounds()

	if view.err != nil {
		scrp.Font = app.smallFont
		scrp.Color = ColorRed
		scrp.PrintAt(AlignCenter, AlignCenter, "Could not develop the strip: "+view.err.Error())
		scrp.Color = ColorWhite
		scrp.PrintAt(AlignCenter, AlignEnd, "New session [Backspace]")
		return
	}
	if view.stripImage == nil {
		scrp.Font = app.regularFont
		scrp.Color = ColorTeal
		scrp.PrintAt(AlignCenter, AlignCenter, "Developing your strip...")
		return
	}

	drawFit(screen, view.stripImage, 20, 80, float64(b.Dx()-40), float64(b.Dy()-200))

	scrp.Font = app.smallFont
	scrp.Color = ColorWhite
	scrp.AlignX = AlignCenter
	scrp.Printf("Background [Left/Right]: %v", view.background.Name)
	scrp.Printf("Save as %v [Enter]    New session [Backspace]", app.settings.OutputType)
	if view.message != "" {
		scrp.Color = view.messageColor
		scrp.PrintAt(AlignCenter, AlignEnd, view.message)
	}
}
