package lib

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/nvlled/carrot"
	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/sequencer"
	xdraw "golang.org/x/image/draw"
)

const (
	previewEvery = 20 // ticks between live preview refreshes
	previewWidth = 480
	thumbWidth   = 110
)

var errCameraNotReady = errors.New("camera not ready")

type capturePhase int

const (
	phaseReady capturePhase = iota
	phaseCounting
	phaseDone
)

type CaptureView struct {
	app    *App
	draw   func(*ebiten.Image)
	script *carrot.Script
	phase  capturePhase

	// enter is true on the tick Enter was pressed.
	enter bool

	preview     *ebiten.Image
	previewTask *Task[image.Image]

	thumbs    []*ebiten.Image
	countdown int
	shotErr   error
}

func NewCaptureView(app *App) *CaptureView {
	view := &CaptureView{app: app}
	view.setPhase(phaseReady)
	view.script = carrot.Start(view.coroutine)
	return view
}

func (view *CaptureView) Name() string { return "capture" }

func (view *CaptureView) Enter() {
	view.countdown = view.app.seq.Status().Countdown
}

func (view *CaptureView) Leave() {}

func (view *CaptureView) Update() {
	view.handleEvents()
	view.updatePreview()
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		view.app.newSession()
		return
	}
	if !view.app.seq.Status().Locked() {
		view.handleSettingKeys()
	}
	view.enter = inpututil.IsKeyJustPressed(ebiten.KeyEnter)
	view.script.Update()
}

func (view *CaptureView) Draw(screen *ebiten.Image) {
	view.draw(screen)
}

func (view *CaptureView) setPhase(phase capturePhase) {
	view.phase = phase
	switch phase {
	case phaseReady:
		view.draw = view.drawReady
	case phaseCounting:
		view.draw = view.drawCounting
	case phaseDone:
		view.draw = view.drawDone
	}
}

func (view *CaptureView) coroutine(ctrl *carrot.Control) {
	app := view.app
	finished := func() bool {
		return app.seq.Status().State == sequencer.Done
	}
	for {
		view.setPhase(phaseReady)
		ctrl.Yield()
		ctrl.YieldUntil(func() bool { return view.enter })

		if err := app.seq.Start(app.ctx); err != nil {
			app.setError(err)
			continue
		}
		view.setPhase(phaseCounting)
		ctrl.YieldUntil(func() bool {
			return !app.seq.Status().Capturing()
		})
		if !finished() {
			continue
		}

		// a new session started from here leaves Done without Enter
		view.setPhase(phaseDone)
		ctrl.Yield()
		ctrl.YieldUntil(func() bool { return view.enter || !finished() })
		if !finished() {
			continue
		}
		if err := app.handoff.Send(app.seq.Frames()); err != nil {
			app.setError(err)
			continue
		}
		app.navigate(app.previewView)
	}
}

// handleEvents folds what the sequencer goroutine reported since the last
// tick into the view. Events of an older session are dropped.
func (view *CaptureView) handleEvents() {
	session := view.app.seq.Status().Session
	for _, ev := range view.app.events.Drain() {
		if ev.Session != session && ev.Kind != sequencer.EventReset {
			continue
		}
		switch ev.Kind {
		case sequencer.EventCountdown:
			view.countdown = ev.Countdown
		case sequencer.EventCaptured:
			view.shotErr = nil
			img, err := ev.Frame.Decode()
			if err != nil {
				view.app.logError(err)
				continue
			}
			view.thumbs = append(view.thumbs, ebiten.NewImageFromImage(img))
		case sequencer.EventFailed:
			view.shotErr = ev.Err
		case sequencer.EventReset:
			view.clearThumbs()
			view.countdown = ev.Countdown
			view.shotErr = nil
		}
	}
}

func (view *CaptureView) clearThumbs() {
	for _, thumb := range view.thumbs {
		thumb.Dispose()
	}
	view.thumbs = nil
}

func (view *CaptureView) handleSettingKeys() {
	seq := view.app.seq
	status := seq.Status()
	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		err = seq.SetLayout(sequencer.NextLayout(status.Layout))
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		err = seq.SetDelay(status.Delay.Next())
	default:
		if i := pressedFilterKey(); i >= 0 && i < len(filter.Presets) {
			err = seq.SetFilter(filter.Presets[i])
		}
	}
	if err != nil {
		view.app.logError(err)
	}
}

func (view *CaptureView) updatePreview() {
	if view.previewTask != nil {
		if !view.previewTask.IsDone() {
			return
		}
		task := view.previewTask
		view.previewTask = nil
		if task.Err == nil {
			if view.preview != nil {
				view.preview.Dispose()
			}
			view.preview = ebiten.NewImageFromImage(task.Result)
		}
	}

	if view.app.tickCounter%previewEvery != 0 {
		return
	}
	source := view.app.source
	expr := view.app.seq.Status().Filter.Expression
	view.previewTask = Go(func() (image.Image, error) {
		return livePreview(source, expr)
	})
}

// livePreview grabs a downscaled frame with the filter applied for display.
// Nothing here is stored.
func livePreview(source camera.Source, expr string) (image.Image, error) {
	frame, ok := camera.Preview(source)
	if !ok {
		return nil, errCameraNotReady
	}
	img, err := frame.Decode()
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > previewWidth {
		h := b.Dy() * previewWidth / b.Dx()
		scaled := image.NewRGBA(image.Rect(0, 0, previewWidth, h))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		img = scaled
	}
	return filter.Apply(img, expr)
}

func (view *CaptureView) drawPreview(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if view.preview != nil {
		drawFit(screen, view.preview, 20, 120, w-40-thumbWidth-20, h-240)
	}

	x := w - thumbWidth - 20
	for i, thumb := range view.thumbs {
		drawFit(screen, thumb, x, 120+float64(i)*(thumbWidth*3/4+10), thumbWidth, thumbWidth*3/4)
	}
}

func (view *CaptureView) drawSettings(screen *ebiten.Image) {
	app := view.app
	status := app.seq.Status()

	scrp := app.scrp
	scrp.Font = app.smallFont
	scrp.AlignX = AlignStart
	scrp.Color = ColorWhite
	if status.Locked() {
		scrp.Color = ColorGray
	}
	scrp.PrintColumn(
		"Layout [L]: "+status.Layout.Name,
		"Delay [D]: "+status.Delay.String(),
	)
	scrp.Printf("Filter [1-%v]: %v", len(filter.Presets), status.Filter.Name)
	scrp.Color = ColorWhite
	scrp.Printf("Photos: %v/%v", status.Captured, status.FrameCount)
	if status.Captured > 0 {
		scrp.Font = app.tinyFont
		scrp.Println("Start over [Backspace]")
	}
}

func (view *CaptureView) drawReady(screen *ebiten.Image) {
	view.drawSettings(screen)
	view.drawPreview(screen)

	scrp := view.app.scrp
	scrp.Font = view.app.regularFont
	scrp.Color = ColorTeal
	scrp.PrintAt(AlignCenter, AlignEnd, "Press [Enter] to start")
}

func (view *CaptureView) drawCounting(screen *ebiten.Image) {
	view.drawSettings(screen)
	view.drawPreview(screen)

	app := view.app
	scrp := app.scrp
	if view.shotErr != nil {
		scrp.Font = app.smallFont
		scrp.Color = ColorRed
		scrp.PrintAt(AlignCenter, AlignEnd, "Could not take that one, hold the pose: "+view.shotErr.Error())
	}

	if view.countdown > 0 {
		b := screen.Bounds()
		ebitenutil.DrawRect(screen, float64(b.Dx()/2-60), float64(b.Dy()/2-60), 120, 120, ColorShade)
		scrp.Font = app.regularFont
		scrp.Color = ColorCoral
		scrp.PrintfAt(AlignCenter, AlignCenter, "%v", view.countdown)
	}
}

func (view *CaptureView) drawDone(screen *ebiten.Image) {
	view.drawSettings(screen)
	view.drawPreview(screen)

	scrp := view.app.scrp
	scrp.Font = view.app.regularFont
	scrp.Color = ColorGreen
	scrp.PrintAt(AlignCenter, AlignEnd, "All done! [Enter] to see your strip")
}
