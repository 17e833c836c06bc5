package lib

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvlled/photocage/lib/photo"
	"github.com/nvlled/photocage/lib/sequencer"
)

// newTestApp builds an app whose camera plays back a directory, without
// opening a window.
func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(3, 3, color.Black)
	file, err := os.Create(filepath.Join(dir, "shot.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
	file.Close()

	app, err := NewApp(Options{
		SettingsFile: filepath.Join(t.TempDir(), DefaultSettingsFile),
		CameraDir:    dir,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Close)
	return app
}

// stepUntil runs the capture coroutine until cond holds, with Enter held
// down or not.
func stepUntil(t *testing.T, view *CaptureView, enter bool, cond func() bool) {
	t.Helper()
	for i := 0; i < 10 && !cond(); i++ {
		view.enter = enter
		view.script.Update()
	}
	view.enter = false
	if !cond() {
		t.Fatalf("capture flow stuck in phase %v", view.phase)
	}
}

func TestPreviewWithoutPhotosRedirects(t *testing.T) {
	app := newTestApp(t)
	app.navigate(app.previewView)

	if app.view != app.captureView {
		t.Errorf("expected capture view, got %v", app.view.Name())
	}
	if app.err != nil {
		t.Errorf("redirect must not raise an error: %v", app.err)
	}
}

func TestPreviewTakesHandoffOnce(t *testing.T) {
	app := newTestApp(t)
	frame, ok := app.source.Snapshot()
	if !ok {
		t.Fatal("camera not ready")
	}
	if err := app.handoff.Send([]photo.Frame{frame, frame}); err != nil {
		t.Fatal(err)
	}

	app.navigate(app.previewView)
	if app.view != app.previewView {
		t.Fatalf("expected preview view, got %v", app.view.Name())
	}
	if app.previewView.composeTask == nil {
		t.Fatal("preview must start composing")
	}

	app.navigate(app.captureView)
	if app.previewView.composeTask != nil || app.previewView.frames != nil {
		t.Error("leaving the preview must drop its strip")
	}

	app.navigate(app.previewView)
	if app.view != app.captureView {
		t.Error("handed-off photos must be taken once")
	}
}

func TestNewSessionLeavesDonePhase(t *testing.T) {
	app := newTestApp(t)
	app.navigate(app.captureView)
	view := app.captureView

	stepUntil(t, view, true, func() bool { return app.seq.Status().Capturing() })
	for app.seq.Tick(app.ctx) == sequencer.Counting {
	}
	stepUntil(t, view, false, func() bool { return view.phase == phaseDone })

	app.newSession()
	stepUntil(t, view, false, func() bool { return view.phase == phaseReady })
	if st := app.seq.Status(); st.Captured != 0 || st.State != sequencer.Idle {
		t.Fatalf("expected an empty session, got %+v", st)
	}

	// Enter starts the next run straight away
	stepUntil(t, view, true, func() bool { return app.seq.Status().Capturing() })
	if view.phase != phaseCounting {
		t.Errorf("expected counting phase, got %v", view.phase)
	}
}
