package headless

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/photo"
	"github.com/nvlled/photocage/lib/sequencer"
	"github.com/nvlled/photocage/lib/strip"
)

func solidFrame(t *testing.T, c color.Color) photo.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return photo.Frame{Data: buf.Bytes(), Mime: photo.MimePNG}
}

// colorSource hands out the given colors in turn.
func colorSource(t *testing.T, colors ...color.Color) camera.Source {
	var mu sync.Mutex
	next := 0
	return camera.FuncSource(func() (photo.Frame, bool) {
		mu.Lock()
		defer mu.Unlock()
		frame := solidFrame(t, colors[next%len(colors)])
		next++
		return frame, true
	})
}

func TestBlackAndWhiteSession(t *testing.T) {
	layout, _ := sequencer.LookupLayout("2 Pose")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames, err := Capture(ctx, CaptureOptions{
		Source:   colorSource(t, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}),
		Layout:   layout,
		Filter:   filter.BW,
		Interval: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("wrong frame count %v", len(frames))
	}

	dir := t.TempDir()
	handoffFile := filepath.Join(dir, "photos.json")
	if err := SaveFrames(handoffFile, frames); err != nil {
		t.Fatal(err)
	}
	received, err := LoadFrames([]string{handoffFile})
	if err != nil {
		t.Fatal(err)
	}

	stripFile := filepath.Join(dir, strip.DefaultFilename)
	if err := WriteStripFile(ctx, stripFile, received, strip.DefaultBackground.Color); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(stripFile)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}
	if size := img.Bounds().Size(); size != (image.Point{244, 328}) {
		t.Fatalf("wrong strip size %v", size)
	}

	r, g, b, _ := img.At(2, 2).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("background is not white")
	}
	for i := 0; i < 2; i++ {
		center := strip.FrameRect(i).Min.Add(image.Pt(strip.FrameWidth/2, strip.FrameHeight/2))
		r, g, b, _ := img.At(center.X, center.Y).RGBA()
		if diff(r>>8, g>>8) > 2 || diff(g>>8, b>>8) > 2 {
			t.Errorf("frame %v is not grayscale: %v %v %v", i, r>>8, g>>8, b>>8)
		}
	}
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestCaptureCameraNeverReady(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	source := camera.FuncSource(func() (photo.Frame, bool) { return photo.Frame{}, false })
	_, err := Capture(ctx, CaptureOptions{Source: source, Interval: time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestCaptureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Capture(ctx, CaptureOptions{
		Source:   colorSource(t, color.White),
		Interval: time.Millisecond,
	})
	if err == nil {
		t.Error("expected error for a cancelled capture")
	}
}

func TestCaptureInvalidLayout(t *testing.T) {
	_, err := Capture(context.Background(), CaptureOptions{
		Source: colorSource(t, color.White),
		Layout: sequencer.Layout{Name: "7 Pose", FrameCount: 7},
	})
	if !errors.Is(err, sequencer.ErrInvalidLayout) {
		t.Errorf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestWriteStripGif(t *testing.T) {
	frames := []photo.Frame{
		solidFrame(t, color.RGBA{255, 0, 0, 255}),
		solidFrame(t, color.RGBA{0, 255, 0, 255}),
		solidFrame(t, color.RGBA{0, 0, 255, 255}),
	}
	filename := filepath.Join(t.TempDir(), "booth.gif")
	if err := WriteStripFile(context.Background(), filename, frames, color.White); err != nil {
		t.Fatal(err)
	}
	file, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	anim, err := gif.DecodeAll(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("wrong frame count %v", len(anim.Image))
	}
}

func TestFilterFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.jpg")
	if err := os.WriteFile(src, solidFrame(t, color.RGBA{200, 40, 40, 255}).Data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := FilterFile(src, dst, filter.BW); err != nil {
		t.Fatal(err)
	}
	frame, err := camera.ReadFrame(dst)
	if err != nil {
		t.Fatal(err)
	}
	img, err := frame.Decode()
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if diff(r>>8, g>>8) > 3 || diff(g>>8, b>>8) > 3 {
		t.Errorf("not grayscale: %v %v %v", r>>8, g>>8, b>>8)
	}
}

func TestLoadFramesFromImages(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for i, c := range []color.Color{color.White, color.Black} {
		name := filepath.Join(dir, string(rune('a'+i))+".png")
		if err := os.WriteFile(name, solidFrame(t, c).Data, 0644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	frames, err := LoadFrames(names)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[0].Mime != photo.MimePNG {
		t.Errorf("unexpected frames %v", len(frames))
	}
}
