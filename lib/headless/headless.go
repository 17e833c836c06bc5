// Package headless runs the booth without a window: capture to a handoff
// file, then compose or filter from files.
package headless

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/delay"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/flipbook"
	"github.com/nvlled/photocage/lib/handoff"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/photo"
	"github.com/nvlled/photocage/lib/progress"
	"github.com/nvlled/photocage/lib/sequencer"
	"github.com/nvlled/photocage/lib/strip"
)

var log = logger.Scope("headless")

var ErrIncomplete = errors.New("capture ended before every frame was taken")

type CaptureOptions struct {
	Source   camera.Source
	Layout   sequencer.Layout
	Filter   filter.Option
	Delay    delay.T
	Interval time.Duration

	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
}

// Capture runs one full session and returns its frames. Cancelling ctx
// stops the countdown.
func Capture(ctx context.Context, opts CaptureOptions) ([]photo.Frame, error) {
	if opts.Layout.Name == "" {
		opts.Layout = sequencer.DefaultLayout
	}
	if opts.Filter.Name == "" {
		opts.Filter = filter.Normal
	}
	if opts.Delay == 0 {
		opts.Delay = delay.Default
	}
	if opts.Interval == 0 {
		opts.Interval = time.Second
	}
	if !opts.Layout.Valid() {
		return nil, sequencer.ErrInvalidLayout
	}

	var onCaptured func()
	if opts.Progress != nil {
		bar := progress.NewWriter(opts.Progress, opts.Layout.FrameCount, "capturing")
		onCaptured = func() { _ = bar.Add(1) }
	}

	seq := sequencer.New(opts.Source,
		sequencer.WithLayout(opts.Layout),
		sequencer.WithFilter(opts.Filter),
		sequencer.WithDelay(opts.Delay),
		sequencer.WithInterval(opts.Interval),
		sequencer.WithObserver(func(ev sequencer.Event) {
			switch ev.Kind {
			case sequencer.EventCountdown:
				log.WithField("countdown", ev.Countdown).Debug("tick")
			case sequencer.EventCaptured:
				log.WithField("index", ev.Index).Info("captured")
				if onCaptured != nil {
					onCaptured()
				}
			case sequencer.EventFailed:
				log.WithError(ev.Err).Warn("retaking shot")
			}
		}),
	)
	defer seq.Close()

	if err := seq.Start(ctx); err != nil {
		return nil, err
	}
	if err := seq.Wait(ctx); err != nil {
		return nil, err
	}
	if st := seq.Status(); st.State != sequencer.Done {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v of %v", ErrIncomplete, st.Captured, st.FrameCount)
	}
	return seq.Frames(), nil
}

// LoadFrames reads frames from a handoff file (.json) or from image files.
func LoadFrames(filenames []string) ([]photo.Frame, error) {
	if len(filenames) == 1 && strings.EqualFold(filepath.Ext(filenames[0]), ".json") {
		file, err := os.Open(filenames[0])
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return handoff.Read(file)
	}

	frames := make([]photo.Frame, 0, len(filenames))
	for _, filename := range filenames {
		frame, err := camera.ReadFrame(filename)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// SaveFrames writes frames in the handoff wire form.
func SaveFrames(filename string, frames []photo.Frame) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := handoff.Write(file, frames); err != nil {
		return err
	}
	return file.Close()
}

type Format string

const (
	FormatPng Format = "png"
	FormatGif Format = "gif"
)

// FormatOf picks the output format from the file extension.
func FormatOf(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".gif") {
		return FormatGif
	}
	return FormatPng
}

// WriteStrip composes frames and writes a PNG strip, or a GIF flipbook
// when w is for a .gif file.
func WriteStrip(ctx context.Context, w io.Writer, format Format, frames []photo.Frame, bg color.Color) error {
	if format == FormatGif {
		return flipbook.Encode(w, frames, 100)
	}
	composer, err := strip.NewComposer(ctx, frames)
	if err != nil {
		return err
	}
	return composer.Export(w, bg)
}

func WriteStripFile(ctx context.Context, filename string, frames []photo.Frame, bg color.Color) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := WriteStrip(ctx, file, FormatOf(filename), frames, bg); err != nil {
		return err
	}
	log.WithField("file", filename).Info("strip saved")
	return file.Close()
}

// FilterFile bakes opt into an image file and writes the result as JPEG.
func FilterFile(src, dst string, opt filter.Option) error {
	frame, err := camera.ReadFrame(src)
	if err != nil {
		return err
	}
	out, err := filter.ApplyEncoded(frame, opt.Expression)
	if err != nil {
		return fmt.Errorf("%v: %w", src, err)
	}
	return os.WriteFile(dst, out.Data, 0644)
}
