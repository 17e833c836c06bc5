// Package strip lays captured frames out as a vertical photo strip with a
// solid background and a timestamp footer.
package strip

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/examples/resources/fonts"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/photo"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

const (
	FrameWidth      = 220
	FrameHeight     = 140
	Gap             = 12
	PaddingX        = 24
	PaddingTop      = 8
	TimestampHeight = 16

	FontSize = 12

	DefaultFilename = "photo-strip.png"

	// TimestampLayout matches "Sunday, October 18, 2026 at 03:04 PM".
	TimestampLayout = "Monday, January 02, 2006 at 03:04 PM"
)

var ErrNoFrames = errors.New("no frames to compose")

// Size returns the canvas size for n frames.
func Size(n int) image.Point {
	return image.Point{
		X: FrameWidth + PaddingX,
		Y: n*FrameHeight + n*Gap + PaddingTop + TimestampHeight,
	}
}

// FrameRect is where frame i is drawn.
func FrameRect(i int) image.Rectangle {
	x := PaddingX / 2
	y := PaddingTop + i*(FrameHeight+Gap)
	return image.Rect(x, y, x+FrameWidth, y+FrameHeight)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

type Composer struct {
	images  []image.Image
	decoder *Decoder
	face    font.Face
	now     func() time.Time
}

type Option func(*Composer)

// WithDecoder shares decoded images with other composers of the session.
func WithDecoder(d *Decoder) Option {
	return func(c *Composer) { c.decoder = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

func WithFace(face font.Face) Option {
	return func(c *Composer) { c.face = face }
}

// NewComposer decodes every frame before returning. A single failed decode
// aborts the composition.
func NewComposer(ctx context.Context, frames []photo.Frame, opts ...Option) (*Composer, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	c := &Composer{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = NewDecoder()
	}
	if c.face == nil {
		face, err := TimestampFace()
		if err != nil {
			return nil, err
		}
		c.face = face
	}

	log := logger.Scope("strip")
	log.Debugf("decoding %v frames", len(frames))

	c.images = make([]image.Image, len(frames))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, frame := range frames {
		i, frame := i, frame
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			img, err := c.decoder.Decode(frame)
			if err != nil {
				return fmt.Errorf("frame %v: %w", i, err)
			}
			c.images[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Composer) Len() int { return len(c.images) }

func (c *Composer) Size() image.Point { return Size(len(c.images)) }

// Render draws the strip on a fresh canvas. Decoded frames are reused, so
// changing the background is cheap.
func (c *Composer) Render(bg color.Color) *image.RGBA {
	size := c.Size()
	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, img := range c.images {
		xdraw.ApproxBiLinear.Scale(canvas, FrameRect(i), img, img.Bounds(), xdraw.Over, nil)
	}

	c.drawTimestamp(canvas, FormatTimestamp(c.now()))
	return canvas
}

func (c *Composer) drawTimestamp(canvas *image.RGBA, text string) {
	size := canvas.Bounds().Size()
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: c.face,
	}
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(size.X)/2 - width/2,
		Y: fixed.I(size.Y - PaddingTop),
	}
	d.DrawString(text)
}

// Export writes the rendered strip as PNG.
func (c *Composer) Export(w io.Writer, bg color.Color) error {
	if err := png.Encode(w, c.Render(bg)); err != nil {
		return fmt.Errorf("encode strip: %w", err)
	}
	return nil
}

var (
	fontOnce sync.Once
	fontErr  error
	ttf      *opentype.Font
)

// TimestampFace returns a new footer face. The font is parsed once; faces
// are not safe for concurrent use, so each composer gets its own.
func TimestampFace() (font.Face, error) {
	fontOnce.Do(func() {
		ttf, fontErr = opentype.Parse(fonts.MPlus1pRegular_ttf)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	const dpi = 72
	return opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}
