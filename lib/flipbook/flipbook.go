// Package flipbook writes the captured frames as an animated GIF.
package flipbook

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/nvlled/photocage/lib/photo"
	xdraw "golang.org/x/image/draw"
)

const DefaultFilename = "photo-strip.gif"

var ErrNoFrames = errors.New("no frames to animate")

// Encode writes one GIF frame per photo, each shown for delayCs
// hundredths of a second. Every frame is scaled to the first one's size.
func Encode(w io.Writer, frames []photo.Frame, delayCs int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	anim := &gif.GIF{LoopCount: 0}
	var bounds image.Rectangle
	for i, frame := range frames {
		img, err := frame.Decode()
		if err != nil {
			return fmt.Errorf("frame %v: %w", i, err)
		}
		if i == 0 {
			b := img.Bounds()
			bounds = image.Rect(0, 0, b.Dx(), b.Dy())
		}
		anim.Image = append(anim.Image, palettize(img, bounds))
		anim.Delay = append(anim.Delay, delayCs)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	return gif.EncodeAll(w, anim)
}

func palettize(img image.Image, bounds image.Rectangle) *image.Paletted {
	rgba := image.NewRGBA(bounds)
	xdraw.ApproxBiLinear.Scale(rgba, bounds, img, img.Bounds(), xdraw.Src, nil)

	quantizer := quantize.MedianCutQuantizer{}
	emptyPalette := make([]color.Color, 0, 256)
	pal := quantizer.Quantize(emptyPalette, rgba)

	paletted := image.NewPaletted(bounds, pal)
	draw.Src.Draw(paletted, bounds, rgba, image.Point{})
	return paletted
}
