// Package filter bakes CSS-style filter expressions such as
// "sepia(50%) contrast(90%)" into image pixels.
//
// Color functions use the Filter Effects color matrices and are applied in
// order on non-premultiplied channels, clamped to [0,1] after every step.
// blur(Npx) is a separable gaussian with standard deviation N.
package filter

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/nvlled/photocage/lib/photo"
)

var (
	ErrDecode = errors.New("cannot decode frame")
	ErrSyntax = errors.New("invalid filter expression")
)

type Option struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

var (
	Normal   = Option{Name: "Normal", Expression: ""}
	BW       = Option{Name: "B&W", Expression: "grayscale(100%)"}
	Vintage  = Option{Name: "Vintage", Expression: "sepia(50%) contrast(90%) brightness(90%)"}
	Blur     = Option{Name: "Blur", Expression: "blur(4px)"}
	Polaroid = Option{Name: "Polaroid", Expression: "contrast(120%) saturate(150%)"}
	Warm     = Option{Name: "Warm", Expression: "sepia(20%) contrast(100%) saturate(150%)"}
)

var Presets = []Option{Normal, BW, Vintage, Blur, Polaroid, Warm}

func Lookup(name string) (Option, bool) {
	for _, opt := range Presets {
		if strings.EqualFold(opt.Name, name) {
			return opt, true
		}
	}
	return Option{}, false
}

func (opt Option) String() string { return opt.Name }

// Op is one step of a chain. Apply transforms buf in place.
type Op interface {
	Apply(buf *Buffer)
	String() string
}

type Chain []Op

func (c Chain) IsIdentity() bool { return len(c) == 0 }

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, op := range c {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Apply returns a new image with every step baked in. The source is not
// modified. An empty chain copies the pixels unchanged.
func (c Chain) Apply(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	if c.IsIdentity() {
		return dst
	}

	buf := bufferFrom(dst)
	for _, op := range c {
		op.Apply(buf)
	}
	buf.writeTo(dst)
	return dst
}

// Apply runs the expression over img.
func Apply(img image.Image, expr string) (*image.NRGBA, error) {
	chain, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return chain.Apply(img), nil
}

// ApplyEncoded decodes a frame, bakes the filter in and re-encodes it as JPEG.
func ApplyEncoded(frame photo.Frame, expr string) (photo.Frame, error) {
	chain, err := Parse(expr)
	if err != nil {
		return photo.Frame{}, err
	}
	img, err := frame.Decode()
	if err != nil {
		return photo.Frame{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out, err := photo.EncodeJPEG(chain.Apply(img))
	if err != nil {
		return photo.Frame{}, fmt.Errorf("encode filtered frame: %w", err)
	}
	return out, nil
}
