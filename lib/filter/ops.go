package filter

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Buffer holds non-premultiplied RGBA channels in [0,1], row-major.
type Buffer struct {
	W, H int
	Pix  []float32
}

func bufferFrom(img *image.NRGBA) *Buffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	buf := &Buffer{W: w, H: h, Pix: make([]float32, w*h*4)}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i, v := range row {
			buf.Pix[y*w*4+i] = float32(v) / 255
		}
	}
	return buf
}

func (buf *Buffer) writeTo(img *image.NRGBA) {
	w := buf.W
	for y := 0; y < buf.H; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := range row {
			row[i] = toByte(buf.Pix[y*w*4+i])
		}
	}
}

func toByte(v float32) uint8 {
	v = clamp(v)*255 + 0.5
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ColorMatrix maps rgb' = M·rgb + Offset. Alpha is untouched.
type ColorMatrix struct {
	Name   string
	Amount float64
	M      [3][3]float32
	Offset [3]float32
}

func (cm ColorMatrix) String() string {
	return fmt.Sprintf("%v(%v%%)", cm.Name, math.Round(cm.Amount*100))
}

func (cm ColorMatrix) Apply(buf *Buffer) {
	m, off := cm.M, cm.Offset
	for i := 0; i < len(buf.Pix); i += 4 {
		r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
		buf.Pix[i] = clamp(m[0][0]*r + m[0][1]*g + m[0][2]*b + off[0])
		buf.Pix[i+1] = clamp(m[1][0]*r + m[1][1]*g + m[1][2]*b + off[1])
		buf.Pix[i+2] = clamp(m[2][0]*r + m[2][1]*g + m[2][2]*b + off[2])
	}
}

func unit(amount float64) float32 {
	if amount > 1 {
		return 1
	}
	return float32(amount)
}

func Grayscale(amount float64) ColorMatrix {
	s := 1 - unit(amount)
	return ColorMatrix{
		Name:   "grayscale",
		Amount: amount,
		M: [3][3]float32{
			{0.2126 + 0.7874*s, 0.7152 - 0.7152*s, 0.0722 - 0.0722*s},
			{0.2126 - 0.2126*s, 0.7152 + 0.2848*s, 0.0722 - 0.0722*s},
			{0.2126 - 0.2126*s, 0.7152 - 0.7152*s, 0.0722 + 0.9278*s},
		},
	}
}

func Sepia(amount float64) ColorMatrix {
	s := 1 - unit(amount)
	return ColorMatrix{
		Name:   "sepia",
		Amount: amount,
		M: [3][3]float32{
			{0.393 + 0.607*s, 0.769 - 0.769*s, 0.189 - 0.189*s},
			{0.349 - 0.349*s, 0.686 + 0.314*s, 0.168 - 0.168*s},
			{0.272 - 0.272*s, 0.534 - 0.534*s, 0.131 + 0.869*s},
		},
	}
}

func Saturate(amount float64) ColorMatrix {
	s := float32(amount)
	return ColorMatrix{
		Name:   "saturate",
		Amount: amount,
		M: [3][3]float32{
			{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
		},
	}
}

func Brightness(amount float64) ColorMatrix {
	b := float32(amount)
	return ColorMatrix{
		Name:   "brightness",
		Amount: amount,
		M:      [3][3]float32{{b, 0, 0}, {0, b, 0}, {0, 0, b}},
	}
}

func Contrast(amount float64) ColorMatrix {
	c := float32(amount)
	o := 0.5 - 0.5*c
	return ColorMatrix{
		Name:   "contrast",
		Amount: amount,
		M:      [3][3]float32{{c, 0, 0}, {0, c, 0}, {0, 0, c}},
		Offset: [3]float32{o, o, o},
	}
}

// BlurOp is a gaussian blur with standard deviation Radius pixels.
type BlurOp struct {
	Radius float64
}

func (op BlurOp) String() string { return fmt.Sprintf("blur(%vpx)", op.Radius) }

// Apply round-trips through 8-bit NRGBA, which is what imaging blurs.
func (op BlurOp) Apply(buf *Buffer) {
	if op.Radius <= 0 || buf.W == 0 || buf.H == 0 {
		return
	}
	img := image.NewNRGBA(image.Rect(0, 0, buf.W, buf.H))
	buf.writeTo(img)
	blurred := imaging.Blur(img, op.Radius)
	*buf = *bufferFrom(blurred)
}
