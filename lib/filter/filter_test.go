package filter

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/nvlled/photocage/lib/photo"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 20), uint8(y * 30), uint8(200 - x*10), 255})
		}
	}
	return img
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestNormalIsIdentity(t *testing.T) {
	src := testImage(8, 6)
	out, err := Apply(src, Normal.Expression)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Errorf("normal filter changed pixels")
	}
	if out == src {
		t.Errorf("apply must return a new image")
	}
}

func TestGrayscale(t *testing.T) {
	out, err := Apply(testImage(8, 6), BW.Expression)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		if r != g || g != b {
			t.Fatalf("pixel %v is not gray: %v %v %v", i/4, r, g, b)
		}
	}
}

func TestContrastAndBrightnessAtHundredPercent(t *testing.T) {
	src := testImage(5, 5)
	out, err := Apply(src, "contrast(100%) brightness(1) saturate(100%)")
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Pix {
		if absDiff(src.Pix[i], out.Pix[i]) > 1 {
			t.Fatalf("expected neutral filters, byte %v: %v -> %v", i, src.Pix[i], out.Pix[i])
		}
	}
}

func TestBrightnessClamps(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{200, 100, 0, 255})
	out, err := Apply(src, "brightness(200%)")
	if err != nil {
		t.Fatal(err)
	}
	got := out.NRGBAAt(0, 0)
	if got != (color.NRGBA{255, 200, 0, 255}) {
		t.Errorf("wrong pixel %v", got)
	}
}

func TestBlurKeepsUniformImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 12, 9))
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	out, err := Apply(src, Blur.Expression)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Pix {
		if absDiff(v, 128) > 1 {
			t.Fatalf("byte %v drifted to %v", i, v)
		}
	}
}

func TestBlurSpreadsEdges(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 1))
	for x := 0; x < 20; x++ {
		v := uint8(0)
		if x >= 10 {
			v = 255
		}
		src.SetNRGBA(x, 0, color.NRGBA{v, v, v, 255})
	}
	out, err := Apply(src, "blur(2px)")
	if err != nil {
		t.Fatal(err)
	}
	left, right := out.NRGBAAt(9, 0).R, out.NRGBAAt(10, 0).R
	if left == 0 || right == 255 || left >= right {
		t.Errorf("edge was not softened: %v %v", left, right)
	}
}

func TestParse(t *testing.T) {
	for _, opt := range Presets {
		if _, err := Parse(opt.Expression); err != nil {
			t.Errorf("preset %v: %v", opt.Name, err)
		}
	}

	chain, err := Parse(Vintage.Expression)
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 3 {
		t.Fatalf("wrong chain length %v", len(chain))
	}
	if s := chain.String(); s != "sepia(50%) contrast(90%) brightness(90%)" {
		t.Errorf("wrong chain %q", s)
	}

	for _, expr := range []string{
		"sepia",
		"sepia(50%",
		"hue-rotate(90deg)",
		"contrast(-1)",
		"blur(4em)",
		"(50%)",
	} {
		if _, err := Parse(expr); !errors.Is(err, ErrSyntax) {
			t.Errorf("%q: expected syntax error, got %v", expr, err)
		}
	}
}

func TestLookup(t *testing.T) {
	opt, ok := Lookup("b&w")
	if !ok || opt != BW {
		t.Errorf("lookup failed: %v", opt)
	}
	if _, ok := Lookup("sparkles"); ok {
		t.Error("unknown filter found")
	}
}

func TestApplyEncoded(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(16, 16)); err != nil {
		t.Fatal(err)
	}
	out, err := ApplyEncoded(photo.Frame{Data: buf.Bytes(), Mime: photo.MimePNG}, BW.Expression)
	if err != nil {
		t.Fatal(err)
	}
	if out.Mime != photo.MimeJPEG {
		t.Errorf("wrong mime %v", out.Mime)
	}
	img, err := out.Decode()
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if absDiff(c.R, c.G) > 3 || absDiff(c.G, c.B) > 3 {
				t.Fatalf("pixel %v,%v is not gray: %v", x, y, c)
			}
		}
	}

	_, err = ApplyEncoded(photo.Frame{Data: []byte("not an image")}, BW.Expression)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestColorMatrixValues(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	px := color.NRGBA{51, 128, 251, 255}
	for _, entry := range []struct {
		expr     string
		in, want color.NRGBA
	}{
		{"sepia(100%)", white, color.NRGBA{255, 255, 239, 255}},
		{"grayscale(100%)", px, color.NRGBA{121, 121, 121, 255}},
		{"grayscale(50%)", px, color.NRGBA{86, 124, 186, 255}},
		{"contrast(120%)", px, color.NRGBA{36, 128, 255, 255}},
		{"saturate(150%)", px, color.NRGBA{16, 132, 255, 255}},
		{"brightness(90%)", px, color.NRGBA{46, 115, 226, 255}},
		{Vintage.Expression, px, color.NRGBA{99, 123, 160, 255}},
		{Warm.Expression, px, color.NRGBA{48, 135, 255, 255}},
		{Polaroid.Expression, px, color.NRGBA{0, 133, 255, 255}},
	} {
		src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		src.SetNRGBA(0, 0, entry.in)
		out, err := Apply(src, entry.expr)
		if err != nil {
			t.Fatalf("%v: %v", entry.expr, err)
		}
		got := out.NRGBAAt(0, 0)
		if absDiff(got.R, entry.want.R) > 1 || absDiff(got.G, entry.want.G) > 1 ||
			absDiff(got.B, entry.want.B) > 1 || got.A != 255 {
			t.Errorf("%v on %v: expected %v, got %v", entry.expr, entry.in, entry.want, got)
		}
	}
}

func TestBlurIsSymmetric(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 21, 1))
	for x := 0; x < 21; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{0, 0, 0, 255})
	}
	src.SetNRGBA(10, 0, color.NRGBA{255, 255, 255, 255})

	out, err := Apply(src, "blur(1px)")
	if err != nil {
		t.Fatal(err)
	}
	center := out.NRGBAAt(10, 0).R
	if center == 255 || center == 0 {
		t.Errorf("center was not spread: %v", center)
	}
	for d := 1; d <= 3; d++ {
		left, right := out.NRGBAAt(10-d, 0).R, out.NRGBAAt(10+d, 0).R
		if absDiff(left, right) > 1 {
			t.Errorf("offset %v is lopsided: %v %v", d, left, right)
		}
	}
	if far := out.NRGBAAt(0, 0).R; far != 0 {
		t.Errorf("blur reached past 3 sigma: %v", far)
	}
}
