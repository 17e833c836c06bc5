package lib

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// View is one screen of the app. Only the current view is updated and
// drawn; Enter and Leave run on navigation.
type View interface {
	Name() string
	Enter()
	Leave()
	Update()
	Draw(*ebiten.Image)
}

var filterKeys = []ebiten.Key{
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyDigit4,
	ebiten.KeyDigit5,
	ebiten.KeyDigit6,
}

// pressedFilterKey returns the preset index of the number key pressed this
// tick, or -1.
func pressedFilterKey() int {
	for i, key := range filterKeys {
		if inpututil.IsKeyJustPressed(key) {
			return i
		}
	}
	return -1
}

// drawFit draws img scaled to fit inside the w×h box at (x, y), centered.
func drawFit(screen, img *ebiten.Image, x, y, w, h float64) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	scale := w / iw
	if s := h / ih; s < scale {
		scale = s
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x+(w-iw*scale)/2, y+(h-ih*scale)/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}
