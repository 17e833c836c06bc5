package strip

import (
	"image/color"
	"strings"
)

type Background struct {
	Name  string
	Color color.RGBA
}

// Backgrounds use the CSS named colors of the same name.
var Backgrounds = []Background{
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Black", color.RGBA{0, 0, 0, 255}},
	{"Coral", color.RGBA{255, 127, 80, 255}},
	{"Gray", color.RGBA{128, 128, 128, 255}},
	{"Blue", color.RGBA{0, 0, 255, 255}},
	{"Yellow", color.RGBA{255, 255, 0, 255}},
	{"Purple", color.RGBA{128, 0, 128, 255}},
	{"Maroon", color.RGBA{128, 0, 0, 255}},
}

var DefaultBackground = Backgrounds[0]

func (bg Background) String() string { return bg.Name }

func LookupBackground(name string) (Background, bool) {
	for _, bg := range Backgrounds {
		if strings.EqualFold(bg.Name, name) {
			return bg, true
		}
	}
	return Background{}, false
}

// CycleBackground steps through Backgrounds by step, wrapping both ways.
func CycleBackground(bg Background, step int) Background {
	n := len(Backgrounds)
	for i, candidate := range Backgrounds {
		if candidate.Name == bg.Name {
			return Backgrounds[((i+step)%n+n)%n]
		}
	}
	return DefaultBackground
}
