package lib

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

type Align byte

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// ScreenPrint lays out lines of text top to bottom, like a terminal.
type ScreenPrint struct {
	image *ebiten.Image
	y     int

	Color  color.Color
	AlignX Align
	Font   font.Face

	Border      int
	LineSpacing int
}

func NewScreenPrint() *ScreenPrint {
	return &ScreenPrint{Color: color.White}
}

func (scrp *ScreenPrint) Reset(screen *ebiten.Image) {
	scrp.y = 0
	scrp.image = screen
}

// Skip moves the cursor down by dy pixels.
func (scrp *ScreenPrint) Skip(dy int) { scrp.y += dy }

func (scrp *ScreenPrint) Println(str string) {
	for _, line := range strings.Split(str, "\n") {
		if line == "" {
			line = " "
		}
		textB := text.BoundString(scrp.Font, line)
		x := scrp.lineX(textB.Dx())
		y := scrp.y + textB.Dy() + scrp.Border/2
		text.Draw(scrp.image, line, scrp.Font, x, y, scrp.textColor())
		scrp.y += textB.Dy() + scrp.LineSpacing
	}
}

func (scrp *ScreenPrint) Printf(format string, args ...any) {
	scrp.Println(fmt.Sprintf(format, args...))
}

// PrintAt draws str anchored within the screen without moving the cursor.
func (scrp *ScreenPrint) PrintAt(alignX, alignY Align, str string) {
	savedY, savedAlign := scrp.y, scrp.AlignX
	defer func() { scrp.y, scrp.AlignX = savedY, savedAlign }()

	textB := text.BoundString(scrp.Font, str)
	imageB := scrp.image.Bounds()
	scrp.AlignX = alignX
	switch alignY {
	case AlignStart:
		scrp.y = 0
	case AlignCenter:
		scrp.y = imageB.Dy()/2 - textB.Dy()/2 - scrp.Border/2
	case AlignEnd:
		scrp.y = imageB.Dy() - textB.Dy()*2 - scrp.Border/2
	}
	scrp.Println(str)
}

func (scrp *ScreenPrint) PrintfAt(alignX, alignY Align, format string, args ...any) {
	scrp.PrintAt(alignX, alignY, fmt.Sprintf(format, args...))
}

// PrintColumn prints left and right on one line, or on two when they
// would overlap.
func (scrp *ScreenPrint) PrintColumn(left, right string) {
	align := scrp.AlignX
	defer func() { scrp.AlignX = align }()

	w1 := text.BoundString(scrp.Font, left).Dx()
	w2 := text.BoundString(scrp.Font, right).Dx()
	if w1+w2 >= scrp.image.Bounds().Dx()*95/100 {
		scrp.Println(left)
		scrp.Println(right)
		return
	}

	y := scrp.y
	scrp.AlignX = AlignStart
	scrp.Println(left)
	scrp.y = y
	scrp.AlignX = AlignEnd
	scrp.Println(right)
}

func (scrp *ScreenPrint) lineX(width int) int {
	imageW := scrp.image.Bounds().Dx()
	switch scrp.AlignX {
	case AlignCenter:
		return imageW/2 - width/2
	case AlignEnd:
		return imageW - width - scrp.Border/2
	}
	return scrp.Border / 2
}

func (scrp *ScreenPrint) textColor() color.Color {
	if scrp.Color == nil {
		return color.Black
	}
	return scrp.Color
}
