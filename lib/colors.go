package lib

import "image/color"

var (
	ColorWhite     = color.White
	ColorTeal      = color.RGBA{0, 255, 255, 255}
	ColorTealDark  = color.RGBA{0, 90, 90, 255}
	ColorGreen     = color.RGBA{0, 255, 0, 255}
	ColorGray      = color.RGBA{90, 90, 90, 255}
	ColorRed       = color.RGBA{255, 0, 0, 255}
	ColorRedDark   = color.RGBA{30, 0, 0, 255}
	ColorCoral     = color.RGBA{255, 127, 80, 255}
	ColorCoralDark = color.RGBA{90, 40, 20, 255}
	ColorShade     = color.RGBA{0, 0, 0, 150}
)
