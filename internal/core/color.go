package core

import "strings"

// Color is a terminal foreground color for a screen cell or sprite.
// The platform maps each value to an ANSI code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	colorCount
)

var colorNames = [colorCount]string{
	"default",
	"red",
	"green",
	"yellow",
	"blue",
	"magenta",
	"cyan",
	"white",
	"bright_red",
	"bright_green",
	"bright_yellow",
	"bright_blue",
	"bright_magenta",
	"bright_cyan",
	"bright_white",
	"orange",
	"gray",
}

// String returns the name sprite sheets use for c.
func (c Color) String() string {
	if c >= colorCount {
		return "unknown"
	}
	return colorNames[c]
}

// ParseColor maps a sheet color name to a Color. Names are case-insensitive;
// "grey" is accepted as well.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "grey" {
		return ColorGray, true
	}
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return ColorDefault, false
}
