package ui

import (
	"fmt"
	"strings"
)

// Color is one of the basic console colors. Both the VT and the Windows
// console backends can represent all of them.
type Color int

// Possible values for Color.
const (
	DefaultColor Color = iota
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	Gray
)

var colorNames = [...]string{
	"default", "black", "red", "green", "yellow", "blue", "magenta", "cyan",
	"white", "gray",
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("(bad color %d)", int(c))
	}
	return colorNames[c]
}

// ParseColor parses a color name. Names are case-insensitive, and "grey" is
// accepted as an alias for "gray".
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(s)
	if name == "grey" {
		name = "gray"
	}
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return DefaultColor, fmt.Errorf("bad color: %s", s)
}

// UnmarshalText implements encoding.TextUnmarshaler, so that colors can be
// used directly in configuration structs.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
