// Package appearance owns the light/dark choice of the session and the color
// palettes behind it.
package appearance

import "image/color"

// Palette is the set of named colors the screens draw with.
type Palette struct {
	Background       color.NRGBA
	Text             color.NRGBA
	Title            color.NRGBA
	Border           color.NRGBA
	TabBarBackground color.NRGBA
	TabBarActive     color.NRGBA
	InputBorder      color.NRGBA
	ButtonText       color.NRGBA
	PickerText       color.NRGBA
	PickerBackground color.NRGBA
	DatePickerText   color.NRGBA
	ModalBackground  color.NRGBA
	Label            color.NRGBA
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Light is the default palette: plum text on white.
var Light = Palette{
	Background:       rgb(0xff, 0xff, 0xff),
	Text:             rgb(0x6b, 0x4e, 0x5f),
	Title:            rgb(0x4a, 0x2c, 0x3d),
	Border:           rgb(0xf5, 0xe6, 0xf0),
	TabBarBackground: rgb(0xf5, 0xe6, 0xf0),
	TabBarActive:     rgb(0x4a, 0x2c, 0x3d),
	InputBorder:      rgb(0x4a, 0x2c, 0x3d),
	ButtonText:       rgb(0xff, 0xff, 0xff),
	PickerText:       rgb(0x6b, 0x4e, 0x5f),
	PickerBackground: rgb(0xff, 0xff, 0xff),
	DatePickerText:   rgb(0x4a, 0x2c, 0x3d),
	ModalBackground:  rgb(0xff, 0xff, 0xff),
	Label:            rgb(0x4a, 0x2c, 0x3d),
}

// Dark keeps the plum accents on a near-black background.
var Dark = Palette{
	Background:       rgb(0x1a, 0x1a, 0x1a),
	Text:             rgb(0xd9, 0xc2, 0xd0),
	Title:            rgb(0xe6, 0xb8, 0xcc),
	Border:           rgb(0x3d, 0x2c, 0x35),
	TabBarBackground: rgb(0x3d, 0x2c, 0x35),
	TabBarActive:     rgb(0xe6, 0xb8, 0xcc),
	InputBorder:      rgb(0xe6, 0xb8, 0xcc),
	ButtonText:       rgb(0x1a, 0x1a, 0x1a),
	PickerText:       rgb(0xff, 0xff, 0xff),
	PickerBackground: rgb(0x33, 0x33, 0x33),
	DatePickerText:   rgb(0xe6, 0xb8, 0xcc),
	ModalBackground:  rgb(0x1a, 0x1a, 0x1a),
	Label:            rgb(0xe6, 0xb8, 0xcc),
}
