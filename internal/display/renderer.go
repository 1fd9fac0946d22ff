package display

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph cell of the built-in face. The grid shape is whatever number of
// cells fits the matrix.
const (
	CellWidth  = 7 // basicfont.Face7x13 advance
	CellHeight = 13

	// xIndent shifts text right a little; the narrow minute sign leaves
	// room at the right edge. yIndent pulls rows up because the face has
	// no ink in its top pixels.
	xIndent = 1
	yIndent = -2
)

// GridShape returns how many text lines and characters fit a matrix of the
// given pixel dimensions.
func GridShape(cols, rows int) (lines, chars int) {
	return rows / CellHeight, cols / CellWidth
}

// Renderer rasterizes text rows into frames sized for one matrix.
type Renderer struct {
	cols int
	rows int
	face font.Face
}

// NewRenderer creates a renderer for a matrix of cols×rows pixels.
func NewRenderer(cols, rows int) *Renderer {
	return &Renderer{
		cols: cols,
		rows: rows,
		face: basicfont.Face7x13,
	}
}

// Render draws the rows top to bottom in the given color on black and
// returns the frame. A fresh image is returned every call; frames are
// replaced, never mutated.
func (r *Renderer) Render(rows []string, c color.RGBA) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, r.cols, r.rows))
	draw.Draw(frame, frame.Bounds(), image.Black, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  frame,
		Src:  image.NewUniform(c),
		Face: r.face,
	}

	for i, row := range rows {
		drawer.Dot = fixed.P(xIndent, (i+1)*CellHeight+yIndent)
		drawer.DrawString(row)
	}

	return frame
}
