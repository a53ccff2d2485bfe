// Package ebiten draws the canvas and the control dock with Ebiten.
package ebiten

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/Jabolol/gameboy/theme"
	"github.com/Jabolol/gameboy/ui"
)

// Dock layout in unscaled pixels.
const (
	lineHeight = 16
	dockLines  = 3
	dockMargin = 8
	DockHeight = dockLines*lineHeight + 2*dockMargin
)

// Palette colours for the fixed themes.
var (
	lightBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	lightForeground = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	darkBackground  = color.RGBA{0x11, 0x18, 0x27, 0xff}
	darkForeground  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

// Palette returns the page background and text colours. A detected colour
// replaces the background, the text colour still follows dark.
func Palette(dark bool, detected theme.Detected) (background, foreground color.RGBA) {
	background, foreground = lightBackground, lightForeground
	if dark {
		background, foreground = darkBackground, darkForeground
	}
	if r, g, b, ok := detected.RGB(); ok {
		background = color.RGBA{r, g, b, 0xff}
	}
	return background, foreground
}

// ContentWidth is the canvas width drawn on screen, the tile viewer is cut
// off unless tiles is set.
func ContentWidth(tiles bool) int {
	if tiles {
		return ui.CanvasWidth
	}
	return ui.GameWidth
}

// ScreenSize returns the window size needed for the canvas at scale plus
// the dock.
func ScreenSize(scale int, tiles bool) (width, height int) {
	return ContentWidth(tiles) * scale, ui.CanvasHeight*scale + DockHeight
}

// Renderer owns the offscreen image the canvas is uploaded to.
type Renderer struct {
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
	face      text.Face
}

func NewRenderer() *Renderer {
	return &Renderer{
		face: text.NewGoXFace(basicfont.Face7x13),
	}
}

// DrawCanvas uploads rows of RGBA pixels and draws them at an integer
// scale, horizontally centred at the top of screen. Only the game area is
// drawn unless tiles is set.
func (r *Renderer) DrawCanvas(screen *ebiten.Image, pixels []byte, stride, rows, scale int, tiles bool) {
	if rows == 0 || stride == 0 || scale <= 0 {
		return
	}

	requiredLen := stride * rows
	if len(pixels) < requiredLen {
		return
	}

	pixelWidth := stride / 4
	if r.offscreen == nil || r.offscreen.Bounds().Dx() != pixelWidth || r.offscreen.Bounds().Dy() != rows {
		r.offscreen = ebiten.NewImage(pixelWidth, rows)
	}
	r.offscreen.WritePixels(pixels[:requiredLen])

	width := min(ContentWidth(tiles), pixelWidth)
	src := r.offscreen.SubImage(image.Rect(0, 0, width, rows)).(*ebiten.Image)

	offsetX := (screen.Bounds().Dx() - width*scale) / 2

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(float64(scale), float64(scale))
	r.drawOpts.GeoM.Translate(float64(max(offsetX, 0)), 0)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(src, &r.drawOpts)
}

// DrawLines draws text lines starting at (x, y).
func (r *Renderer) DrawLines(screen *ebiten.Image, lines []string, x, y int, fg color.Color) {
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x), float64(y+i*lineHeight))
		op.ColorScale.ScaleWithColor(fg)
		text.Draw(screen, line, r.face, op)
	}
}

// DrawDock draws the dock lines along the bottom of screen.
func (r *Renderer) DrawDock(screen *ebiten.Image, lines []string, fg color.Color) {
	y := screen.Bounds().Dy() - DockHeight + dockMargin
	r.DrawLines(screen, lines, dockMargin, y, fg)
}
