package viz

import (
	"image"
	"image/color"
	"math"
	"strings"
)

const brailleBlank = 0x2800

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	return c
}

// SetPixel sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	mask := ^rune(pixelMap[subY][subX])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < brailleBlank {
		c.Grid[row][col] = brailleBlank
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// PixelWidth and PixelHeight are the canvas size in sub-pixels.
func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Viewport maps world coordinates onto a canvas, y pointing up.
type Viewport struct {
	MinX, MaxX, MinY, MaxY float64
}

// SquareViewport centres a square of half-width r on the origin.
func SquareViewport(r float64) Viewport {
	if r <= 0 {
		r = 1
	}
	return Viewport{MinX: -r, MaxX: r, MinY: -r, MaxY: r}
}

// FitViewport bounds xs/ys with a 5% margin.
func FitViewport(xs, ys []float64) Viewport {
	v := Viewport{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		v.MinX, v.MaxX = math.Min(v.MinX, xs[i]), math.Max(v.MaxX, xs[i])
		v.MinY, v.MaxY = math.Min(v.MinY, ys[i]), math.Max(v.MaxY, ys[i])
	}
	if v.MinX > v.MaxX {
		return SquareViewport(1)
	}
	padX := math.Max((v.MaxX-v.MinX)*0.05, 1e-9)
	padY := math.Max((v.MaxY-v.MinY)*0.05, 1e-9)
	return Viewport{MinX: v.MinX - padX, MaxX: v.MaxX + padX, MinY: v.MinY - padY, MaxY: v.MaxY + padY}
}

// Map converts world (x, y) to sub-pixel coordinates on c.
func (v Viewport) Map(c *Canvas, x, y float64) (int, int) {
	px := (x - v.MinX) / (v.MaxX - v.MinX) * float64(c.PixelWidth()-1)
	py := (v.MaxY - y) / (v.MaxY - v.MinY) * float64(c.PixelHeight()-1)
	return int(math.Round(px)), int(math.Round(py))
}

// Plot sets the pixel nearest to world point (x, y).
func (c *Canvas) Plot(v Viewport, x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	c.Set(v.Map(c, x, y))
}

// Line draws a world-space segment.
func (c *Canvas) Line(v Viewport, x0, y0, x1, y1 float64) {
	if !finite(x0) || !finite(y0) || !finite(x1) || !finite(y1) {
		return
	}
	ax, ay := v.Map(c, x0, y0)
	bx, by := v.Map(c, x1, y1)
	c.DrawLine(ax, ay, bx, by)
}

// Dot draws a 3x3 blob centred on a world point.
func (c *Canvas) Dot(v Viewport, x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	px, py := v.Map(c, x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(px+dx, py+dy)
		}
	}
}

// Image rasterises the canvas with each character cell cellW×cellH pixels.
func (c *Canvas) Image(cellW, cellH int, fg, bg color.Color) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{bg, fg})
	dotW, dotH := cellW/2, cellH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - brailleBlank)
			if pattern <= 0 {
				continue
			}
			baseX, baseY := col*cellW, row*cellH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	return img
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
