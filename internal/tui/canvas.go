package tui

import (
	"math"
	"strings"

	"github.com/san-kum/sway/internal/physics"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) at(x, y int) rune {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		return c.cells[y][x]
	}
	return 0
}

func (c *canvas) line(x1, y1, x2, y2 int, r rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvas) rows() []string {
	out := make([]string, len(c.cells))
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// drawRig lays the sub-rigs out side by side, each hanging from an anchor
// on the top row. Particle 0 is drawn relative to the anchor so head
// translation shows as a shifted root.
func (c *canvas) drawRig(rig *physics.Rig) {
	if rig == nil || rig.SubRigCount == 0 {
		return
	}

	slot := c.w / rig.SubRigCount
	for i := 0; i < rig.SubRigCount; i++ {
		chain := rig.Chain(i)
		if len(chain) == 0 {
			continue
		}

		length := 0.0
		for _, p := range chain[1:] {
			length += p.Radius
		}
		scaleY := 1.0
		if length > 0 {
			scaleY = float64(c.h-2) / length
		}
		// terminal cells are about twice as tall as they are wide
		scaleX := scaleY * 2

		ax, ay := i*slot+slot/2, 0
		project := func(p physics.Particle) (int, int) {
			return ax + int(math.Round(p.Position.X*scaleX)), ay + int(math.Round(p.Position.Y*scaleY))
		}

		px, py := project(chain[0])
		for _, p := range chain[1:] {
			x, y := project(p)
			c.line(px, py, x, y, '·')
			c.set(x, y, 'o')
			px, py = x, y
		}
		c.set(ax, ay, '+')
		c.set(px, py, 'O')
	}
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

// gauge places value inside [lo, hi] on a bar of the given width. The
// marker sits on the center cell when the range is empty.
func gauge(value, lo, hi float64, width int) (left, right int) {
	if width <= 1 {
		return 0, 0
	}
	pos := (width - 1) / 2
	if hi > lo {
		ratio := (value - lo) / (hi - lo)
		ratio = math.Max(0, math.Min(1, ratio))
		pos = int(math.Round(ratio * float64(width-1)))
	}
	return pos, width - 1 - pos
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
