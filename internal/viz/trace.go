package viz

import "strings"

// Braille cells pack a 2x4 sub-pixel grid per character, so a modest
// terminal region resolves an orbit track cleanly. Dot numbering:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var brailleDots = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// OrbitTrace accumulates in-plane positions of a body relative to its
// primary and renders them as a Braille scatter, auto-scaled to the
// excursion seen so far. Old points are kept: the trace shows apsidal
// precession as the track fattens.
type OrbitTrace struct {
	xs, ys []float64
	limit  int
}

func NewOrbitTrace(limit int) *OrbitTrace {
	return &OrbitTrace{limit: limit}
}

func (tr *OrbitTrace) Add(x, y float64) {
	tr.xs = append(tr.xs, x)
	tr.ys = append(tr.ys, y)
	if len(tr.xs) > tr.limit {
		tr.xs = tr.xs[1:]
		tr.ys = tr.ys[1:]
	}
}

func (tr *OrbitTrace) Len() int { return len(tr.xs) }

// Render draws the accumulated track onto a width x height character
// grid. The scale is square: one unit of x spans as many sub-pixels as
// one unit of y, so circles look like circles.
func (tr *OrbitTrace) Render(width, height int) string {
	if len(tr.xs) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	maxR := 0.0
	for i := range tr.xs {
		if r := absFloat(tr.xs[i]); r > maxR {
			maxR = r
		}
		if r := absFloat(tr.ys[i]); r > maxR {
			maxR = r
		}
	}
	if maxR == 0 {
		maxR = 1
	}

	subW, subH := width*2, height*4
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = 0x2800
		}
	}

	set := func(px, py int) {
		if px < 0 || py < 0 {
			return
		}
		col, row := px/2, py/4
		if col >= width || row >= height {
			return
		}
		grid[row][col] |= brailleDots[py%4][px%2]
	}

	// Square scaling around the primary at the grid center.
	span := subW
	if subH < span {
		span = subH
	}
	scale := float64(span-1) / (2 * maxR)
	for i := range tr.xs {
		px := subW/2 + int(tr.xs[i]*scale)
		py := subH/2 - int(tr.ys[i]*scale)
		set(px, py)
	}
	// Mark the primary.
	set(subW/2, subH/2)

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
