package frame

// FillCircle draws a solid disc. A radius of 0 plots the center pixel.
func (b *Buffer) FillCircle(cx, cy, radius int, c RGB) {
	if radius < 0 {
		return
	}
	r2 := radius * radius
	y0, y1 := max(cy-radius, 0), min(cy+radius, b.Height-1)
	for y := y0; y <= y1; y++ {
		dy := y - cy
		for x := max(cx-radius, 0); x <= min(cx+radius, b.Width-1); x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				b.Set(x, y, c)
			}
		}
	}
}

// StrokeCircle draws a one pixel wide circle outline using the midpoint
// algorithm.
func (b *Buffer) StrokeCircle(cx, cy, radius int, c RGB) {
	if radius < 0 {
		return
	}
	if radius == 0 {
		b.Set(cx, cy, c)
		return
	}
	x, y := radius, 0
	d := 1 - radius
	for x >= y {
		b.Set(cx+x, cy+y, c)
		b.Set(cx-x, cy+y, c)
		b.Set(cx+x, cy-y, c)
		b.Set(cx-x, cy-y, c)
		b.Set(cx+y, cy+x, c)
		b.Set(cx-y, cy+x, c)
		b.Set(cx+y, cy-x, c)
		b.Set(cx-y, cy-x, c)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// Line draws a one pixel wide segment with Bresenham's algorithm. Pixels
// outside the buffer are clipped.
func (b *Buffer) Line(x0, y0, x1, y1 int, c RGB) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		b.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Point is an integer pixel coordinate
type Point struct {
	X, Y int
}

// Polyline connects consecutive points with line segments
func (b *Buffer) Polyline(pts []Point, c RGB) {
	if len(pts) == 1 {
		b.Set(pts[0].X, pts[0].Y, c)
		return
	}
	for i := 1; i < len(pts); i++ {
		b.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, c)
	}
}

// FillColumns paints the columns [x0, x1) over the full height
func (b *Buffer) FillColumns(x0, x1 int, c RGB) {
	x0, x1 = max(x0, 0), min(x1, b.Width)
	for y := 0; y < b.Height; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
