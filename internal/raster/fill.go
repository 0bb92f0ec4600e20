// Package raster renders tessellated outlines into dense opacity
// buffers: exact scanline parity fill of the boundary, feather falloff
// segments toward the border, and the ROI-scoped variants used for tiled
// pipeline evaluation.
package raster

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/outline"
	"github.com/gopix/masks/internal/parallel"
)

// Bounds computes the common bounding box of a boundary sequence and its
// border, honoring skip markers in either.
func Bounds(pts, border *outline.Sequence) (xmin, xmax, ymin, ymax float32) {
	xmin, ymin = math32.MaxFloat32, math32.MaxFloat32
	xmax, ymax = -math32.MaxFloat32, -math32.MaxFloat32
	if border != nil {
		for i := border.Start; i < len(border.Samples); i++ {
			s := border.Samples[i]
			if s.Skip() {
				r := s.Resume()
				if r < 0 {
					break
				}
				i = r - 1
				continue
			}
			xmin = math32.Min(s.X, xmin)
			xmax = math32.Max(s.X, xmax)
			ymin = math32.Min(s.Y, ymin)
			ymax = math32.Max(s.Y, ymax)
		}
	}
	for i := pts.Start; i < len(pts.Samples); i++ {
		s := pts.Samples[i]
		if s.Skip() {
			r := s.Resume()
			if r < 0 {
				break
			}
			i = r - 1
			continue
		}
		xmin = math32.Min(s.X, xmin)
		xmax = math32.Max(s.X, xmax)
		ymin = math32.Min(s.Y, ymin)
		ymax = math32.Max(s.Y, ymax)
	}
	return xmin, xmax, ymin, ymax
}

// BoundingBox returns the integer buffer geometry for a full mask, with
// a two pixel margin so falloff writes never leave the buffer.
func BoundingBox(pts, border *outline.Sequence) (width, height, posx, posy int) {
	xmin, xmax, ymin, ymax := Bounds(pts, border)
	width = int(xmax-xmin) + 4
	height = int(ymax-ymin) + 4
	posx = int(xmin) - 2
	posy = int(ymin) - 2
	return width, height, posx, posy
}

// DrawBoundary writes the edge flags of the closed boundary polyline
// into buf. Points sharing the y of their predecessor are dropped, jumps
// in y are interpolated, and an extra flag is written wherever the
// y direction flips so the following parity fill cannot leak at local
// extrema. The loop runs once past the wrap point to settle the flags at
// the seam.
func DrawBoundary(pts *outline.Sequence, buf []float32, width, posx, posy int) {
	samples := pts.Samples
	nbp := len(samples)
	start := pts.Start
	if nbp-start < 3 {
		return
	}
	set := func(x, y int) {
		if idx := y*width + x; idx >= 0 && idx < len(buf) {
			buf[idx] = 1
		}
	}

	lastx := int(samples[nbp-1].X)
	lasty := int(samples[nbp-1].Y)
	lasty2 := int(samples[nbp-2].Y)

	justChangedDir := false
	for ii := start; ii < 2*nbp-start; ii++ {
		i := ii
		if ii >= nbp {
			i = (ii-start)%(nbp-start) + start
		}
		xx := int(samples[i].X)
		yy := int(samples[i].Y)

		if yy == lasty {
			continue
		}

		// interpolate y jumps so every scanline gets its flag
		if yy-lasty > 1 || yy-lasty < -1 {
			if yy < lasty {
				for j := yy + 1; j < lasty; j++ {
					nx := int(float32((j-yy)*(lastx-xx))/float32(lasty-yy)) + xx
					set(nx-posx, j-posy)
				}
				lasty2 = yy + 2
				lasty = yy + 1
			} else {
				for j := lasty + 1; j < yy; j++ {
					nx := int(float32((j-lasty)*(xx-lastx))/float32(yy-lasty)) + lastx
					set(nx-posx, j-posy)
				}
				lasty2 = yy - 2
				lasty = yy - 1
			}
		}
		// duplicate flag at a y-direction flip
		if (lasty-lasty2)*(lasty-yy) > 0 {
			set(lastx+1-posx, lasty-posy)
			justChangedDir = true
		}
		if justChangedDir && ii == i {
			// right after a flip the point can land on the flag just
			// written, which would cancel the parity
			idx := (yy-posy)*width + xx - posx
			if idx >= 0 && idx < len(buf) && buf[idx] > 0 {
				if xx-posx > 0 {
					set(xx-1-posx, yy-posy)
				} else if xx-posx < width-1 {
					set(xx+1-posx, yy-posy)
				}
			} else {
				set(xx-posx, yy-posy)
				justChangedDir = false
			}
		} else {
			set(xx-posx, yy-posy)
		}

		lasty2 = lasty
		lasty = yy
		lastx = xx
		if ii != i {
			break
		}
	}
}

// FillRows runs the scanline parity fill: a 1.0 edge flag toggles the
// interior state along each row. Rows are independent, so they run on
// the worker pool when one is provided.
func FillRows(buf []float32, width, height int, pool *parallel.Pool) {
	row := func(yy int) {
		state := false
		for xx := 0; xx < width; xx++ {
			v := buf[yy*width+xx]
			if v == 1 {
				state = !state
			}
			if state {
				buf[yy*width+xx] = 1
			}
		}
	}
	parallel.Rows(pool, height, row)
}

// Falloff draws the feather: one opacity ramp per index-aligned
// (boundary, border) sample pair, from 1.0 at the boundary down to 0 at
// the border, max-combined into buf. Skip markers freeze the border
// point so self-intersecting runs collapse onto the last valid sample.
// Consecutive identical segments are drawn once.
func Falloff(pts, border *outline.Sequence, buf []float32, width, height, posx, posy int) {
	count := len(border.Samples)
	last0 := [2]int{-100, -100}
	last1 := [2]int{-100, -100}
	next := 0
	for i := pts.Start; i < count && i < len(pts.Samples); i++ {
		p0 := [2]int{int(pts.Samples[i].X), int(pts.Samples[i].Y)}
		var s outline.Sample
		if next > 0 {
			s = border.Samples[next]
		} else {
			s = border.Samples[i]
		}
		if next == i {
			next = 0
		}
		for s.Skip() {
			if r := s.Resume(); r < 0 {
				next = i - 1
			} else {
				next = r
			}
			s = border.Samples[next]
		}
		p1 := [2]int{int(s.X), int(s.Y)}

		if last0 != p0 || last1 != p1 {
			falloffSegment(buf, p0, p1, posx, posy, width, height)
			last0 = p0
			last1 = p1
		}
	}
}

// falloffSegment writes one linear opacity ramp from p0 to p1. The
// left and upper neighbors receive the value too, closing the single
// pixel gaps integer rounding leaves between adjacent ramps.
func falloffSegment(buf []float32, p0, p1 [2]int, posx, posy, width, height int) {
	l := int(math32.Sqrt(float32((p1[0]-p0[0])*(p1[0]-p0[0])+(p1[1]-p0[1])*(p1[1]-p0[1])))) + 1
	lx := float32(p1[0] - p0[0])
	ly := float32(p1[1] - p0[1])

	for i := 0; i < l; i++ {
		x := int(float32(i)*lx/float32(l)) + p0[0] - posx
		y := int(float32(i)*ly/float32(l)) + p0[1] - posy
		op := 1 - float32(i)/float32(l)
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		idx := y*width + x
		buf[idx] = math32.Max(buf[idx], op)
		if x > 0 {
			buf[idx-1] = math32.Max(buf[idx-1], op)
		}
		if y > 0 {
			buf[idx-width] = math32.Max(buf[idx-width], op)
		}
	}
}
