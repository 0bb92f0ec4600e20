package raster

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/outline"
)

// ScaleShift maps the valid samples of a sequence into roi space:
// working coordinates times scale, minus the roi origin. Skip markers
// carry indices, not coordinates, and stay untouched.
func ScaleShift(seq *outline.Sequence, scale float32, px, py int) {
	if seq == nil {
		return
	}
	for i := seq.Start; i < len(seq.Samples); i++ {
		s := seq.Samples[i]
		if s.Skip() {
			continue
		}
		seq.Samples[i] = outline.Valid(s.X*scale-float32(px), s.Y*scale-float32(py))
	}
}

// FalloffStroke draws the brush feather: one ramp per aligned
// (centerline, border) sample pair, scaled by the per-sample density and
// held solid over the hardness fraction of its length. Unlike the closed
// shapes there is no interior fill; the up-and-down traversal of the
// centerline makes the ramps cover the whole stroke width. Border skip
// markers freeze the border point onto the last valid sample, same as
// the closed-shape falloff.
func FalloffStroke(pts, border *outline.Sequence, buf []float32, width, height, posx, posy int) {
	count := min(len(border.Samples), len(pts.Samples))
	next := 0
	for i := pts.Start; i < count; i++ {
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
		strokeSegment(buf, p0, p1, posx, posy, width, height,
			pts.Payload[i*2], pts.Payload[i*2+1])
	}
}

// strokeSegment writes one hardness-shaped ramp from the centerline
// point p0 to the border point p1, max-combined into buf.
func strokeSegment(buf []float32, p0, p1 [2]int, posx, posy, width, height int, hardness, density float32) {
	l := int(math32.Sqrt(float32((p1[0]-p0[0])*(p1[0]-p0[0])+(p1[1]-p0[1])*(p1[1]-p0[1])))) + 1
	solid := int(float32(l) * hardness)
	soft := l - solid

	lx := float32(p1[0] - p0[0])
	ly := float32(p1[1] - p0[1])

	for i := 0; i < l; i++ {
		x := int(float32(i)*lx/float32(l)) + p0[0] - posx
		y := int(float32(i)*ly/float32(l)) + p0[1] - posy
		op := density
		if i > solid {
			op = density * (1 - float32(i-solid)/float32(soft))
		}
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

// FalloffStrokeROI is the roi variant: samples are already in roi space
// and every write is clipped. Segments lying fully outside the buffer
// are rejected before any stepping.
func FalloffStrokeROI(pts, border *outline.Sequence, buf []float32, width, height int) {
	count := min(len(border.Samples), len(pts.Samples))
	next := 0
	for i := pts.Start; i < count; i++ {
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
		if max(p0[0], p1[0]) < 0 || min(p0[0], p1[0]) >= width ||
			max(p0[1], p1[1]) < 0 || min(p0[1], p1[1]) >= height {
			continue
		}
		strokeSegmentROI(buf, p0, p1, width, height,
			pts.Payload[i*2], pts.Payload[i*2+1])
	}
}

// strokeSegmentROI steps in float increments so long clipped segments
// stay straight, with neighbor writes following the step direction.
func strokeSegmentROI(buf []float32, p0, p1 [2]int, width, height int, hardness, density float32) {
	l := int(math32.Sqrt(float32((p1[0]-p0[0])*(p1[0]-p0[0])+(p1[1]-p0[1])*(p1[1]-p0[1])))) + 1
	solid := int(hardness * float32(l))

	lx := float32(p1[0]-p0[0]) / float32(l)
	ly := float32(p1[1]-p0[1]) / float32(l)

	dx := 1
	if lx <= 0 {
		dx = -1
	}
	dy := 1
	if ly <= 0 {
		dy = -1
	}
	dpy := dy * width

	fx := float32(p0[0])
	fy := float32(p0[1])
	op := density
	dop := density / float32(l-solid)

	for i := 0; i < l; i++ {
		x := int(fx)
		y := int(fy)
		fx += lx
		fy += ly
		if i > solid {
			op -= dop
		}

		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		idx := y*width + x
		buf[idx] = math32.Max(buf[idx], op)
		if x+dx >= 0 && x+dx < width {
			buf[idx+dx] = math32.Max(buf[idx+dx], op)
		}
		if y+dy >= 0 && y+dy < height {
			buf[idx+dpy] = math32.Max(buf[idx+dpy], op)
		}
	}
}
