package raster

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/outline"
	"github.com/gopix/masks/internal/parallel"
)

// InROI reports whether any sample of the sequence lands clearly inside
// a roi.Width x roi.Height buffer, with a one pixel guard band.
func InROI(seq *outline.Sequence, width, height int) bool {
	for i := seq.Start; i < len(seq.Samples); i++ {
		s := seq.Samples[i]
		if s.Skip() {
			r := s.Resume()
			if r < 0 {
				break
			}
			i = r - 1
			continue
		}
		xx := int(s.X)
		yy := int(s.Y)
		if xx > 1 && yy > 1 && xx < width-2 && yy < height-2 {
			return true
		}
	}
	return false
}

// Encircles reports whether the boundary winds around the center of the
// buffer: an odd number of crossings of the center scanline to the right
// of the center means the ROI lies inside the shape even though no
// boundary point does. Consecutive samples on the same scanline count
// once.
func Encircles(pts *outline.Sequence, width, height int) bool {
	nb := 0
	last := -9999
	x := width / 2
	y := height / 2
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
		yy := int(s.Y)
		if yy != last && yy == y {
			if s.X > float32(x) {
				nb++
			}
		}
		last = yy
	}
	return nb&1 == 1
}

// CropToROI clips a flat boundary polygon to the rectangle
// [xmin,xmax]x[ymin,ymax] in place. Runs of points outside one edge are
// replaced by interpolated points on that edge, one axis at a time, so
// the polygon keeps its vertex count and the edge-flag fill still works
// on it. Returns false when no point lies clearly inside, meaning the
// ROI is completely inside the polygon.
func CropToROI(poly []float32, xmin, xmax, ymin, ymax float32) bool {
	count := len(poly) / 2

	pointStart := -1
	for k := 0; k < count; k++ {
		x := poly[2*k]
		y := poly[2*k+1]
		if x >= xmin+1 && y >= ymin+1 && x <= xmax-1 && y <= ymax-1 {
			pointStart = k
			break
		}
	}
	if pointStart < 0 {
		return false
	}

	clipAxis := func(axis int, limit float32, below bool) {
		l, r := -1, -1
		for k := 0; k < count; k++ {
			kk := (k + pointStart) % count
			v := poly[2*kk+axis]
			outside := v < limit
			if !below {
				outside = v > limit
			}
			if l < 0 && outside {
				l = k
			}
			if l >= 0 && !outside {
				r = k - 1
			}
			if l >= 0 && r >= 0 {
				n := r - l + 1
				ll := (l - 1 + pointStart + count) % count
				rr := (r + 1 + pointStart) % count
				other := 1 - axis
				var delta float32
				if n > 1 {
					delta = (poly[2*rr+other] - poly[2*ll+other]) / float32(n-1)
				}
				start := poly[2*ll+other]
				for j := 0; j < n; j++ {
					nn := (j + l + pointStart) % count
					poly[2*nn+axis] = limit
					poly[2*nn+other] = start + float32(j)*delta
				}
				l, r = -1, -1
			}
		}
	}

	clipAxis(0, xmin, true)
	clipAxis(0, xmax, false)
	clipAxis(1, ymin, true)
	clipAxis(1, ymax, false)
	return true
}

// DrawBoundaryROI runs the edge-flag fill on a cropped flat polygon:
// each segment toggles the flag of the pixel nearest its crossing with
// every scanline it spans. The matching parity fill is FillRowsROI.
func DrawBoundaryROI(poly []float32, buf []float32, width, height int) {
	count := len(poly) / 2
	if count < 3 {
		return
	}
	xlast := poly[(count-1)*2]
	ylast := poly[(count-1)*2+1]

	for i := 0; i < count; i++ {
		xstart, ystart := xlast, ylast
		xend := poly[i*2]
		yend := poly[i*2+1]
		xlast, ylast = xend, yend

		if ystart > yend {
			ystart, yend = yend, ystart
			xstart, xend = xend, xstart
		}

		// horizontal segments produce an empty loop, no special case
		m := (xstart - xend) / (ystart - yend)

		for yy := int(math32.Ceil(ystart)); float32(yy) < yend; yy++ {
			xcross := xstart + m*(float32(yy)-ystart)

			xx := int(math32.Floor(xcross))
			if float32(xx)+0.5 <= xcross {
				xx++
			}
			if xx < 0 || xx >= width || yy < 0 || yy >= height {
				continue
			}
			index := yy*width + xx
			buf[index] = 1 - buf[index]
		}
	}
}

// FillRowsROI is the parity fill matching DrawBoundaryROI, clipped to
// the polygon bounding box inside the buffer.
func FillRowsROI(buf []float32, width int, xmin, xmax, ymin, ymax int, pool *parallel.Pool) {
	if ymin < 0 {
		ymin = 0
	}
	rows := ymax - ymin + 1
	if rows <= 0 {
		return
	}
	parallel.Rows(pool, rows, func(r int) {
		yy := ymin + r
		state := false
		for xx := xmin; xx <= xmax; xx++ {
			index := yy*width + xx
			v := buf[index]
			if v > 0.5 {
				state = !state
			}
			if state {
				buf[index] = 1
			}
		}
	})
}

// FalloffROI draws the feather ramps clipped to the buffer. Segments
// overlap where ramps share pixels, so they run sequentially; only the
// row-parity fills parallelize.
func FalloffROI(pts, border *outline.Sequence, buf []float32, width, height int) {
	for _, seg := range CollectFalloffSegments(pts, border) {
		falloffSegmentROI(buf, seg[0], seg[1], width, height)
	}
}

// CollectFalloffSegments pairs each boundary sample with its border
// sample, honoring skip markers and dropping consecutive duplicates.
func CollectFalloffSegments(pts, border *outline.Sequence) [][2][2]int {
	count := len(border.Samples)
	segs := make([][2][2]int, 0, count)
	last0 := [2]int{-100, -100}
	last1 := [2]int{-100, -100}
	next := 0
	for i := pts.Start; i < count && i < len(pts.Samples); i++ {
		p0 := [2]int{
			int(math32.Floor(pts.Samples[i].X + 0.5)),
			int(math32.Ceil(pts.Samples[i].Y)),
		}
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
			segs = append(segs, [2][2]int{p0, p1})
			last0 = p0
			last1 = p1
		}
	}
	return segs
}

// falloffSegmentROI is the clipped ramp writer. The neighbor writes
// follow the segment's step direction instead of always going left/up,
// because a ROI buffer cropped mid-shape can have ramps entering from
// any side.
func falloffSegmentROI(buf []float32, p0, p1 [2]int, width, height int) {
	l := int(math32.Sqrt(float32((p1[0]-p0[0])*(p1[0]-p0[0])+(p1[1]-p0[1])*(p1[1]-p0[1])))) + 1
	lx := float32(p1[0] - p0[0])
	ly := float32(p1[1] - p0[1])

	dx := 1
	if lx < 0 {
		dx = -1
	}
	dy := 1
	if ly < 0 {
		dy = -1
	}
	dpy := dy * width

	for i := 0; i < l; i++ {
		x := int(float32(i)*lx/float32(l)) + p0[0]
		y := int(float32(i)*ly/float32(l)) + p0[1]
		op := 1 - float32(i)/float32(l)
		idx := y*width + x
		if x >= 0 && x < width && y >= 0 && y < height {
			buf[idx] = math32.Max(buf[idx], op)
		}
		if x+dx >= 0 && x+dx < width && y >= 0 && y < height {
			buf[idx+dx] = math32.Max(buf[idx+dx], op)
		}
		if x >= 0 && x < width && y+dy >= 0 && y+dy < height {
			buf[idx+dpy] = math32.Max(buf[idx+dpy], op)
		}
	}
}
