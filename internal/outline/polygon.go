package outline

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/curve"
)

var nan = math32.NaN()

// tess accumulates tessellated points in working space. Boundary and
// border slices grow in lockstep so the sequences stay index-aligned.
type tess struct {
	tr         Transform
	threshold  int
	withBorder bool

	pts    []float32
	border []float32
}

// eval computes the boundary and border point of seg at t and maps them
// through the distortion transform in one batch. A degenerate tangent
// leaves the border pair NaN for later fixup.
func (t *tess) eval(seg curve.Segment, tt float32, c, b []float32) error {
	cx, cy, bx, by, ok := seg.EvalBorder(tt)
	var buf [4]float32
	buf[0], buf[1] = cx, cy
	n := 2
	if t.withBorder && ok {
		buf[2], buf[3] = bx, by
		n = 4
	}
	if t.tr != nil {
		if err := t.tr(buf[:n]); err != nil {
			return err
		}
	}
	c[0], c[1] = buf[0], buf[1]
	if t.withBorder {
		if ok {
			b[0], b[1] = buf[2], buf[3]
		} else {
			b[0], b[1] = nan, nan
		}
	}
	return nil
}

// near reports whether two mapped samples land within the pixel
// threshold of each other. NaN samples never count as near so degenerate
// border stretches keep subdividing down to the parameter floor.
func (t *tess) near(a, b []float32) bool {
	if math32.IsNaN(a[0]) || math32.IsNaN(b[0]) {
		return false
	}
	dx := int(a[0]) - int(b[0])
	if dx < 0 {
		dx = -dx
	}
	dy := int(a[1]) - int(b[1])
	if dy < 0 {
		dy = -dy
	}
	return dx < t.threshold && dy < t.threshold
}

// recurs subdivides [tmin,tmax] until consecutive samples of both the
// boundary and the requested border are within the pixel threshold,
// reusing endpoint evaluations across the two halves. cmin/cmax and
// bmin/bmax hold already-mapped samples, NaN when not yet evaluated;
// rc/rb receive the last emitted boundary and border sample.
func (t *tess) recurs(seg curve.Segment, tmin, tmax float64, cmin, cmax, bmin, bmax, rc, rb []float32) error {
	if math32.IsNaN(cmin[0]) {
		if err := t.eval(seg, float32(tmin), cmin, bmin); err != nil {
			return err
		}
	}
	if math32.IsNaN(cmax[0]) {
		if err := t.eval(seg, float32(tmax), cmax, bmax); err != nil {
			return err
		}
	}

	if tmax-tmin < 0.0001 ||
		(t.near(cmin, cmax) && (!t.withBorder || t.near(bmin, bmax))) {
		t.pts = append(t.pts, cmax[0], cmax[1])
		rc[0], rc[1] = cmax[0], cmax[1]
		if t.withBorder {
			t.border = append(t.border, bmax[0], bmax[1])
			rb[0], rb[1] = bmax[0], bmax[1]
		}
		return nil
	}

	tx := (tmin + tmax) / 2
	c := [2]float32{nan, nan}
	b := [2]float32{nan, nan}
	var rc2, rb2 [2]float32
	if err := t.recurs(seg, tmin, tx, cmin, c[:], bmin, b[:], rc2[:], rb2[:]); err != nil {
		return err
	}
	return t.recurs(seg, tx, tmax, rc2[:], cmax, rb2[:], bmax, rc, rb)
}

// borderGapArc patches a gap between two border samples with a circular
// arc centered on the shared boundary vertex, the radius blending from
// one local feather width to the other. The boundary sequence receives
// the center again for every inserted border point to keep the two
// sequences aligned.
func (t *tess) borderGapArc(cmax, bmin, bmax []float32, clockwise bool) {
	a1 := float64(math32.Atan2(bmin[1]-cmax[1], bmin[0]-cmax[0]))
	a2 := float64(math32.Atan2(bmax[1]-cmax[1], bmax[0]-cmax[0]))
	if a1 == a2 {
		return
	}

	// turn in the direction the border actually travels
	if a2 < a1 && clockwise {
		a2 += 2 * float64(math32.Pi)
	}
	if a2 > a1 && !clockwise {
		a1 += 2 * float64(math32.Pi)
	}

	r1 := math32.Hypot(bmin[1]-cmax[1], bmin[0]-cmax[0])
	r2 := math32.Hypot(bmax[1]-cmax[1], bmax[0]-cmax[0])

	var l int
	if a2 > a1 {
		l = int((a2 - a1) * float64(math32.Max(r1, r2)))
	} else {
		l = int((a1 - a2) * float64(math32.Max(r1, r2)))
	}
	if l < 2 {
		return
	}

	incra := float32(a2-a1) / float32(l)
	incrr := (r2 - r1) / float32(l)
	rr := r1 + incrr
	aa := float32(a1) + incra
	for i := 1; i < l; i++ {
		t.pts = append(t.pts, cmax[0], cmax[1])
		if t.withBorder {
			sin, cos := math32.Sincos(aa)
			t.border = append(t.border, cmax[0]+rr*cos, cmax[1]+rr*sin)
		}
		rr += incrr
		aa += incra
	}
}

// Polygon tessellates a closed path into an index-aligned boundary and
// border sequence. nodes must already be in working-space pixels; their
// smooth handles are derived in place. pixelThreshold is the sample
// acceptance distance (typically 2 scaled by the display density).
// Border feathering and self-intersection resolution only run when
// withBorder is set.
func Polygon(nodes []curve.PathNode, pixelThreshold int, tr Transform, withBorder bool) (*Sequence, *Sequence, error) {
	nb := len(nodes)
	if nb == 0 {
		return &Sequence{}, nil, nil
	}
	if pixelThreshold < 1 {
		pixelThreshold = 1
	}

	curve.InitCtrlPoints(nodes)

	cw := float32(-1)
	clockwise := curve.IsClockwise(nodes)
	if clockwise {
		cw = 1
	}

	// control header: one mapped (ctrl1, corner, ctrl2) triplet per node
	hdr := make([]float32, 0, nb*6)
	for _, n := range nodes {
		hdr = append(hdr, n.Ctrl1[0], n.Ctrl1[1], n.Corner[0], n.Corner[1], n.Ctrl2[0], n.Ctrl2[1])
	}
	if tr != nil {
		if err := tr(hdr); err != nil {
			return nil, nil, err
		}
	}

	t := &tess{
		tr:         tr,
		threshold:  pixelThreshold,
		withBorder: withBorder,
		pts:        append(make([]float32, 0, nb*6+4096), hdr...),
	}
	if withBorder {
		t.border = make([]float32, nb*6, nb*6+4096)
	}

	runs := make([]Run, nb)

	for k := range nodes {
		pb := len(t.border) / 2
		runs[k].First = pb
		p1 := nodes[k]
		p2 := nodes[(k+1)%nb]
		p3 := nodes[(k+2)%nb]

		seg := curve.Segment{
			P1: p1.Corner, C1: p1.Ctrl2,
			C2: p2.Ctrl1, P2: p2.Corner,
			R1: cw * p1.Border[1], R2: cw * p2.Border[0],
		}
		// the following segment, used only to spot a border gap at the
		// shared node
		seg2 := curve.Segment{
			P1: p2.Corner, C1: p2.Ctrl2,
			C2: p3.Ctrl1, P2: p3.Corner,
			R1: cw * p2.Border[1], R2: cw * p3.Border[0],
		}

		var rc, rb [2]float32
		cmin := [2]float32{nan, nan}
		cmax := [2]float32{nan, nan}
		bmin := [2]float32{nan, nan}
		bmax := [2]float32{nan, nan}
		if err := t.recurs(seg, 0, 1, cmin[:], cmax[:], bmin[:], bmax[:], rc[:], rb[:]); err != nil {
			return nil, nil, err
		}

		t.pts = append(t.pts, rc[0], rc[1])
		runs[k].End = len(t.border) / 2

		if withBorder {
			if math32.IsNaN(rb[0]) {
				n := len(t.border)
				if math32.IsNaN(t.border[n-2]) && n >= nb*6+4 {
					t.border[n-2] = t.border[n-4]
					t.border[n-1] = t.border[n-3]
				}
				rb[0] = t.border[n-2]
				rb[1] = t.border[n-1]
			}
			t.border = append(t.border, rb[0], rb[1])

			// header entry mirrors the first border point of the run
			t.border[k*6] = t.border[pb*2]
			t.border[k*6+1] = t.border[pb*2+1]
		}

		if withBorder && nb >= 3 {
			// probe the next segment just after its start; t=0 exactly can
			// miss the degenerate-tangent case on sharp corners
			cnext := [2]float32{nan, nan}
			bnext := [2]float32{nan, nan}
			if err := t.eval(seg2, 0.00001, cnext[:], bnext[:]); err != nil {
				return nil, nil, err
			}
			if !math32.IsNaN(bnext[0]) &&
				(bnext[0]-rb[0] > 1 || bnext[0]-rb[0] < -1 || bnext[1]-rb[1] > 1 || bnext[1]-rb[1] < -1) {
				t.borderGapArc(rc[:], rb[:], bnext[:], clockwise)
			}
		}
	}

	if withBorder {
		fixupNaNBorder(t.border, nb*6)
	}

	var inter [][2]int
	if withBorder {
		inter = findSelfIntersections(t.border, nb)
	}

	pts := toSequence(t.pts, nb*3, runs)
	var border *Sequence
	if withBorder {
		border = toSequence(t.border, nb*3, runs)
		applySkips(border, inter)
	}
	return pts, border, nil
}

// fixupNaNBorder replaces degenerate border samples with the nearest
// preceding valid one, wrapping to the buffer end for a leading run of
// NaNs. start is the float offset of the first real sample.
func fixupNaNBorder(border []float32, start int) {
	n := len(border) / 2
	for i := start / 2; i < n; i++ {
		if !math32.IsNaN(border[i*2]) && !math32.IsNaN(border[i*2+1]) {
			continue
		}
		prev := i - 1
		for prev >= start/2 && (math32.IsNaN(border[prev*2]) || math32.IsNaN(border[prev*2+1])) {
			prev--
		}
		if prev < start/2 {
			prev = n - 1
			for prev >= start/2 && (math32.IsNaN(border[prev*2]) || math32.IsNaN(border[prev*2+1])) {
				prev--
			}
		}
		if prev >= start/2 {
			border[i*2] = border[prev*2]
			border[i*2+1] = border[prev*2+1]
		}
	}
}

// toSequence converts a flat float buffer into a Sequence of valid
// samples.
func toSequence(buf []float32, start int, runs []Run) *Sequence {
	samples := make([]Sample, len(buf)/2)
	for i := range samples {
		samples[i] = Valid(buf[i*2], buf[i*2+1])
	}
	return &Sequence{Samples: samples, Start: start, Runs: runs}
}

// applySkips rewrites self-intersection ranges as skip markers. A range
// that wraps past the sequence end marks the tail sample and parks the
// resume index on the start sample.
func applySkips(seq *Sequence, inter [][2]int) {
	start := seq.Start
	for _, r := range inter {
		v, w := r[0], r[1]
		if v <= w {
			seq.Samples[v] = SkipTo(w)
			continue
		}
		if w > start {
			resume := w
			if s := seq.Samples[start]; s.Skip() && s.Resume() > resume {
				resume = s.Resume()
			}
			seq.Samples[start] = SkipTo(resume)
		}
		seq.Samples[v] = WrapSkip()
	}
}
