// Package outline turns the node sequences of path-based mask shapes
// into dense, index-aligned boundary and border polylines. It owns the
// adaptive subdivision of curve segments, the arc patching of border
// gaps at sharp corners, and the detection of self-intersecting border
// runs.
package outline

import "github.com/chewxy/math32"

// Transform maps a flat [x0,y0,x1,y1,...] point batch in place, like the
// distortion mapper of the surrounding pipeline. nil means identity.
type Transform func(pts []float32) error

const (
	validMark = -1
	wrapMark  = -2
)

// Sample is one entry of a tessellated sequence: either a valid
// coordinate or a skip marker telling scanners where to resume.
type Sample struct {
	X, Y   float32
	resume int32
}

// Valid returns a coordinate sample.
func Valid(x, y float32) Sample { return Sample{X: x, Y: y, resume: validMark} }

// SkipTo returns a skip marker resuming at sample index i.
func SkipTo(i int) Sample { return Sample{resume: int32(i)} }

// WrapSkip returns a skip marker resuming at the sequence start.
func WrapSkip() Sample { return Sample{resume: wrapMark} }

// Skip reports whether the sample is a skip marker.
func (s Sample) Skip() bool { return s.resume != validMark }

// Resume returns the resume index of a skip marker, or -1 when the scan
// should wrap to the sequence start.
func (s Sample) Resume() int {
	if s.resume == wrapMark {
		return -1
	}
	return int(s.resume)
}

// Run is the half-open sample index range one node contributed.
type Run struct {
	First, End int
}

// Sequence is a tessellated polyline. The first Start samples are the
// per-node control triplets (incoming handle, corner, outgoing handle);
// real samples begin at Start. Boundary and border sequences produced
// together are index-aligned throughout so skip-aware scans and falloff
// pairing work on either.
type Sequence struct {
	Samples []Sample
	Start   int
	Runs    []Run

	// Payload carries per-sample (hardness, density) pairs for brush
	// borders, nil for other shapes.
	Payload []float32
}

// Len returns the total sample count including the control header.
func (q *Sequence) Len() int { return len(q.Samples) }

// Bounds returns the bounding box over the real samples, ignoring skip
// markers. ok is false when no valid sample exists.
func (q *Sequence) Bounds() (xmin, ymin, xmax, ymax float32, ok bool) {
	xmin, ymin = math32.MaxFloat32, math32.MaxFloat32
	xmax, ymax = -math32.MaxFloat32, -math32.MaxFloat32
	for _, s := range q.Samples[q.Start:] {
		if s.Skip() {
			continue
		}
		xmin = math32.Min(xmin, s.X)
		xmax = math32.Max(xmax, s.X)
		ymin = math32.Min(ymin, s.Y)
		ymax = math32.Max(ymax, s.Y)
		ok = true
	}
	return xmin, ymin, xmax, ymax, ok
}
