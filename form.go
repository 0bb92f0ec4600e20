package masks

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Version is the current schema version of stored shapes. Forms loaded
// with an older version go through UpgradeForm before any geometry runs.
const Version = 6

var formSeq atomic.Int32

// Form is one editable mask primitive: kind flags, identity, an ordered
// node sequence and, for clone kinds, the source sampling offset.
//
// A Form is not internally synchronized. The calling layer must not
// mutate a form while a render or query on the same form is in flight.
type Form struct {
	id      int32
	name    string
	version int32
	kind    Kind
	source  Point
	nodes   []Node

	// gen increments on every structural mutation so cached outlines
	// tied to an older state can be detected and discarded.
	gen uint64

	cache outlineCache
}

// NewForm creates an empty form of the given kind with a fresh stable id
// and the current schema version.
func NewForm(kind Kind) *Form {
	return &Form{
		id:      int32(time.Now().Unix()) + formSeq.Add(1),
		version: Version,
		kind:    kind,
	}
}

// ID returns the form's stable identifier.
func (f *Form) ID() int32 { return f.id }

// SetID overrides the identifier, used when loading stored forms.
func (f *Form) SetID(id int32) { f.id = id }

// Name returns the user-visible name of the form.
func (f *Form) Name() string { return f.name }

// SetName sets the user-visible name of the form.
func (f *Form) SetName(name string) { f.name = name }

// Kind returns the form's kind flags.
func (f *Form) Kind() Kind { return f.kind }

// IsClone reports whether the form samples pixel content from a source
// offset.
func (f *Form) IsClone() bool { return f.kind&KindClone != 0 }

// SchemaVersion returns the stored schema version of the form.
func (f *Form) SchemaVersion() int32 { return f.version }

// SetSchemaVersion overrides the schema version, used when loading
// stored forms before UpgradeForm runs.
func (f *Form) SetSchemaVersion(v int32) { f.version = v }

// Source returns the clone source offset, in normalized coordinates.
func (f *Form) Source() Point { return f.source }

// SetSource sets the clone source offset.
func (f *Form) SetSource(p Point) {
	f.source = p
	f.gen++
}

// Generation returns the mutation counter. Any structural edit bumps it,
// invalidating outlines cached against an older value.
func (f *Form) Generation() uint64 { return f.gen }

// NodeCount returns the number of control records.
func (f *Form) NodeCount() int { return len(f.nodes) }

// Node returns the i-th control record.
func (f *Form) Node(i int) Node { return f.nodes[i] }

// AppendNode appends a control record. The record's concrete type must
// match the form's kind.
func (f *Form) AppendNode(n Node) error {
	return f.InsertNode(len(f.nodes), n)
}

// InsertNode inserts a control record at index i.
func (f *Form) InsertNode(i int, n Node) error {
	if f.kind&n.nodeKind() == 0 {
		return fmt.Errorf("%w: %T node on kind %#x form", ErrMalformedShape, n, uint32(f.kind))
	}
	if i < 0 || i > len(f.nodes) {
		return fmt.Errorf("%w: node index %d out of range", ErrMalformedShape, i)
	}
	f.nodes = append(f.nodes, nil)
	copy(f.nodes[i+1:], f.nodes[i:])
	f.nodes[i] = n
	f.gen++
	return nil
}

// SetNode replaces the control record at index i.
func (f *Form) SetNode(i int, n Node) error {
	if i < 0 || i >= len(f.nodes) {
		return fmt.Errorf("%w: node index %d out of range", ErrMalformedShape, i)
	}
	if f.kind&n.nodeKind() == 0 {
		return fmt.Errorf("%w: %T node on kind %#x form", ErrMalformedShape, n, uint32(f.kind))
	}
	f.nodes[i] = n
	f.gen++
	return nil
}

// RemoveNode deletes the control record at index i.
func (f *Form) RemoveNode(i int) error {
	if i < 0 || i >= len(f.nodes) {
		return fmt.Errorf("%w: node index %d out of range", ErrMalformedShape, i)
	}
	f.nodes = append(f.nodes[:i], f.nodes[i+1:]...)
	f.gen++
	return nil
}

// shape resolves the geometry implementation for the form's kind flags.
// Resolution order matters because clone and modifier bits share the
// flag space with base kinds.
func (f *Form) shape() (shapeKind, error) {
	switch {
	case f.kind&KindCircle != 0:
		return circleShape{}, nil
	case f.kind&KindEllipse != 0:
		return ellipseShape{}, nil
	case f.kind&KindBrush != 0:
		return brushShape{}, nil
	case f.kind&KindPolygon != 0:
		return polygonShape{}, nil
	case f.kind&KindGradient != 0:
		return gradientShape{}, nil
	case f.kind&KindGroup != 0:
		return groupShape{}, nil
	}
	return nil, fmt.Errorf("%w: %#x", ErrUnknownKind, uint32(f.kind))
}

// validate checks the node count against the kind minimum before any
// geometry work starts.
func (f *Form) validate(s shapeKind) error {
	if len(f.nodes) < s.minNodes() {
		return fmt.Errorf("%w: kind %#x needs at least %d nodes, has %d",
			ErrMalformedShape, uint32(f.kind), s.minNodes(), len(f.nodes))
	}
	return nil
}

// shapeKind is the fixed capability set every shape kind implements.
// Circle and ellipse use closed-form fast paths; polygon, brush and
// gradient go through the tessellation pipeline; group composites its
// members.
type shapeKind interface {
	// minNodes is the smallest node count the kind's geometry can
	// operate on.
	minNodes() int

	// nodeSize is the encoded byte size of one node record.
	nodeSize() int

	// area computes the feathered bounding box in working space.
	area(f *Form, ctx RenderContext) (Area, error)

	// mask renders the full dense mask over the feathered bounding box.
	mask(f *Form, ctx RenderContext) (*Mask, error)

	// maskROI fills buf (roi.Width*roi.Height) with the mask scoped to
	// the region of interest.
	maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error
}

// Area is a feathered bounding box in working-space pixels.
type Area struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the area covers no pixels.
func (a Area) Empty() bool { return a.Width <= 0 || a.Height <= 0 }

// Area returns the form's feathered bounding box in working space. A
// malformed form yields an empty area and no error, so one bad shape
// degrades to "contributes nothing".
func (f *Form) Area(ctx RenderContext) (Area, error) {
	s, err := f.shape()
	if err != nil {
		return Area{}, err
	}
	if err := f.validate(s); err != nil {
		return Area{}, nil
	}
	return s.area(f, ctx)
}

// SourceArea returns the bounding box of the clone source region: the
// form's own area shifted by the source offset. Fails with ErrNotClone
// on non-clone forms.
func (f *Form) SourceArea(ctx RenderContext) (Area, error) {
	if !f.IsClone() {
		return Area{}, ErrNotClone
	}
	a, err := f.Area(ctx)
	if err != nil || a.Empty() {
		return a, err
	}
	dx := int(f.source.X * float32(ctx.Width))
	dy := int(f.source.Y * float32(ctx.Height))
	a.X += dx
	a.Y += dy
	return a, nil
}

// Mask renders the form's full dense mask. The returned buffer is owned
// by the caller. A malformed form returns (nil, nil).
func (f *Form) Mask(ctx RenderContext) (*Mask, error) {
	s, err := f.shape()
	if err != nil {
		return nil, err
	}
	if err := f.validate(s); err != nil {
		return nil, nil
	}
	return s.mask(f, ctx)
}

// MaskROI fills buf with the form's mask scoped to roi. buf must hold
// roi.Width*roi.Height values; it is fully overwritten. A malformed form
// zeroes the buffer and returns nil.
func (f *Form) MaskROI(ctx RenderContext, roi ROI, buf []float32) error {
	if len(buf) < roi.Width*roi.Height {
		return fmt.Errorf("%w: roi buffer too small", ErrMalformedShape)
	}
	s, err := f.shape()
	if err != nil {
		return err
	}
	if err := f.validate(s); err != nil {
		zero(buf[:roi.Width*roi.Height])
		return nil
	}
	return s.maskROI(f, ctx, roi, buf)
}

// SourceOffsetDistance returns the working-space distance between the
// form's position and its clone source for the given context.
func (f *Form) SourceOffsetDistance(ctx RenderContext) (float32, error) {
	if !f.IsClone() {
		return 0, ErrNotClone
	}
	d := Point{
		X: f.source.X * float32(ctx.Width),
		Y: f.source.Y * float32(ctx.Height),
	}
	return d.Length(), nil
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// AttachToGroup appends member as a new group node of grp after checking
// that the attachment cannot make any group reachable from itself.
// resolve maps a form id to its form and may return nil for unknown ids.
func AttachToGroup(grp *Form, member *Form, state GroupState, opacity float32, resolve func(id int32) *Form) error {
	if grp.kind&KindGroup == 0 {
		return fmt.Errorf("%w: not a group form", ErrMalformedShape)
	}
	if reachable(member, grp.id, resolve, map[int32]bool{}) {
		return ErrCyclicGroup
	}
	return grp.AppendNode(GroupNode{
		FormID:   member.ID(),
		ParentID: grp.ID(),
		State:    state,
		Opacity:  opacity,
	})
}

// reachable walks group membership depth-first with a visited set and
// reports whether target can be reached from f.
func reachable(f *Form, target int32, resolve func(id int32) *Form, seen map[int32]bool) bool {
	if f == nil || seen[f.id] {
		return false
	}
	seen[f.id] = true
	if f.id == target {
		return true
	}
	if f.kind&KindGroup == 0 {
		return false
	}
	for _, n := range f.nodes {
		gn, ok := n.(GroupNode)
		if !ok {
			continue
		}
		if reachable(resolve(gn.FormID), target, resolve, seen) {
			return true
		}
	}
	return false
}
