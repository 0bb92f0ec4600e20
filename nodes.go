package masks

// Kind identifies a shape kind. Kinds are bitflags so a form can combine
// a base kind with the Clone/NonClone modifiers, and so filters over form
// lists stay cheap.
type Kind uint32

const (
	KindCircle Kind = 1 << iota
	KindPolygon
	KindGroup
	KindClone
	KindGradient
	KindEllipse
	KindBrush
	KindNonClone
)

// baseKinds are the kinds that carry geometry of their own.
const baseKinds = KindCircle | KindPolygon | KindGradient | KindEllipse | KindBrush | KindGroup

// NodeState records whether a path node's Bezier handles are derived
// automatically (smooth node) or pinned by the user (cusp node).
type NodeState int32

const (
	// NodeStateNormal marks a smooth node: handles are recomputed from
	// the neighboring nodes whenever geometry is evaluated.
	NodeStateNormal NodeState = 1

	// NodeStateUser marks a cusp node: handles stay exactly where the
	// user put them, producing a sharp corner.
	NodeStateUser NodeState = 2
)

// EllipseFlags selects how the ellipse feather follows the shape.
type EllipseFlags int32

const (
	// EllipseEquidistant keeps the feather a constant distance from the
	// ellipse boundary.
	EllipseEquidistant EllipseFlags = iota

	// EllipseProportional scales the feather with each radius.
	EllipseProportional
)

// GradientState selects the falloff profile of a gradient shape.
type GradientState int32

const (
	GradientLinear GradientState = iota
	GradientSigmoidal
)

// GroupState is the per-member bitset controlling how a member shape
// participates in its group's composite mask.
type GroupState int32

const (
	GroupStateNone         GroupState = 0
	GroupStateShow         GroupState = 1 << 0
	GroupStateUse          GroupState = 1 << 1
	GroupStateInverse      GroupState = 1 << 2
	GroupStateUnion        GroupState = 1 << 3
	GroupStateIntersection GroupState = 1 << 4
	GroupStateDifference   GroupState = 1 << 5
	GroupStateExclusion    GroupState = 1 << 6
)

// Node is one control record of a shape. The concrete type must match
// the form's kind; Form.AppendNode enforces this.
type Node interface {
	nodeKind() Kind
}

// CircleNode is the single control record of a circle shape.
// Center is normalized to [0,1] over the image; Radius and Border are
// fractions of the smaller image dimension.
type CircleNode struct {
	Center [2]float32
	Radius float32
	Border float32
}

// EllipseNode is the single control record of an ellipse shape.
// Radius holds the two semi-axes, Rotation is in degrees
// counterclockwise, Border is the feather width and Flags selects
// equidistant or proportional feathering.
type EllipseNode struct {
	Center   [2]float32
	Radius   [2]float32
	Rotation float32
	Border   float32
	Flags    EllipseFlags
}

// PolygonNode is one vertex of a closed path shape. Ctrl1/Ctrl2 are the
// incoming and outgoing Bezier handles; a handle value of -1 on a smooth
// node means "derive from neighbors". Border holds the feather width on
// each side of the node along the path.
type PolygonNode struct {
	Corner [2]float32
	Ctrl1  [2]float32
	Ctrl2  [2]float32
	Border [2]float32
	State  NodeState
}

// BrushNode is one vertex of a brush stroke. On top of the path fields it
// carries the local stroke Density (peak opacity) and Hardness (fraction
// of the stroke width that stays solid before the feather ramp).
type BrushNode struct {
	Corner   [2]float32
	Ctrl1    [2]float32
	Ctrl2    [2]float32
	Border   [2]float32
	Density  float32
	Hardness float32
	State    NodeState
}

// GradientNode is the single control record of a gradient shape. Anchor
// is the rotation pivot, Rotation is in degrees, Compression is the
// extent of the fade as a fraction of the image diagonal, Curvature bends
// the iso-lines into parabolas and State selects the falloff profile.
type GradientNode struct {
	Anchor      [2]float32
	Rotation    float32
	Compression float32
	Steepness   float32
	Curvature   float32
	State       GradientState
}

// GroupNode references a member shape of a group form together with its
// compositing state and opacity.
type GroupNode struct {
	FormID   int32
	ParentID int32
	State    GroupState
	Opacity  float32
}

func (CircleNode) nodeKind() Kind   { return KindCircle }
func (EllipseNode) nodeKind() Kind  { return KindEllipse }
func (PolygonNode) nodeKind() Kind  { return KindPolygon }
func (BrushNode) nodeKind() Kind    { return KindBrush }
func (GradientNode) nodeKind() Kind { return KindGradient }
func (GroupNode) nodeKind() Kind    { return KindGroup }
