package masks

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

// flipX mirrors normalized coordinates horizontally, the backtransform
// of a 180-free horizontal flip.
type flipX struct{}

func (flipX) Transform(pts []float32) error { return flipX{}.Backtransform(pts) }
func (flipX) Backtransform(pts []float32) error {
	for i := 0; i < len(pts); i += 2 {
		pts[i] = 1 - pts[i]
	}
	return nil
}

// swapXY transposes normalized coordinates, the backtransform of a 90
// degree rotation for square frames.
type swapXY struct{}

func (swapXY) Transform(pts []float32) error { return swapXY{}.Backtransform(pts) }
func (swapXY) Backtransform(pts []float32) error {
	for i := 0; i < len(pts); i += 2 {
		pts[i], pts[i+1] = pts[i+1], pts[i]
	}
	return nil
}

func legacyForm(kind Kind, version int32, nodes ...Node) *Form {
	f := NewForm(kind)
	for _, n := range nodes {
		if err := f.AppendNode(n); err != nil {
			panic(err)
		}
	}
	f.SetSchemaVersion(version)
	return f
}

func TestUpgradeDefaults(t *testing.T) {
	f := legacyForm(KindGradient, 3, GradientNode{
		Anchor:    [2]float32{0.5, 0.5},
		Curvature: 5,                 // stored garbage pre-v5
		State:     GradientSigmoidal, // stored garbage pre-v6
	})
	if err := UpgradeForm(f, MigrationEnv{}); err != nil {
		t.Fatal(err)
	}
	if f.SchemaVersion() != Version {
		t.Errorf("version = %d, want %d", f.SchemaVersion(), Version)
	}
	g := f.Node(0).(GradientNode)
	if g.Curvature != 0 {
		t.Errorf("Curvature = %v, want the straight default", g.Curvature)
	}
	if g.State != GradientLinear {
		t.Errorf("State = %v, want the linear default", g.State)
	}
}

func TestUpgradeEllipseFlagDefault(t *testing.T) {
	f := legacyForm(KindEllipse, 3, EllipseNode{
		Center: [2]float32{0.5, 0.5},
		Radius: [2]float32{0.2, 0.1},
		Flags:  EllipseProportional, // stored garbage pre-v4
	})
	if err := UpgradeForm(f, MigrationEnv{}); err != nil {
		t.Fatal(err)
	}
	if got := f.Node(0).(EllipseNode).Flags; got != EllipseEquidistant {
		t.Errorf("Flags = %v, want equidistant", got)
	}
}

func TestUpgradeCropRenormalization(t *testing.T) {
	f := legacyForm(KindCircle, 2, CircleNode{
		Center: [2]float32{0.5, 0.5},
		Radius: 0.2,
		Border: 0.1,
	})
	env := MigrationEnv{
		CropLeft: 200, CropBottom: 100,
		FullWidth: 1000, FullHeight: 800,
	}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	c := f.Node(0).(CircleNode)
	// cropped frame is 800x700: x = (0.5*800+200)/1000, y = (0.5*700+0)/800
	if math32.Abs(c.Center[0]-0.6) > 1e-6 {
		t.Errorf("Center.X = %v, want 0.6", c.Center[0])
	}
	if math32.Abs(c.Center[1]-0.4375) > 1e-6 {
		t.Errorf("Center.Y = %v, want 0.4375", c.Center[1])
	}
	// scalars rescale by min(800,700)/min(1000,800)
	if math32.Abs(c.Radius-0.2*0.875) > 1e-6 {
		t.Errorf("Radius = %v, want %v", c.Radius, 0.2*0.875)
	}
	if math32.Abs(c.Border-0.1*0.875) > 1e-6 {
		t.Errorf("Border = %v, want %v", c.Border, 0.1*0.875)
	}
}

func TestUpgradeOrientationFlip(t *testing.T) {
	f := legacyForm(KindCircle, 1, CircleNode{
		Center: [2]float32{0.3, 0.4},
		Radius: 0.1,
	})
	env := MigrationEnv{Orientation: OrientationFlipX, Flip: flipX{}}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	c := f.Node(0).(CircleNode)
	if math32.Abs(c.Center[0]-0.7) > 1e-6 || math32.Abs(c.Center[1]-0.4) > 1e-6 {
		t.Errorf("Center = %v, want (0.7,0.4)", c.Center)
	}
	if f.SchemaVersion() != Version {
		t.Errorf("version = %d, want %d", f.SchemaVersion(), Version)
	}
}

func TestUpgradeOrientationSwapsEllipseRadii(t *testing.T) {
	f := legacyForm(KindEllipse, 1, EllipseNode{
		Center: [2]float32{0.5, 0.5},
		Radius: [2]float32{0.3, 0.1},
	})
	env := MigrationEnv{Orientation: OrientationRotateCW90, Flip: swapXY{}}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	e := f.Node(0).(EllipseNode)
	if e.Radius != [2]float32{0.1, 0.3} {
		t.Errorf("Radius = %v, want the axes swapped", e.Radius)
	}
}

func TestUpgradeGradientRotation(t *testing.T) {
	f := legacyForm(KindGradient, 1, GradientNode{
		Anchor:   [2]float32{0.5, 0.5},
		Rotation: 30,
	})
	env := MigrationEnv{Orientation: OrientationRotateCW90, Flip: swapXY{}}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	if got := f.Node(0).(GradientNode).Rotation; got != 120 {
		t.Errorf("Rotation = %v, want 120 after the 90 degree unrotation", got)
	}
}

func TestUpgradePreservesUnsetHandles(t *testing.T) {
	f := legacyForm(KindPolygon, 1,
		PolygonNode{
			Corner: [2]float32{0.2, 0.3},
			Ctrl1:  [2]float32{-1, -1},
			Ctrl2:  [2]float32{0.25, 0.35},
			State:  NodeStateNormal,
		},
	)
	env := MigrationEnv{Orientation: OrientationFlipX, Flip: flipX{}}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	n := f.Node(0).(PolygonNode)
	if n.Ctrl1 != [2]float32{-1, -1} {
		t.Errorf("Ctrl1 = %v, unset handles must pass through untouched", n.Ctrl1)
	}
	if math32.Abs(n.Ctrl2[0]-0.75) > 1e-6 {
		t.Errorf("Ctrl2.X = %v, want the flipped 0.75", n.Ctrl2[0])
	}
	if math32.Abs(n.Corner[0]-0.8) > 1e-6 {
		t.Errorf("Corner.X = %v, want the flipped 0.8", n.Corner[0])
	}
}

func TestUpgradeRejectsMissingFlip(t *testing.T) {
	f := legacyForm(KindCircle, 1, CircleNode{Center: [2]float32{0.5, 0.5}})
	err := UpgradeForm(f, MigrationEnv{Orientation: OrientationRotate180})
	if !errors.Is(err, ErrMigration) {
		t.Errorf("err = %v, want ErrMigration", err)
	}
}

func TestUpgradeRejectsFutureVersion(t *testing.T) {
	f := legacyForm(KindCircle, Version+1, CircleNode{})
	if err := UpgradeForm(f, MigrationEnv{}); !errors.Is(err, ErrVersion) {
		t.Errorf("err = %v, want ErrVersion", err)
	}
}

func TestUpgradeCloneSource(t *testing.T) {
	f := legacyForm(KindCircle|KindClone, 1, CircleNode{Center: [2]float32{0.5, 0.5}})
	f.SetSource(Pt(0.2, 0.6))
	f.SetSchemaVersion(1)
	env := MigrationEnv{Orientation: OrientationFlipX, Flip: flipX{}}
	if err := UpgradeForm(f, env); err != nil {
		t.Fatal(err)
	}
	src := f.Source()
	if math32.Abs(src.X-0.8) > 1e-6 || math32.Abs(src.Y-0.6) > 1e-6 {
		t.Errorf("source = %+v, want (0.8,0.6)", src)
	}
}
