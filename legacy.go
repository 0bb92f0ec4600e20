package masks

import (
	"fmt"

	"github.com/gopix/masks/internal/curve"
)

// Orientation describes the on-load auto-rotation older schema versions
// baked into their coordinates.
type Orientation int32

const (
	OrientationNone   Orientation = 0
	OrientationFlipX  Orientation = 1 << 0
	OrientationFlipY  Orientation = 1 << 1
	OrientationSwapXY Orientation = 1 << 2

	OrientationRotate180   = OrientationFlipX | OrientationFlipY
	OrientationRotateCW90  = OrientationSwapXY | OrientationFlipX
	OrientationRotateCCW90 = OrientationSwapXY | OrientationFlipY
)

// MigrationEnv supplies the historical image state legacy upgrades need:
// the on-load rotation that v1 coordinates include, and the raw crop
// that v2 coordinates were normalized against. Crop margins are in
// pixels of the full frame.
type MigrationEnv struct {
	// Orientation is the auto-rotation applied before v2.
	// OrientationNone means v1 coordinates carry no rotation.
	Orientation Orientation

	// Flip backtransforms normalized point batches through the rotation.
	// Required when Orientation is set; a v1 form without it is rejected.
	Flip Transformer

	// Raw crop margins removed on load before v3, and the full frame
	// dimensions. All zero crop margins mean v2 coordinates are already
	// in full-frame terms.
	CropLeft, CropTop     int
	CropRight, CropBottom int
	FullWidth, FullHeight int
}

func (e MigrationEnv) hasCrop() bool {
	return e.CropLeft != 0 || e.CropTop != 0 || e.CropRight != 0 || e.CropBottom != 0
}

// UpgradeForm migrates a form stored with an older schema version to the
// current one, step by step. A failing step rejects just this form with
// ErrMigration; the caller drops it and the rest of the history stays
// intact.
func UpgradeForm(f *Form, env MigrationEnv) error {
	if f.version > Version {
		return fmt.Errorf("%w: form version %d, engine version %d", ErrVersion, f.version, Version)
	}
	for f.version < Version {
		var err error
		switch f.version {
		case 1:
			err = migrateV1V2(f, env)
		case 2:
			err = migrateV2V3(f, env)
		case 3:
			err = migrateV3V4(f)
		case 4:
			err = migrateV4V5(f)
		case 5:
			err = migrateV5V6(f)
		default:
			err = fmt.Errorf("%w: no upgrade from version %d", ErrMigration, f.version)
		}
		if err != nil {
			Logger().Warn("legacy form rejected",
				"form", f.id, "version", f.version, "err", err)
			return err
		}
	}
	f.gen++
	return nil
}

// migrateV1V2 removes the on-load rotation from the stored coordinates.
// Before v2 the image was rotated when loaded, afterwards rotation is a
// pipeline stage of its own, so v1 coordinates must be backtransformed
// through the flip once.
func migrateV1V2(f *Form, env MigrationEnv) error {
	if env.Orientation == OrientationNone {
		f.version = 2
		return nil
	}
	if env.Flip == nil {
		return fmt.Errorf("%w: v1 form needs the orientation flip", ErrMigration)
	}
	if len(f.nodes) == 0 {
		return fmt.Errorf("%w: v1 form without nodes", ErrMigration)
	}

	flip := func(p *[2]float32) error {
		if err := env.Flip.Backtransform(p[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrMigration, err)
		}
		return nil
	}
	flipHandle := func(p *[2]float32) error {
		if p[0] == curve.Unset || p[1] == curve.Unset {
			return nil
		}
		return flip(p)
	}

	for i, n := range f.nodes {
		var err error
		switch v := n.(type) {
		case CircleNode:
			err = flip(&v.Center)
			f.nodes[i] = v
		case PolygonNode:
			if err = flip(&v.Corner); err == nil {
				if err = flipHandle(&v.Ctrl1); err == nil {
					err = flipHandle(&v.Ctrl2)
				}
			}
			f.nodes[i] = v
		case BrushNode:
			if err = flip(&v.Corner); err == nil {
				if err = flipHandle(&v.Ctrl1); err == nil {
					err = flipHandle(&v.Ctrl2)
				}
			}
			f.nodes[i] = v
		case EllipseNode:
			err = flip(&v.Center)
			if env.Orientation&OrientationSwapXY != 0 {
				v.Radius[0], v.Radius[1] = v.Radius[1], v.Radius[0]
			}
			f.nodes[i] = v
		case GradientNode:
			err = flip(&v.Anchor)
			switch env.Orientation {
			case OrientationRotate180:
				v.Rotation -= 180
			case OrientationRotateCCW90:
				v.Rotation -= 90
			case OrientationRotateCW90:
				v.Rotation += 90
			}
			f.nodes[i] = v
		}
		if err != nil {
			return err
		}
	}

	if f.IsClone() {
		src := [2]float32{f.source.X, f.source.Y}
		if err := flip(&src); err != nil {
			return err
		}
		f.source = Point{X: src[0], Y: src[1]}
	}
	f.version = 2
	return nil
}

// migrateV2V3 renormalizes coordinates from the raw-cropped frame to the
// full frame: de-normalize by the cropped dimensions, shift by the crop
// origin, renormalize by the full dimensions. Scalar radii and borders
// rescale by the ratio of the smaller dimensions.
func migrateV2V3(f *Form, env MigrationEnv) error {
	if !env.hasCrop() {
		f.version = 3
		return nil
	}
	if len(f.nodes) == 0 {
		return fmt.Errorf("%w: v2 form without nodes", ErrMigration)
	}
	if env.FullWidth <= 0 || env.FullHeight <= 0 {
		return fmt.Errorf("%w: v2 form needs the full frame dimensions", ErrMigration)
	}

	w := float32(env.FullWidth)
	h := float32(env.FullHeight)
	cw := w - float32(env.CropLeft) - float32(env.CropRight)
	ch := h - float32(env.CropTop) - float32(env.CropBottom)
	if cw <= 0 || ch <= 0 {
		return fmt.Errorf("%w: v2 crop leaves no frame", ErrMigration)
	}
	rescale := min(cw, ch) / min(w, h)

	point := func(p *[2]float32) {
		p[0] = (p[0]*cw + float32(env.CropLeft)) / w
		p[1] = (p[1]*ch + float32(env.CropTop)) / h
	}
	handle := func(p *[2]float32) {
		if p[0] == curve.Unset || p[1] == curve.Unset {
			return
		}
		point(p)
	}

	for i, n := range f.nodes {
		switch v := n.(type) {
		case CircleNode:
			point(&v.Center)
			v.Radius *= rescale
			v.Border *= rescale
			f.nodes[i] = v
		case PolygonNode:
			point(&v.Corner)
			handle(&v.Ctrl1)
			handle(&v.Ctrl2)
			v.Border[0] *= rescale
			v.Border[1] *= rescale
			f.nodes[i] = v
		case BrushNode:
			point(&v.Corner)
			handle(&v.Ctrl1)
			handle(&v.Ctrl2)
			v.Border[0] *= rescale
			v.Border[1] *= rescale
			f.nodes[i] = v
		case EllipseNode:
			point(&v.Center)
			v.Radius[0] *= rescale
			v.Radius[1] *= rescale
			v.Border *= rescale
			f.nodes[i] = v
		case GradientNode:
			point(&v.Anchor)
			f.nodes[i] = v
		}
	}

	if f.IsClone() {
		src := [2]float32{f.source.X, f.source.Y}
		point(&src)
		f.source = Point{X: src[0], Y: src[1]}
	}
	f.version = 3
	return nil
}

// migrateV3V4 gives ellipses the feathering mode field; everything
// stored before v4 feathered equidistantly.
func migrateV3V4(f *Form) error {
	if len(f.nodes) == 0 {
		return fmt.Errorf("%w: v3 form without nodes", ErrMigration)
	}
	for i, n := range f.nodes {
		if v, ok := n.(EllipseNode); ok {
			v.Flags = EllipseEquidistant
			f.nodes[i] = v
		}
	}
	f.version = 4
	return nil
}

// migrateV4V5 gives gradients the curvature field; pre-v5 gradients are
// straight.
func migrateV4V5(f *Form) error {
	if len(f.nodes) == 0 {
		return fmt.Errorf("%w: v4 form without nodes", ErrMigration)
	}
	for i, n := range f.nodes {
		if v, ok := n.(GradientNode); ok {
			v.Curvature = 0
			f.nodes[i] = v
		}
	}
	f.version = 5
	return nil
}

// migrateV5V6 gives gradients the transition profile field; pre-v6
// gradients fade linearly.
func migrateV5V6(f *Form) error {
	if len(f.nodes) == 0 {
		return fmt.Errorf("%w: v5 form without nodes", ErrMigration)
	}
	for i, n := range f.nodes {
		if v, ok := n.(GradientNode); ok {
			v.State = GradientLinear
			f.nodes[i] = v
		}
	}
	f.version = 6
	return nil
}
