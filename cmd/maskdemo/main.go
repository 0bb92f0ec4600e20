// Command maskdemo renders a sample of each mask shape to PNG files.
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/gopix/masks"
)

func main() {
	var (
		width  = flag.Int("width", 800, "working space width")
		height = flag.Int("height", 600, "working space height")
		outdir = flag.String("outdir", ".", "output directory")
	)
	flag.Parse()

	ctx := masks.RenderContext{Width: *width, Height: *height}

	for _, d := range demos() {
		m, err := d.form.Mask(ctx)
		if err != nil {
			log.Fatalf("render %s: %v", d.name, err)
		}
		if m == nil {
			log.Printf("%s: empty mask, skipped", d.name)
			continue
		}
		path := filepath.Join(*outdir, d.name+".png")
		if err := m.SavePNG(path); err != nil {
			log.Fatalf("save %s: %v", path, err)
		}
		log.Printf("%s: %dx%d at (%d,%d)", path, m.Width(), m.Height(), m.PosX(), m.PosY())
	}
}

type demo struct {
	name string
	form *masks.Form
}

func demos() []demo {
	circle := masks.NewForm(masks.KindCircle)
	must(circle.AppendNode(masks.CircleNode{
		Center: [2]float32{0.5, 0.5},
		Radius: 0.2,
		Border: 0.08,
	}))

	ellipse := masks.NewForm(masks.KindEllipse)
	must(ellipse.AppendNode(masks.EllipseNode{
		Center:   [2]float32{0.5, 0.5},
		Radius:   [2]float32{0.3, 0.15},
		Rotation: 30,
		Border:   0.05,
		Flags:    masks.EllipseEquidistant,
	}))

	polygon := masks.NewForm(masks.KindPolygon)
	corners := [][2]float32{{0.3, 0.3}, {0.7, 0.25}, {0.75, 0.7}, {0.4, 0.75}}
	for _, c := range corners {
		must(polygon.AppendNode(masks.PolygonNode{
			Corner: c,
			Ctrl1:  [2]float32{-1, -1},
			Ctrl2:  [2]float32{-1, -1},
			Border: [2]float32{0.05, 0.05},
			State:  masks.NodeStateNormal,
		}))
	}

	brush := masks.NewForm(masks.KindBrush)
	stroke := [][2]float32{{0.2, 0.6}, {0.4, 0.35}, {0.6, 0.45}, {0.8, 0.3}}
	for _, c := range stroke {
		must(brush.AppendNode(masks.BrushNode{
			Corner:   c,
			Ctrl1:    [2]float32{-1, -1},
			Ctrl2:    [2]float32{-1, -1},
			Border:   [2]float32{0.04, 0.04},
			Density:  1,
			Hardness: 0.6,
			State:    masks.NodeStateNormal,
		}))
	}

	gradient := masks.NewForm(masks.KindGradient)
	must(gradient.AppendNode(masks.GradientNode{
		Anchor:      [2]float32{0.5, 0.5},
		Rotation:    20,
		Compression: 0.15,
		Curvature:   0.5,
		State:       masks.GradientSigmoidal,
	}))

	return []demo{
		{"circle", circle},
		{"ellipse", ellipse},
		{"polygon", polygon},
		{"brush", brush},
		{"gradient", gradient},
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
