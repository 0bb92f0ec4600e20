package masks

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/parallel"
)

// fieldFunc is a closed-form opacity field over shape reference space.
// Circle, ellipse and gradient render through one: the rasterizer maps
// output pixels back to reference space and samples the field, no
// tessellation involved.
type fieldFunc func(x, y float32) float32

// fieldMask renders a field over the full area: one reference-space
// coordinate pair per output pixel, mapped back in a single batch.
func fieldMask(ctx RenderContext, a Area, at fieldFunc) (*Mask, error) {
	w, h := a.Width, a.Height
	pts := make([]float32, w*h*2)
	parallel.Rows(renderPool(), h, func(i int) {
		p := pts[2*i*w:]
		y := float32(i + a.Y)
		for j := 0; j < w; j++ {
			p[2*j] = float32(a.X + j)
			p[2*j+1] = y
		}
	})
	if err := ctx.backtransform(pts); err != nil {
		return nil, err
	}

	m := NewMask(w, h, a.X, a.Y)
	data := m.Data()
	parallel.Rows(renderPool(), h, func(i int) {
		row := data[i*w : (i+1)*w]
		for j := 0; j < w; j++ {
			idx := (i*w + j) * 2
			row[j] = at(pts[idx], pts[idx+1])
		}
	})
	return m, nil
}

// fieldMaskGrid renders a field over the full area through a coarse
// grid with bilinear upsampling. Used where the field varies slowly
// enough that per-pixel evaluation buys nothing, like gradients.
func fieldMaskGrid(ctx RenderContext, a Area, grid int, at fieldFunc) (*Mask, error) {
	w, h := a.Width, a.Height
	gw := (w+grid-1)/grid + 1
	gh := (h+grid-1)/grid + 1

	pts := make([]float32, gw*gh*2)
	parallel.Rows(renderPool(), gh, func(j int) {
		for i := 0; i < gw; i++ {
			pts[(j*gw+i)*2] = float32(grid*i + a.X)
			pts[(j*gw+i)*2+1] = float32(grid*j + a.Y)
		}
	})
	if err := ctx.backtransform(pts); err != nil {
		return nil, err
	}

	parallel.Rows(renderPool(), gh, func(j int) {
		for i := 0; i < gw; i++ {
			index := j*gw + i
			pts[2*index] = at(pts[2*index], pts[2*index+1])
		}
	})

	m := NewMask(w, h, a.X, a.Y)
	data := m.Data()
	g := float32(grid * grid)
	parallel.Rows(renderPool(), h, func(j int) {
		jj := j % grid
		mj := j / grid
		for i := 0; i < w; i++ {
			ii := i % grid
			mi := i / grid
			mindex := mj*gw + mi
			data[j*w+i] = (pts[mindex*2]*float32((grid-ii)*(grid-jj)) +
				pts[(mindex+1)*2]*float32(ii*(grid-jj)) +
				pts[(mindex+gw)*2]*float32((grid-ii)*jj) +
				pts[(mindex+gw+1)*2]*float32(ii*jj)) / g
		}
	})
	return m, nil
}

// fieldMaskROI renders a field into a roi buffer through a coarse grid:
// the field is evaluated at backtransformed grid points and bilinearly
// upsampled, which keeps the per-pixel cost independent of the mapper.
// hull, when non-nil, is a flat working-space outline bounding every
// nonzero pixel and restricts the grid to its bounding box.
func fieldMaskROI(ctx RenderContext, roi ROI, buf []float32, hull []float32, at fieldFunc) error {
	width, height := roi.Width, roi.Height
	zero(buf[:width*height])

	scale := roi.Scale
	if scale <= 0 {
		scale = 1
	}
	iscale := 1 / scale
	grid := int((10*scale + 2) / 3) // scale dependent grid resolution
	if grid < 1 {
		grid = 1
	} else if grid > 4 {
		grid = 4
	}
	gridWidth := (width+grid-1)/grid + 1
	gridHeight := (height+grid-1)/grid + 1

	bbxm, bbym := 0, 0
	bbxM, bbyM := gridWidth-1, gridHeight-1
	if hull != nil {
		xmin, xmax, ymin, ymax, ok := flatBounds(hull)
		if !ok {
			return nil
		}
		// bounding box in grid cells, with a bit of reserve
		bbxm = clampi(int(math32.Floor(xmin/iscale-float32(roi.X)))/grid-1, 0, gridWidth-1)
		bbxM = clampi(int(math32.Ceil(xmax/iscale-float32(roi.X)))/grid+2, 0, gridWidth-1)
		bbym = clampi(int(math32.Floor(ymin/iscale-float32(roi.Y)))/grid-1, 0, gridHeight-1)
		bbyM = clampi(int(math32.Ceil(ymax/iscale-float32(roi.Y)))/grid+2, 0, gridHeight-1)
	}
	bbw := bbxM - bbxm + 1
	bbh := bbyM - bbym + 1
	if bbw <= 1 || bbh <= 1 {
		return nil
	}

	// grid points in working space, mapped back to reference space in
	// one batch; far fewer points than evaluating every roi pixel
	pts := make([]float32, bbw*bbh*2)
	for j := bbym; j <= bbyM; j++ {
		for i := bbxm; i <= bbxM; i++ {
			index := (j-bbym)*bbw + i - bbxm
			pts[index*2] = float32(grid*i+roi.X) * iscale
			pts[index*2+1] = float32(grid*j+roi.Y) * iscale
		}
	}
	if err := ctx.backtransform(pts); err != nil {
		return err
	}

	// evaluate the field at the grid points, reusing the x slots
	parallel.Rows(renderPool(), bbh, func(j int) {
		for i := 0; i < bbw; i++ {
			index := j*bbw + i
			pts[2*index] = at(pts[2*index], pts[2*index+1])
		}
	})

	// bilinear upsampling of the grid into the output buffer
	endx := min(width, bbxM*grid)
	endy := min(height, bbyM*grid)
	starty := bbym * grid
	startx := bbxm * grid
	if starty >= endy || startx >= endx {
		return nil
	}
	g := float32(grid * grid)
	parallel.Rows(renderPool(), endy-starty, func(r int) {
		j := starty + r
		jj := j % grid
		mj := j/grid - bbym
		for i := startx; i < endx; i++ {
			ii := i % grid
			mi := i/grid - bbxm
			mindex := mj*bbw + mi
			buf[j*width+i] = (pts[mindex*2]*float32((grid-ii)*(grid-jj)) +
				pts[(mindex+1)*2]*float32(ii*(grid-jj)) +
				pts[(mindex+bbw)*2]*float32((grid-ii)*jj) +
				pts[(mindex+bbw+1)*2]*float32(ii*jj)) / g
		}
	})
	return nil
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
