package outline

import "github.com/chewxy/math32"

// maxIntersections caps tracked self-intersection ranges; detection past
// the cap is truncated and the border stays approximate.
func maxIntersections(nbNodes int) int { return nbNodes * 4 }

// fillGaps appends the integer points of the segment (lastx,lasty) to
// (x,y) to buf using Bresenham stepping, starting with (x,y) itself.
// The returned slice is buf reused, so callers must consume it before
// the next call.
func fillGaps(lastx, lasty, x, y int, buf [][2]int) [][2]int {
	buf = buf[:0]
	buf = append(buf, [2]int{x, y})

	dx := x - lastx
	dy := y - lasty
	absDx := dx
	if absDx < 0 {
		absDx = -absDx
	}
	absDy := dy
	if absDy < 0 {
		absDy = -absDy
	}
	if absDx <= 1 && absDy <= 1 {
		return buf
	}

	errv := absDy / 2
	if absDx > absDy {
		errv = absDx / 2
	}
	px, py := lastx, lasty
	sx, sy := 1, 1
	if dx < 0 {
		sx = -1
	}
	if dy < 0 {
		sy = -1
	}

	if absDx > absDy {
		for px != x {
			px += sx
			errv -= absDy
			if errv < 0 {
				py += sy
				errv += absDx
			}
			buf = append(buf, [2]int{px, py})
		}
	} else {
		for py != y {
			py += sy
			errv -= absDx
			if errv < 0 {
				px += sx
				errv += absDy
			}
			buf = append(buf, [2]int{px, py})
		}
	}
	return buf
}

// findSelfIntersections scans a tessellated border for index ranges
// whose points revisit an already-occupied grid cell, meaning the
// feathered border folded back over itself. border is the flat float
// buffer with the nbNodes*6 control header; returned ranges are sample
// index pairs (start, end). Ranges containing one of the four axis
// extrema are rejected: the extrema cannot lie inside a fold, so they
// anchor the walk. Detection is grid-based and bounded, not exhaustive.
func findSelfIntersections(border []float32, nbNodes int) [][2]int {
	count := len(border) / 2
	start := nbNodes * 3
	if nbNodes == 0 || count <= start {
		return nil
	}

	// axis extrema over the real samples
	var xminF, xmaxF float32 = math32.MaxFloat32, -math32.MaxFloat32
	var yminF, ymaxF float32 = math32.MaxFloat32, -math32.MaxFloat32
	posextr := [4]int{-1, -1, -1, -1}
	for i := start; i < count; i++ {
		x, y := border[i*2], border[i*2+1]
		if math32.IsNaN(x) || math32.IsNaN(y) {
			continue
		}
		if xminF > x {
			xminF, posextr[0] = x, i
		}
		if xmaxF < x {
			xmaxF, posextr[1] = x, i
		}
		if yminF > y {
			yminF, posextr[2] = y, i
		}
		if ymaxF < y {
			ymaxF, posextr[3] = y, i
		}
	}
	if posextr[1] < 0 {
		return nil
	}

	xmin := int(math32.Floor(xminF)) - 1
	xmax := int(math32.Ceil(xmaxF)) + 1
	ymin := int(math32.Floor(yminF)) - 1
	ymax := int(math32.Ceil(ymaxF)) + 1
	wb := xmax - xmin
	hb := ymax - ymin
	if wb <= 0 || hb <= 0 || wb*hb < 10 {
		return nil
	}

	binter := make([]int32, wb*hb)
	var inter [][2]int
	var extra [][2]int

	// start just before the x-max extremum, a sample that cannot sit
	// inside a fold
	startIdx := posextr[1] - 1
	if startIdx < start {
		startIdx = count - 1
	}
	lastx := int(border[startIdx*2])
	lasty := int(border[startIdx*2+1])

	limit := maxIntersections(nbNodes)
	truncated := false

	for ii := start; ii < count; ii++ {
		i := ii - start + posextr[1]
		if i >= count {
			i = i - count + start
		}

		if len(inter) >= limit {
			truncated = true
			break
		}

		extra = fillGaps(lastx, lasty, int(border[i*2]), int(border[i*2+1]), extra)

		for j := len(extra) - 1; j >= 0; j-- {
			xx, yy := extra[j][0], extra[j][1]

			idx := (yy-ymin)*wb + (xx - xmin)
			if idx < 0 || idx >= len(binter) {
				continue
			}
			// check the cell plus its left and upper neighbor so the
			// rasterized lines cannot slip between cells
			var v [3]int32
			v[0] = binter[idx]
			if xx > xmin {
				v[1] = binter[idx-1]
			}
			if yy > ymin {
				v[2] = binter[idx-wb]
			}

			for k := range v {
				if v[k] <= 0 {
					binter[idx] = int32(i)
					continue
				}
				p := int(v[k])
				if (xx == lastx && yy == lasty) || p == i-1 {
					// still on the previous point, not a real fold
					binter[idx] = int32(i)
					continue
				}
				forward := i > p &&
					(posextr[0] < p || posextr[0] > i) && (posextr[1] < p || posextr[1] > i) &&
					(posextr[2] < p || posextr[2] > i) && (posextr[3] < p || posextr[3] > i)
				backward := i < p &&
					posextr[0] < p && posextr[0] > i && posextr[1] < p && posextr[1] > i &&
					posextr[2] < p && posextr[2] > i && posextr[3] < p && posextr[3] > i
				if !forward && !backward {
					continue
				}
				if n := len(inter); n > 0 {
					last := &inter[n-1]
					if (p-i)*(last[0]-last[1]) > 0 && last[0] >= p && last[1] <= i {
						// the new fold swallows the previous one
						last[0] = p
						last[1] = i
						continue
					}
				}
				inter = append(inter, [2]int{p, i})
			}
			lastx, lasty = xx, yy
		}
	}

	if truncated && OnTruncated != nil {
		OnTruncated(nbNodes, len(inter))
	}
	return inter
}

// OnTruncated, when set, is called whenever intersection detection hits
// its range cap. The parent package points it at the engine logger.
var OnTruncated func(nbNodes, found int)
