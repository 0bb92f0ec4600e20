package masks

import (
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Mask is a dense opacity buffer in [0,1] with its position in working
// space. Full-mask rendering allocates and returns one sized to the
// shape's feathered bounding box; ROI rendering fills a caller buffer
// instead.
type Mask struct {
	width  int
	height int
	x, y   int
	data   []float32
}

// NewMask creates a zeroed mask buffer of the given size, positioned at
// (x, y) in working space.
func NewMask(width, height, x, y int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		x:      x,
		y:      y,
		data:   make([]float32, width*height),
	}
}

// Width returns the width of the mask in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the height of the mask in pixels.
func (m *Mask) Height() int { return m.height }

// PosX returns the x offset of the mask in working space.
func (m *Mask) PosX() int { return m.x }

// PosY returns the y offset of the mask in working space.
func (m *Mask) PosY() int { return m.y }

// Data returns the raw opacity values, row-major.
func (m *Mask) Data() []float32 { return m.data }

// At returns the opacity at mask-local coordinates, 0 outside the buffer.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set writes the opacity at mask-local coordinates, ignoring writes
// outside the buffer.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = v
}

// GrayImage converts the mask to an 8-bit grayscale preview image.
func (m *Mask) GrayImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for i, v := range m.data {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		img.Pix[i] = uint8(v*255 + 0.5)
	}
	return img
}

// ScaledGray returns a bilinearly resampled grayscale preview at the
// given size, for thumbnail and overlay use.
func (m *Mask) ScaledGray(width, height int) *image.Gray {
	src := m.GrayImage()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SavePNG writes the mask as a grayscale PNG, mainly for debugging.
func (m *Mask) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, m.GrayImage())
}
