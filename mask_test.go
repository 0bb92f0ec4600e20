package masks

import "testing"

func TestMaskGeometry(t *testing.T) {
	m := NewMask(10, 6, 30, 40)
	if m.Width() != 10 || m.Height() != 6 {
		t.Errorf("size = %dx%d, want 10x6", m.Width(), m.Height())
	}
	if m.PosX() != 30 || m.PosY() != 40 {
		t.Errorf("pos = (%d,%d), want (30,40)", m.PosX(), m.PosY())
	}
	if len(m.Data()) != 60 {
		t.Errorf("data length = %d, want 60", len(m.Data()))
	}
}

func TestMaskAtSetBounds(t *testing.T) {
	m := NewMask(4, 4, 0, 0)
	m.Set(2, 1, 0.5)
	if got := m.At(2, 1); got != 0.5 {
		t.Errorf("At(2,1) = %v, want 0.5", got)
	}
	m.Set(-1, 0, 1)
	m.Set(4, 0, 1)
	m.Set(0, 4, 1)
	if got := m.At(-1, 0); got != 0 {
		t.Errorf("At(-1,0) = %v, want 0", got)
	}
	if got := m.At(4, 0); got != 0 {
		t.Errorf("At(4,0) = %v, want 0", got)
	}
	for _, v := range m.Data() {
		if v != 0 && v != 0.5 {
			t.Fatalf("out-of-bounds write leaked value %v into the buffer", v)
		}
	}
}

func TestGrayImage(t *testing.T) {
	m := NewMask(3, 1, 0, 0)
	m.Set(0, 0, 0)
	m.Set(1, 0, 0.5)
	m.Set(2, 0, 1.5) // clamps to 1
	img := m.GrayImage()
	want := []uint8{0, 128, 255}
	for i, w := range want {
		if img.Pix[i] != w {
			t.Errorf("pix[%d] = %d, want %d", i, img.Pix[i], w)
		}
	}
}

func TestScaledGray(t *testing.T) {
	m := NewMask(8, 8, 0, 0)
	for i := range m.Data() {
		m.Data()[i] = 1
	}
	img := m.ScaledGray(16, 4)
	b := img.Bounds()
	if b.Dx() != 16 || b.Dy() != 4 {
		t.Errorf("scaled size = %dx%d, want 16x4", b.Dx(), b.Dy())
	}
	if img.GrayAt(8, 2).Y < 250 {
		t.Errorf("center of a solid mask resampled to %d, want near 255", img.GrayAt(8, 2).Y)
	}
}
