package masks

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PointStructSize returns the encoded byte size of one node record of
// the given kind. Stored node blobs are flat arrays of records this
// size; the length check in UnmarshalNodes depends on it.
func PointStructSize(kind Kind) (int, error) {
	s, err := (&Form{kind: kind}).shape()
	if err != nil {
		return 0, err
	}
	return s.nodeSize(), nil
}

// MarshalNodes encodes the form's node records as a flat little-endian
// blob, one fixed-size struct per node. The encoding is exact: float
// bits pass through unchanged.
func (f *Form) MarshalNodes() ([]byte, error) {
	s, err := f.shape()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(f.nodes)*s.nodeSize()))
	for _, n := range f.nodes {
		if err := binary.Write(buf, binary.LittleEndian, n); err != nil {
			return nil, fmt.Errorf("masks: encode %T node: %w", n, err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalNodes replaces the form's node records with the contents of a
// stored blob. The blob length must be a whole multiple of the kind's
// record size, and the form's schema version must not exceed the current
// one; forms stored with an older version still need UpgradeForm before
// the coordinates mean anything.
func (f *Form) UnmarshalNodes(blob []byte) error {
	if f.version > Version {
		return fmt.Errorf("%w: form version %d, engine version %d", ErrVersion, f.version, Version)
	}
	s, err := f.shape()
	if err != nil {
		return err
	}
	size := s.nodeSize()
	if len(blob)%size != 0 {
		return fmt.Errorf("%w: %d bytes, record size %d", ErrShortBlob, len(blob), size)
	}

	count := len(blob) / size
	nodes := make([]Node, 0, count)
	r := bytes.NewReader(blob)
	for n := 0; n < count; n++ {
		n, err := f.readNode(r)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	f.nodes = nodes
	f.gen++
	return nil
}

func (f *Form) readNode(r *bytes.Reader) (Node, error) {
	var n Node
	var err error
	switch {
	case f.kind&KindCircle != 0:
		var v CircleNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	case f.kind&KindEllipse != 0:
		var v EllipseNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	case f.kind&KindBrush != 0:
		var v BrushNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	case f.kind&KindPolygon != 0:
		var v PolygonNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	case f.kind&KindGradient != 0:
		var v GradientNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	case f.kind&KindGroup != 0:
		var v GroupNode
		err = binary.Read(r, binary.LittleEndian, &v)
		n = v
	default:
		return nil, fmt.Errorf("%w: %#x", ErrUnknownKind, uint32(f.kind))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortBlob, err)
	}
	return n, nil
}
