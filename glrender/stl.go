package glrender

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/soypat/geometry/ms3"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// WriteBinarySTL writes triangles to w in binary STL format.
func WriteBinarySTL(w io.Writer, triangles []ms3.Triangle) (int, error) {
	if len(triangles) > math.MaxUint32 {
		return 0, errors.New("too many triangles for STL")
	}
	var header [stlHeaderSize + 4]byte
	copy(header[:], "orbitext binary STL")
	binary.LittleEndian.PutUint32(header[stlHeaderSize:], uint32(len(triangles)))
	n, err := w.Write(header[:])
	if err != nil {
		return n, err
	}
	var buf [stlTriangleSize]byte
	for _, t := range triangles {
		normal := TriangleNormal(t)
		putVec(buf[0:], normal)
		putVec(buf[12:], t[0])
		putVec(buf[24:], t[1])
		putVec(buf[36:], t[2])
		// Attribute byte count is left zero.
		ngot, err := w.Write(buf[:])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadBinarySTL reads all triangles of a binary STL file.
func ReadBinarySTL(r io.Reader) ([]ms3.Triangle, error) {
	var header [stlHeaderSize + 4]byte
	_, err := io.ReadFull(r, header[:])
	if err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(header[stlHeaderSize:])
	triangles := make([]ms3.Triangle, 0, min(int(count), 1<<20))
	var buf [stlTriangleSize]byte
	for i := uint32(0); i < count; i++ {
		_, err = io.ReadFull(r, buf[:])
		if err != nil {
			return triangles, fmt.Errorf("reading STL triangle %d of %d: %w", i, count, err)
		}
		triangles = append(triangles, ms3.Triangle{getVec(buf[12:]), getVec(buf[24:]), getVec(buf[36:])})
	}
	return triangles, nil
}

func putVec(b []byte, v ms3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
