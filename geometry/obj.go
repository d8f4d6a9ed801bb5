package geometry

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh as Wavefront OBJ: one "v" record per vertex and
// one "f" record per triangle, 1-based, winding unchanged.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "# mp3gon tube: %d frames x %d bins\n", m.Frames, m.FreqBins); err != nil {
		return err
	}
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v.X(), v.Y(), v.Z()); err != nil {
			return err
		}
	}
	for i := range m.TriangleCount() {
		tri := m.Triangle(i)
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", tri[0]+1, tri[1]+1, tri[2]+1); err != nil {
			return err
		}
	}

	return bw.Flush()
}
