// Package geometry builds the MP3gon tube: one vertex ring per analysed frame,
// ring radius driven by the frame's log-magnitude spectrum, consecutive rings
// stitched into triangles.
package geometry

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/RyanBlaney/mp3gon/logging"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidParameter = errors.New("invalid geometry parameter")
	ErrRaggedSpectrum   = errors.New("frames have differing bin counts")
)

// Vertex is a point in model space.
type Vertex = mgl64.Vec3

// Params shapes the tube.
type Params struct {
	BaseRadius  float64 `json:"base_radius"`
	AmpScaling  float64 `json:"amp_scaling"`
	TotalLength float64 `json:"total_length"`
}

// DefaultParams returns the default tube proportions.
func DefaultParams() Params {
	return Params{
		BaseRadius:  1.5,
		AmpScaling:  2.5,
		TotalLength: 15,
	}
}

// Validate rejects non-finite values and a negative amplitude scale, which
// would pull vertices inside the base radius.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"base_radius":  p.BaseRadius,
		"amp_scaling":  p.AmpScaling,
		"total_length": p.TotalLength,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidParameter, name, v)
		}
	}
	if p.AmpScaling < 0 {
		return fmt.Errorf("%w: amp_scaling must be non-negative, got %v", ErrInvalidParameter, p.AmpScaling)
	}
	return nil
}

// Mesh is an indexed triangle mesh. Indices holds one triple per triangle.
type Mesh struct {
	Vertices []Vertex `json:"vertices"`
	Indices  []uint32 `json:"indices"`
	Frames   int      `json:"frames"`
	FreqBins int      `json:"freq_bins"`
}

// Synthesize lays out logMag[t][f] as ring t, bin f:
//
//	angle  = f/freqBins * 2pi
//	radius = BaseRadius + logMag[t][f] * AmpScaling
//	z      = t/frames * TotalLength - TotalLength/2
//
// Each ring is closed around the circumference; the tube has no end caps.
// Fewer than two frames, or no bins, yields no triangles.
func Synthesize(ctx context.Context, logMag [][]float64, params Params) (*Mesh, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	frames := len(logMag)
	freqBins := 0
	if frames > 0 {
		freqBins = len(logMag[0])
	}
	for t, row := range logMag {
		if len(row) != freqBins {
			return nil, fmt.Errorf("%w: frame %d has %d bins, frame 0 has %d", ErrRaggedSpectrum, t, len(row), freqBins)
		}
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, frames*freqBins),
		Indices:  []uint32{},
		Frames:   frames,
		FreqBins: freqBins,
	}
	if freqBins == 0 {
		return mesh, nil
	}

	// the ring shape only depends on the bin, so precompute it
	cosTable := make([]float64, freqBins)
	sinTable := make([]float64, freqBins)
	for f := range freqBins {
		angle := (float64(f) / float64(freqBins)) * 2 * math.Pi
		cosTable[f] = math.Cos(angle)
		sinTable[f] = math.Sin(angle)
	}

	for t, row := range logMag {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		z := (float64(t)/float64(frames))*params.TotalLength - params.TotalLength/2
		for f, m := range row {
			// keeps radius >= BaseRadius even for NaN or negative input
			if !(m > 0) {
				m = 0
			}
			radius := params.BaseRadius + m*params.AmpScaling
			mesh.Vertices = append(mesh.Vertices, Vertex{radius * cosTable[f], radius * sinTable[f], z})
		}
	}

	mesh.Indices = make([]uint32, 0, max(frames-1, 0)*freqBins*6)
	for t := 0; t < frames-1; t++ {
		for f := range freqBins {
			next := (f + 1) % freqBins

			i1 := uint32(t*freqBins + f)
			i2 := uint32(t*freqBins + next)
			i3 := uint32((t+1)*freqBins + f)
			i4 := uint32((t+1)*freqBins + next)

			mesh.Indices = append(mesh.Indices,
				i1, i3, i2,
				i2, i3, i4,
			)
		}
	}

	logging.WithFields(logging.Fields{
		"component": "geometry_synthesizer",
	}).Debug("Tube mesh synthesized", logging.Fields{
		"frames":    frames,
		"freq_bins": freqBins,
		"vertices":  len(mesh.Vertices),
		"triangles": mesh.TriangleCount(),
	})

	return mesh, nil
}

// VertexCount is frames * freqBins.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount is len(Indices) / 3.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the i-th index triple.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Positions flattens the vertices into an xyz float32 buffer suitable for a
// GPU position attribute.
func (m *Mesh) Positions() []float32 {
	out := make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		out = append(out, float32(v.X()), float32(v.Y()), float32(v.Z()))
	}
	return out
}

// Stats describes the ring radii and axial extent of a mesh.
type Stats struct {
	Radius common.Summary `json:"radius"`
	MinZ   float64        `json:"min_z"`
	MaxZ   float64        `json:"max_z"`
}

// Stats computes radius and extent statistics.
func (m *Mesh) Stats() Stats {
	if len(m.Vertices) == 0 {
		return Stats{}
	}

	radii := make([]float64, len(m.Vertices))
	s := Stats{MinZ: math.Inf(1), MaxZ: math.Inf(-1)}
	for i, v := range m.Vertices {
		radii[i] = v.Vec2().Len()
		s.MinZ = math.Min(s.MinZ, v.Z())
		s.MaxZ = math.Max(s.MaxZ, v.Z())
	}
	s.Radius = common.Summarize(radii)
	return s
}

// Transform returns a copy of the mesh with every vertex multiplied by mat.
// Indices are shared with the receiver.
func (m *Mesh) Transform(mat mgl64.Mat4) *Mesh {
	out := &Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  m.Indices,
		Frames:   m.Frames,
		FreqBins: m.FreqBins,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = mgl64.TransformCoordinate(v, mat)
	}
	return out
}
