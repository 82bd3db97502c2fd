package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/partitions"
)

var ErrDiverged = errors.New("transport: non-finite value")

// Scheme is the Runge-Kutta time stepping of the transport
type Scheme uint8

const (
	RK1 Scheme = iota + 1 // forward Euler
	RK2                   // Heun
	RK3                   // three stage strong stability preserving
)

func (s Scheme) String() string {
	switch s {
	case RK1:
		return "rk1"
	case RK2:
		return "rk2"
	case RK3:
		return "rk3"
	}
	return fmt.Sprintf("Scheme(%d)", uint8(s))
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "rk1":
		return RK1, nil
	case "rk2":
		return RK2, nil
	case "rk3":
		return RK3, nil
	}
	return 0, fmt.Errorf("unknown time stepping scheme %q, want rk1, rk2 or rk3", name)
}

// Combiner executes the stage combinations of the Runge-Kutta schemes
type Combiner interface {
	// Axpby sets y ← a·x + b·y
	Axpby(a float64, x []float64, b float64, y []float64)
}

// CPUCombiner runs Axpby over index chunks in parallel
type CPUCombiner struct {
	Layout *partitions.PartitionLayout
}

func (c CPUCombiner) Axpby(a float64, x []float64, b float64, y []float64) {
	c.Layout.ForEachRange(len(y), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] = a*x[i] + b*y[i]
		}
	})
}

// DGTransport advects DG scalar fields of one degree with the DG velocity
// VX, VY and the normal velocity on the mesh edges
//
//	VX, VY:           velocity in the transport space, ne*Degree.NumCoeffs()
//	NormalX, NormalY: normal velocity coefficients of the horizontal and
//	                  vertical edges, Degree.EdgeDOFs() per edge
type DGTransport struct {
	Mesh     *mesh.ParametricMesh
	Degree   element.DGDegree
	Scheme   Scheme
	Geom     *element.Geometry
	Edges    *element.EdgeTable
	Layout   *partitions.PartitionLayout
	Combiner Combiner

	VX, VY           []float64
	NormalX, NormalY []float64

	tmp1, tmp2, tmp3 []float64
}

// NewDGTransport sets up the transport of degree DG0, DG1 or DG2. Cell
// integrals use a 3x3 Gauss rule.
func NewDGTransport(m *mesh.ParametricMesh, d element.DGDegree, scheme Scheme, mode element.TransformMode,
	parallelDegree int) *DGTransport {
	if d > element.DG2 {
		panic(fmt.Sprintf("transport of degree %s is not supported", d))
	}
	var (
		layout = partitions.NewPartitionLayout(m.Nx, m.Ny, parallelDegree, nil)
		n      = m.NumElements() * d.NumCoeffs()
		ned    = d.EdgeDOFs()
	)
	return &DGTransport{
		Mesh:     m,
		Degree:   d,
		Scheme:   scheme,
		Geom:     element.NewGeometry(m, 3, mode, d),
		Edges:    element.NewEdgeTable(d),
		Layout:   layout,
		Combiner: CPUCombiner{Layout: layout},
		VX:       make([]float64, n),
		VY:       make([]float64, n),
		NormalX:  make([]float64, m.NumEdgesX()*ned),
		NormalY:  make([]float64, m.NumEdgesY()*ned),
		tmp1:     make([]float64, n),
		tmp2:     make([]float64, n),
		tmp3:     make([]float64, n),
	}
}

// FieldLength is the length of a DG field of the transport degree
func (t *DGTransport) FieldLength() int { return len(t.VX) }

// CGToDG is the part of an interpolator the transport needs
type CGToDG interface {
	CGToDG(d element.DGDegree, cg, dg []float64)
}

// SetVelocityDG copies a DG velocity of the transport degree and rebuilds
// the edge normal velocity
func (t *DGTransport) SetVelocityDG(vx, vy []float64) {
	if len(vx) != len(t.VX) || len(vy) != len(t.VY) {
		panic(fmt.Sprintf("velocity length %d/%d, want %d", len(vx), len(vy), len(t.VX)))
	}
	copy(t.VX, vx)
	copy(t.VY, vy)
	t.ReconstructEdgeNormalVelocity()
}

// PrepareAdvection projects a CG velocity to the transport space and
// rebuilds the edge normal velocity
func (t *DGTransport) PrepareAdvection(ip CGToDG, vx, vy []float64) {
	ip.CGToDG(t.Degree, vx, t.VX)
	ip.CGToDG(t.Degree, vy, t.VY)
	t.ReconstructEdgeNormalVelocity()
}

// Mass returns ∫phi over the mesh
func (t *DGTransport) Mass(phi []float64) (mass float64) {
	var (
		nb   = t.Degree.NumCoeffs()
		bt   = t.Geom.Tables[t.Degree]
		w    = t.Geom.Quad.W
		vals = make([]float64, bt.NQ)
	)
	for eid := 0; eid < t.Mesh.NumElements(); eid++ {
		tr := t.Geom.Transform(eid)
		bt.Evaluate(phi[eid*nb:(eid+1)*nb], vals)
		for k, v := range vals {
			mass += w[k] * v * tr.J[k]
		}
	}
	return
}
