package interpolation

import (
	"testing"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/partitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterpolator(t *testing.T, cg element.CGDegree, opts ...mesh.RectOption) *Interpolator {
	m, err := mesh.RectangleMesh(4, 3, 2, 1.5, opts...)
	require.NoError(t, err)
	pl := partitions.NewPartitionLayout(m.Nx, m.Ny, 2, nil)
	return NewInterpolator(m, cg, element.Precomputed, pl)
}

func linear(x, y float64) float64 { return 1 + 2*x + 3*y }

func TestCGToDGLinear(t *testing.T) {
	ip := newInterpolator(t, element.CG1)
	cg := make([]float64, element.CG1.NumNodes(4, 3))
	ip.FunctionToCG(linear, cg)
	dg := make([]float64, 12*3)
	ip.CGToDG(element.DG1, cg, dg)
	h := 0.5
	for eid := 0; eid < 12; eid++ {
		x, y := ip.Mesh.Center(eid)
		assert.InDeltaSlicef(t, []float64{linear(x, y), 2 * h, 3 * h}, dg[eid*3:eid*3+3], 1.e-12, "element %d", eid)
	}

	back := make([]float64, len(cg))
	ip.DGToCG(element.DG1, dg, back)
	assert.InDeltaSlice(t, cg, back, 1.e-12)
}

func TestQuadraticCG2(t *testing.T) {
	ip := newInterpolator(t, element.CG2,
		mesh.WithDistortion(func(x, y float64) (float64, float64) { return x, y + 0.1*x }))
	f := func(x, y float64) float64 { return x*x - 0.5*y + x }
	cg := make([]float64, element.CG2.NumNodes(4, 3))
	ip.FunctionToCG(f, cg)

	fromCG := make([]float64, 12*6)
	ip.CGToDG(element.DG2, cg, fromCG)
	direct := make([]float64, 12*6)
	ip.FunctionToDG(element.DG2, f, direct)
	// f is quadratic in x and linear in y, so it lies in the Q2 space of
	// the sheared mesh
	assert.InDeltaSlice(t, direct, fromCG, 1.e-11)

	back := make([]float64, len(cg))
	ip.DGToCG(element.DG2, direct, back)
	assert.InDeltaSlice(t, cg, back, 1.e-11)
}

func TestDGToCGAveragesJumps(t *testing.T) {
	ip := newInterpolator(t, element.CG1)
	dg := make([]float64, 12)
	dg[0] = 4 // one element carries a constant, the rest zero
	cg := make([]float64, element.CG1.NumNodes(4, 3))
	ip.DGToCG(element.DG0, dg, cg)
	assert.Equal(t, 4.0, cg[0]) // corner, one element
	assert.Equal(t, 2.0, cg[1]) // bottom edge, two elements
	assert.Equal(t, 1.0, cg[6]) // interior node (1,1), four elements
	assert.Equal(t, 0.0, cg[2])
}
