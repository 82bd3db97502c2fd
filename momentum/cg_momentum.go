package momentum

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/interpolation"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/partitions"
)

var (
	ErrDiverged            = errors.New("momentum: non-finite value")
	ErrPeriodicUnsupported = errors.New("momentum: periodic boundaries are not supported")
	ErrMissingDamage       = errors.New("momentum: damage field required")
)

// IceFields is the DG ice state feeding a rheology update. D may be nil
// when the rheology does not use damage.
type IceFields struct {
	Degree  element.DGDegree
	H, A, D []float64
}

func (f IceFields) check(ne int) {
	nb := f.Degree.NumCoeffs()
	if len(f.H) != ne*nb || len(f.A) != ne*nb || (f.D != nil && len(f.D) != ne*nb) {
		panic(fmt.Sprintf("ice fields do not match %d elements of %s", ne, f.Degree))
	}
}

// CGMomentum owns the CG velocity and the DG strain and stress of one mesh
//
//	VX, VY:           velocity, length CG.NumNodes(nx, ny)
//	VXmevp, VYmevp:   velocity at the start of an mEVP subcycle
//	AvgVX, AvgVY:     mean velocity over the substeps of an MEB subcycle
//	OX, OY, AX, AY:   ocean and atmosphere velocity at the CG nodes
//	CgH, CgA, CgD:    ice state interpolated to the CG nodes
//	E.., S..:         strain rate and stress, ne*Stress.NumCoeffs()
type CGMomentum struct {
	Mesh   *mesh.ParametricMesh
	CG     element.CGDegree
	Stress element.DGDegree
	Geom   *element.Geometry
	Layout *partitions.PartitionLayout
	Interp *interpolation.Interpolator

	VX, VY         []float64
	VXmevp, VYmevp []float64
	AvgVX, AvgVY   []float64
	OX, OY, AX, AY []float64
	CgH, CgA, CgD  []float64

	E11, E12, E22 []float64
	S11, S12, S22 []float64

	cgTab          *element.BasisTable
	lumped         []float64
	tmpX, tmpY     []float64
	dirichletNodes []int
	landNodes      []int
	work           []*workspace
}

// workspace is the per partition scratch of the element loops
type workspace struct {
	dofs       []int
	lx, ly     []float64
	fxi, feta  []float64
	jdx, jdy   []float64
	jdx2, jdy2 []float64
	q          [8][]float64
}

func newWorkspace(npe, nq int) *workspace {
	w := &workspace{
		dofs: make([]int, npe),
		lx:   make([]float64, npe),
		ly:   make([]float64, npe),
		fxi:  make([]float64, nq),
		feta: make([]float64, nq),
		jdx:  make([]float64, nq),
		jdy:  make([]float64, nq),
		jdx2: make([]float64, nq),
		jdy2: make([]float64, nq),
	}
	for i := range w.q {
		w.q[i] = make([]float64, nq)
	}
	return w
}

// NewCGMomentum allocates every buffer of the solver. Land elements are
// excluded from all element loops through the partition layout.
func NewCGMomentum(m *mesh.ParametricMesh, cg element.CGDegree, mode element.TransformMode,
	parallelDegree int) (*CGMomentum, error) {
	if len(m.Periodic) != 0 {
		return nil, ErrPeriodicUnsupported
	}
	var (
		stress = cg.StressDegree()
		layout = partitions.NewPartitionLayout(m.Nx, m.Ny, parallelDegree, m.IsIce)
		geom   = element.NewGeometry(m, cg.GaussPoints(), mode, damageDegrees(stress)...)
		nn     = cg.NumNodes(m.Nx, m.Ny)
		ns     = m.NumElements() * stress.NumCoeffs()
	)
	cgm := &CGMomentum{
		Mesh:   m,
		CG:     cg,
		Stress: stress,
		Geom:   geom,
		Layout: layout,
		Interp: interpolation.NewInterpolator(m, cg, mode, layout),
		cgTab:  element.CGTable(cg, geom.Quad),
	}
	for _, v := range []*[]float64{
		&cgm.VX, &cgm.VY, &cgm.VXmevp, &cgm.VYmevp, &cgm.AvgVX, &cgm.AvgVY,
		&cgm.OX, &cgm.OY, &cgm.AX, &cgm.AY, &cgm.CgH, &cgm.CgA, &cgm.CgD,
		&cgm.tmpX, &cgm.tmpY,
	} {
		*v = make([]float64, nn)
	}
	for _, v := range []*[]float64{&cgm.E11, &cgm.E12, &cgm.E22, &cgm.S11, &cgm.S12, &cgm.S22} {
		*v = make([]float64, ns)
	}
	cgm.work = make([]*workspace, layout.NumPartitions)
	for i := range cgm.work {
		cgm.work[i] = newWorkspace(cg.NodesPerElement(), geom.Quad.NumPoints())
	}
	cgm.lumped = cgm.lumpedMass()
	cgm.dirichletNodes = cgm.boundaryNodes()
	cgm.landNodes = cgm.maskedNodes()
	return cgm, nil
}

// damageDegrees are the stress degree and every lower ice degree the MEB
// damage is projected onto
func damageDegrees(stress element.DGDegree) []element.DGDegree {
	degrees := []element.DGDegree{stress}
	for d := element.DG0; d < stress && d <= element.DG2; d++ {
		degrees = append(degrees, d)
	}
	return degrees
}

func (cgm *CGMomentum) NumNodes() int { return len(cgm.VX) }

// lumpedMass sums ∫φ_i over every element, land included
func (cgm *CGMomentum) lumpedMass() []float64 {
	var (
		m    = cgm.Mesh
		tab  = cgm.cgTab
		w    = cgm.Geom.Quad.W
		dofs = make([]int, cgm.CG.NodesPerElement())
		lm   = make([]float64, cgm.NumNodes())
	)
	for eid := 0; eid < m.NumElements(); eid++ {
		ix, iy := m.ElementXY(eid)
		cgm.CG.ElementNodes(m.Nx, ix, iy, dofs)
		tr := cgm.Geom.Transform(eid)
		for j, n := range dofs {
			phi := tab.Psi.RawRowView(j)
			for k := range w {
				lm[n] += w[k] * phi[k] * tr.J[k]
			}
		}
	}
	return lm
}

// LumpedMass returns the diagonal of the lumped CG mass matrix
func (cgm *CGMomentum) LumpedMass() []float64 { return cgm.lumped }

// SetOcean copies the ocean velocity at the CG nodes
func (cgm *CGMomentum) SetOcean(ox, oy []float64) {
	copy(cgm.OX, ox)
	copy(cgm.OY, oy)
}

// SetAtmosphere copies the wind velocity at the CG nodes
func (cgm *CGMomentum) SetAtmosphere(ax, ay []float64) {
	copy(cgm.AX, ax)
	copy(cgm.AY, ay)
}

// ResetStress zeroes the stress history
func (cgm *CGMomentum) ResetStress() {
	for _, s := range [][]float64{cgm.S11, cgm.S12, cgm.S22} {
		clear(s)
	}
}

// PrepareIteration stores the velocity anchor of the mEVP pseudo time
// stepping, zeroes the MEB velocity average and interpolates the ice state
// to the CG nodes, clamped to A∈[0,1], H≥1e-4 and D∈[0,1].
func (cgm *CGMomentum) PrepareIteration(ice IceFields) {
	ice.check(cgm.Mesh.NumElements())
	copy(cgm.VXmevp, cgm.VX)
	copy(cgm.VYmevp, cgm.VY)
	clear(cgm.AvgVX)
	clear(cgm.AvgVY)

	cgm.Interp.DGToCG(ice.Degree, ice.H, cgm.CgH)
	cgm.Interp.DGToCG(ice.Degree, ice.A, cgm.CgA)
	if ice.D != nil {
		cgm.Interp.DGToCG(ice.Degree, ice.D, cgm.CgD)
	}
	cgm.Layout.ForEachRange(cgm.NumNodes(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			cgm.CgA[i] = math.Min(math.Max(cgm.CgA[i], 0), 1)
			cgm.CgH[i] = math.Max(cgm.CgH[i], 1.e-4)
			cgm.CgD[i] = math.Min(math.Max(cgm.CgD[i], 0), 1)
		}
	})
}

// CheckFinite reports ErrDiverged when velocity or stress holds a NaN or Inf
func (cgm *CGMomentum) CheckFinite() error {
	fields := []struct {
		name string
		v    []float64
	}{
		{"vx", cgm.VX}, {"vy", cgm.VY},
		{"S11", cgm.S11}, {"S12", cgm.S12}, {"S22", cgm.S22},
	}
	for _, f := range fields {
		for i, x := range f.v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s[%d] = %v", ErrDiverged, f.name, i, x)
			}
		}
	}
	return nil
}

// MaxSpeed is the largest nodal velocity magnitude
func (cgm *CGMomentum) MaxSpeed() (vmax float64) {
	for i := range cgm.VX {
		vmax = math.Max(vmax, math.Hypot(cgm.VX[i], cgm.VY[i]))
	}
	return
}
