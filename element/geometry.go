package element

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TransformMode selects whether per element map derivatives and inverse
// mass matrices are stored or rebuilt on every use
type TransformMode uint8

const (
	Precomputed TransformMode = iota
	OnTheFly
)

func (tm TransformMode) String() string {
	if tm == OnTheFly {
		return "on-the-fly"
	}
	return "precomputed"
}

// Geometry provides element transforms, DG basis tables and local mass
// matrices for one quadrature rule over a mesh. After construction it is
// read only and safe for concurrent use.
type Geometry struct {
	Mode   TransformMode
	Quad   *Quadrature2D
	Tables [4]*BasisTable // indexed by DGDegree

	src        CornerSource
	transforms []*Transform
	invMass    map[DGDegree][]*mat.Dense
}

// NewGeometry builds the geometry for an nq*nq Gauss rule. In Precomputed
// mode the inverse mass matrices of the listed degrees are stored.
func NewGeometry(src CornerSource, nq int, mode TransformMode, degrees ...DGDegree) *Geometry {
	g := &Geometry{
		Mode:    mode,
		Quad:    NewQuadrature2D(nq),
		src:     src,
		invMass: make(map[DGDegree][]*mat.Dense),
	}
	for d := DG0; d <= DG2Plus; d++ {
		g.Tables[d] = DGTable(d, g.Quad)
	}
	if mode == OnTheFly {
		return g
	}
	ne := src.NumElements()
	g.transforms = make([]*Transform, ne)
	for eid := 0; eid < ne; eid++ {
		g.transforms[eid] = NewTransform(src.Corners(eid), g.Quad)
	}
	for _, d := range degrees {
		if _, ok := g.invMass[d]; ok {
			continue
		}
		im := make([]*mat.Dense, ne)
		for eid := 0; eid < ne; eid++ {
			im[eid] = g.inverseMass(d, g.transforms[eid])
		}
		g.invMass[d] = im
	}
	return g
}

func (g *Geometry) NumElements() int { return g.src.NumElements() }

// Transform returns the map derivatives of element eid
func (g *Geometry) Transform(eid int) *Transform {
	if g.transforms != nil {
		return g.transforms[eid]
	}
	return NewTransform(g.src.Corners(eid), g.Quad)
}

// MassMatrix assembles ∫ψ_i ψ_j over element eid
func (g *Geometry) MassMatrix(d DGDegree, tr *Transform) *mat.Dense {
	var (
		bt = g.Tables[d]
		nb = bt.NB
		M  = mat.NewDense(nb, nb, nil)
	)
	for i := 0; i < nb; i++ {
		pwi := bt.PsiW.RawRowView(i)
		for j := i; j < nb; j++ {
			pj := bt.Psi.RawRowView(j)
			var s float64
			for k := 0; k < bt.NQ; k++ {
				s += pwi[k] * pj[k] * tr.J[k]
			}
			M.Set(i, j, s)
			M.Set(j, i, s)
		}
	}
	return M
}

func (g *Geometry) inverseMass(d DGDegree, tr *Transform) *mat.Dense {
	var iM mat.Dense
	if err := iM.Inverse(g.MassMatrix(d, tr)); err != nil {
		panic(fmt.Errorf("singular %s mass matrix: %w", d, err))
	}
	return &iM
}

// InverseMass returns the inverse local mass matrix of element eid
func (g *Geometry) InverseMass(d DGDegree, eid int, tr *Transform) *mat.Dense {
	if im, ok := g.invMass[d]; ok {
		return im[eid]
	}
	return g.inverseMass(d, tr)
}

// Project computes the DG coefficients out of degree d on element eid from
// point values vals. When scaled is true vals already carry the factor J,
// as the cofactor gradients of GradJ do.
func (g *Geometry) Project(d DGDegree, eid int, tr *Transform, vals []float64, scaled bool, out []float64) {
	var (
		bt  = g.Tables[d]
		nb  = bt.NB
		rhs [8]float64
	)
	for i := 0; i < nb; i++ {
		pw := bt.PsiW.RawRowView(i)
		var s float64
		if scaled {
			for k := 0; k < bt.NQ; k++ {
				s += pw[k] * vals[k]
			}
		} else {
			for k := 0; k < bt.NQ; k++ {
				s += pw[k] * vals[k] * tr.J[k]
			}
		}
		rhs[i] = s
	}
	ApplyInverse(g.InverseMass(d, eid, tr), rhs[:nb], out)
}

// ApplyInverse writes iM·rhs into out
func ApplyInverse(iM *mat.Dense, rhs, out []float64) {
	nb := len(rhs)
	for i := 0; i < nb; i++ {
		row := iM.RawRowView(i)
		var s float64
		for j := 0; j < nb; j++ {
			s += row[j] * rhs[j]
		}
		out[i] = s
	}
}
