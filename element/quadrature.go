package element

import (
	"github.com/notargets/DGSeaIce/element/library/jacobi"
	"gonum.org/v1/gonum/mat"
)

// Quadrature2D is a tensor Gauss rule on [0,1]^2 with N points per
// direction, point q = qy*N+qx.
type Quadrature2D struct {
	N    int
	X, Y []float64 // Length N*N
	W    []float64 // Length N*N, sums to one
	X1D  []float64 // Length N
	W1D  []float64 // Length N
}

func NewQuadrature2D(n int) *Quadrature2D {
	x1, w1 := jacobi.GaussLegendreUnit(n)
	q := &Quadrature2D{
		N:   n,
		X:   make([]float64, n*n),
		Y:   make([]float64, n*n),
		W:   make([]float64, n*n),
		X1D: x1,
		W1D: w1,
	}
	for qy := 0; qy < n; qy++ {
		for qx := 0; qx < n; qx++ {
			k := qy*n + qx
			q.X[k], q.Y[k] = x1[qx], x1[qy]
			q.W[k] = w1[qx] * w1[qy]
		}
	}
	return q
}

func (q *Quadrature2D) NumPoints() int { return q.N * q.N }

// BasisTable holds a basis evaluated at quadrature points
//
//	Psi, Dx, Dy: [NB × NQ], row i is basis function i at every point
//	PsiW:        [NB × NQ], Psi scaled by the quadrature weight
type BasisTable struct {
	NB, NQ      int
	Psi, Dx, Dy *mat.Dense
	PsiW        *mat.Dense
	Quad        *Quadrature2D
}

// DGTable evaluates the DG basis of degree d at the points of q from the
// tensor products of the 1D Legendre factors at q.X1D
func DGTable(d DGDegree, q *Quadrature2D) *BasisTable {
	var (
		nb    = d.NumCoeffs()
		n     = q.N
		f, df [3][]float64
	)
	for p := range f {
		f[p], df[p] = legendre(p, q.X1D)
	}
	return newTable(nb, q, func(i, k int) (float64, float64, float64) {
		px, py := psiOrders[i][0], psiOrders[i][1]
		qx, qy := k%n, k/n
		return f[px][qx] * f[py][qy], df[px][qx] * f[py][qy], f[px][qx] * df[py][qy]
	})
}

// CGTable evaluates the Q1/Q2 Lagrange basis at the points of q
func CGTable(c CGDegree, q *Quadrature2D) *BasisTable {
	return newTable(c.NodesPerElement(), q, func(i, k int) (float64, float64, float64) {
		dx, dy := PhiGrad(c, i, q.X[k], q.Y[k])
		return Phi(c, i, q.X[k], q.Y[k]), dx, dy
	})
}

func newTable(nb int, q *Quadrature2D, eval func(i, k int) (v, dx, dy float64)) *BasisTable {
	nq := q.NumPoints()
	bt := &BasisTable{
		NB:   nb,
		NQ:   nq,
		Psi:  mat.NewDense(nb, nq, nil),
		Dx:   mat.NewDense(nb, nq, nil),
		Dy:   mat.NewDense(nb, nq, nil),
		PsiW: mat.NewDense(nb, nq, nil),
		Quad: q,
	}
	for i := 0; i < nb; i++ {
		for k := 0; k < nq; k++ {
			v, dx, dy := eval(i, k)
			bt.Psi.Set(i, k, v)
			bt.Dx.Set(i, k, dx)
			bt.Dy.Set(i, k, dy)
			bt.PsiW.Set(i, k, v*q.W[k])
		}
	}
	return bt
}

// Evaluate writes Σ_i c_i ψ_i(q) into out for every point q
func (bt *BasisTable) Evaluate(c, out []float64) {
	evalRows(bt.Psi, bt.NB, bt.NQ, c, out)
}

// EvaluateGrad writes the reference derivatives of Σ_i c_i ψ_i
func (bt *BasisTable) EvaluateGrad(c, dx, dy []float64) {
	evalRows(bt.Dx, bt.NB, bt.NQ, c, dx)
	evalRows(bt.Dy, bt.NB, bt.NQ, c, dy)
}

func evalRows(m *mat.Dense, nb, nq int, c, out []float64) {
	for k := 0; k < nq; k++ {
		out[k] = 0
	}
	for i := 0; i < nb; i++ {
		ci := c[i]
		if ci == 0 {
			continue
		}
		row := m.RawRowView(i)
		for k := 0; k < nq; k++ {
			out[k] += ci * row[k]
		}
	}
}

// EdgeTable evaluates the cell basis on the four element edges at n edge
// Gauss points each, and the edge basis at the same points.
//
//	Trace[side]: [NB × n], cell basis on edge side
//	TraceW[side]: Trace scaled by the edge weights
//	EdgeBasis:   [EdgeDOFs × n]
type EdgeTable struct {
	NB, N     int
	W         []float64
	Trace     [4]*mat.Dense
	TraceW    [4]*mat.Dense
	EdgeBasis *mat.Dense
}

// NewEdgeTable builds the edge tables of degree d with d.EdgeDOFs() points.
// Sides are numbered bottom, right, top, left; the edge parameter runs with
// x on horizontal edges and with y on vertical edges.
func NewEdgeTable(d DGDegree) *EdgeTable {
	var (
		n    = d.EdgeDOFs()
		nb   = d.NumCoeffs()
		s, w = jacobi.GaussLegendreUnit(n)
		et   = &EdgeTable{NB: nb, N: n, W: w}
		fs   [3][]float64 // factors at the edge points
		fe   [3][]float64 // factors at 0 and 1
	)
	for p := range fs {
		fs[p], _ = legendre(p, s)
		fe[p], _ = legendre(p, []float64{0, 1})
	}
	trace := func(side, i, k int) float64 {
		px, py := psiOrders[i][0], psiOrders[i][1]
		switch side {
		case 0:
			return fs[px][k] * fe[py][0]
		case 1:
			return fe[px][1] * fs[py][k]
		case 2:
			return fs[px][k] * fe[py][1]
		}
		return fe[px][0] * fs[py][k]
	}
	for side := 0; side < 4; side++ {
		et.Trace[side] = mat.NewDense(nb, n, nil)
		et.TraceW[side] = mat.NewDense(nb, n, nil)
		for i := 0; i < nb; i++ {
			for k := 0; k < n; k++ {
				v := trace(side, i, k)
				et.Trace[side].Set(i, k, v)
				et.TraceW[side].Set(i, k, v*w[k])
			}
		}
	}
	et.EdgeBasis = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		et.EdgeBasis.SetRow(i, fs[i])
	}
	return et
}

// TraceValues writes the trace of cell coefficients c on side at the edge
// points
func (et *EdgeTable) TraceValues(side int, c, out []float64) {
	evalRows(et.Trace[side], et.NB, et.N, c, out)
}

// EdgeValues evaluates edge coefficients ce at the edge points
func (et *EdgeTable) EdgeValues(ce, out []float64) {
	r, _ := et.EdgeBasis.Dims()
	evalRows(et.EdgeBasis, r, et.N, ce, out)
}
