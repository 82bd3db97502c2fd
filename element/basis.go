package element

import (
	"math"

	"github.com/notargets/gocfd/DG1D"

	"github.com/notargets/DGSeaIce/element/library/jacobi"
)

// The DG basis on [0,1]^2 is built from the shifted Legendre factors
// 1, (x-½), (x-½)²-1/12, which are orthogonal on the unit square.
//
//	0: 1              4: (y-½)²-1/12
//	1: (x-½)          5: (x-½)(y-½)
//	2: (y-½)          6: ((x-½)²-1/12)(y-½)
//	3: (x-½)²-1/12    7: (x-½)((y-½)²-1/12)

// psiOrders are the x and y orders of the factors of each basis function
var psiOrders = [8][2]int{{0, 0}, {1, 0}, {0, 1}, {2, 0}, {0, 2}, {1, 1}, {2, 1}, {1, 2}}

// InverseUnitMass holds 1/∫ψ_i² over the unit square
var InverseUnitMass = [8]float64{1, 12, 12, 180, 180, 144, 2160, 2160}

// Psi evaluates DG basis function i at (x,y)
func Psi(i int, x, y float64) float64 {
	a, b := x-0.5, y-0.5
	switch i {
	case 0:
		return 1
	case 1:
		return a
	case 2:
		return b
	case 3:
		return a*a - 1./12.
	case 4:
		return b*b - 1./12.
	case 5:
		return a * b
	case 6:
		return (a*a - 1./12.) * b
	case 7:
		return a * (b*b - 1./12.)
	}
	panic("DG basis index out of range")
}

// PsiGrad evaluates the reference gradient of DG basis function i
func PsiGrad(i int, x, y float64) (dx, dy float64) {
	a, b := x-0.5, y-0.5
	switch i {
	case 0:
		return 0, 0
	case 1:
		return 1, 0
	case 2:
		return 0, 1
	case 3:
		return 2 * a, 0
	case 4:
		return 0, 2 * b
	case 5:
		return b, a
	case 6:
		return 2 * a * b, a*a - 1./12.
	case 7:
		return b*b - 1./12., 2 * a * b
	}
	panic("DG basis index out of range")
}

// legendre evaluates the shifted Legendre factor of order n, scaled to a
// unit leading coefficient, and its derivative at the points t of [0,1].
func legendre(n int, t []float64) (v, dv []float64) {
	x := make([]float64, len(t))
	for i := range t {
		x[i] = 2*t[i] - 1
	}
	var (
		fn = float64(n)
		// leading coefficient of the orthonormal P_n(2t-1) in t
		k = math.Sqrt((2*fn+1)/2) * binomial(2*n, n)
	)
	v, dv = jacobi.P(x, 0, 0, n), jacobi.GradP(x, 0, 0, n)
	for i := range v {
		v[i] /= k
		dv[i] *= 2 / k
	}
	return
}

func binomial(n, k int) float64 {
	b := 1.
	for i := 1; i <= k; i++ {
		b = b * float64(n-k+i) / float64(i)
	}
	return b
}

// cgNodes holds the Gauss-Lobatto points of CG1 and CG2 mapped to [0,1]
var cgNodes = func() (nodes [3][]float64) {
	for _, c := range []CGDegree{CG1, CG2} {
		x := jacobi.GL(0, 0, int(c))
		for i := range x {
			x[i] = 0.5 * (x[i] + 1)
		}
		nodes[c] = x
	}
	return
}()

// CGNodes1D are the Lagrange nodes of the 1D factor of the Q1/Q2 basis.
// The slice is shared and must not be modified.
func CGNodes1D(c CGDegree) []float64 {
	if c == CG1 {
		return cgNodes[CG1]
	}
	return cgNodes[CG2]
}

// Phi evaluates the CG basis function with local index jy*(c+1)+jx at (x,y)
func Phi(c CGDegree, local int, x, y float64) float64 {
	nodes := CGNodes1D(c)
	jx, jy := local%(int(c)+1), local/(int(c)+1)
	return DG1D.Lagrange1DPoly(x, nodes, jx, 0) * DG1D.Lagrange1DPoly(y, nodes, jy, 0)
}

// PhiGrad evaluates the reference gradient of a CG basis function
func PhiGrad(c CGDegree, local int, x, y float64) (dx, dy float64) {
	nodes := CGNodes1D(c)
	jx, jy := local%(int(c)+1), local/(int(c)+1)
	lx, ly := DG1D.Lagrange1DPoly(x, nodes, jx, 0), DG1D.Lagrange1DPoly(y, nodes, jy, 0)
	dx = DG1D.Lagrange1DPoly(x, nodes, jx, 1) * ly
	dy = lx * DG1D.Lagrange1DPoly(y, nodes, jy, 1)
	return
}

// CGNodePosition is the reference position of a local CG node
func CGNodePosition(c CGDegree, local int) (x, y float64) {
	nodes := CGNodes1D(c)
	return nodes[local%(int(c)+1)], nodes[local/(int(c)+1)]
}
