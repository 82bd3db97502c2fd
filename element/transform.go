package element

// CornerSource supplies the four vertices of each quadrilateral element in
// the order lower-left, lower-right, upper-left, upper-right.
type CornerSource interface {
	NumElements() int
	Corners(eid int) [4][2]float64
}

// Transform holds the bilinear map T(ξ,η) of one element evaluated at the
// points of a quadrature rule
//
//	DxT[0], DxT[1]: ∂x/∂ξ, ∂y/∂ξ
//	DyT[0], DyT[1]: ∂x/∂η, ∂y/∂η
//	J:              DxT[0]*DyT[1] - DxT[1]*DyT[0]
//	X, Y:           physical coordinates of the points
type Transform struct {
	DxT, DyT [2][]float64
	J        []float64
	X, Y     []float64
}

func NewTransform(c [4][2]float64, q *Quadrature2D) *Transform {
	nq := q.NumPoints()
	tr := &Transform{J: make([]float64, nq), X: make([]float64, nq), Y: make([]float64, nq)}
	for d := 0; d < 2; d++ {
		tr.DxT[d] = make([]float64, nq)
		tr.DyT[d] = make([]float64, nq)
	}
	for k := 0; k < nq; k++ {
		xi, eta := q.X[k], q.Y[k]
		for d := 0; d < 2; d++ {
			tr.DxT[d][k] = (1-eta)*(c[1][d]-c[0][d]) + eta*(c[3][d]-c[2][d])
			tr.DyT[d][k] = (1-xi)*(c[2][d]-c[0][d]) + xi*(c[3][d]-c[1][d])
		}
		tr.J[k] = tr.DxT[0][k]*tr.DyT[1][k] - tr.DxT[1][k]*tr.DyT[0][k]
		tr.X[k] = (1-xi)*(1-eta)*c[0][0] + xi*(1-eta)*c[1][0] + (1-xi)*eta*c[2][0] + xi*eta*c[3][0]
		tr.Y[k] = (1-xi)*(1-eta)*c[0][1] + xi*(1-eta)*c[1][1] + (1-xi)*eta*c[2][1] + xi*eta*c[3][1]
	}
	return tr
}

// GradJ converts reference derivatives (fxi, feta) into J-scaled physical
// derivatives through the cofactor identity
//
//	J ∂x f = ∂y/∂η f_ξ - ∂y/∂ξ f_η
//	J ∂y f = ∂x/∂ξ f_η - ∂x/∂η f_ξ
func (tr *Transform) GradJ(fxi, feta, jdx, jdy []float64) {
	for k := range tr.J {
		jdx[k] = tr.DyT[1][k]*fxi[k] - tr.DxT[1][k]*feta[k]
		jdy[k] = tr.DxT[0][k]*feta[k] - tr.DyT[0][k]*fxi[k]
	}
}
