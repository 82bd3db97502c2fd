package jacobi

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GQ computes the N+1 point Gauss-Jacobi quadrature on [-1,1] for weight
// (1-x)^alpha (1+x)^beta. Points are returned in ascending order.
func GQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{2.}
	}

	h1 := make([]float64, N+1)
	for i := range h1 {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: -(α²-β²)/((2i+α+β)(2i+α+β+2))
	d0 := make([]float64, N+1)
	fac := beta*beta - alpha*alpha
	for i := range d0 {
		d0[i] = fac / (h1[i] * (h1[i] + 2.))
	}
	if alpha+beta < 10*1.e-16 {
		d0[0] = 0.
	}

	d1 := make([]float64, N)
	for i := range d1 {
		ip1 := float64(i + 1)
		d1[i] = 2.0 / (h1[i] + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h1[i]+1)/(h1[i]+3),
		)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(symTriDiagonal(d0, d1), true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	VV := mat.NewDense(len(X), len(X), nil)
	eig.VectorsTo(VV)
	W = make([]float64, len(X))
	g0 := Gamma0(alpha, beta)
	for i := range W {
		v := VV.At(0, i)
		W[i] = v * v * g0
	}
	return X, W
}

// GL computes the N+1 Gauss-Lobatto points, the zeros of (1-x^2)P'_N(x).
func GL(alpha, beta float64, N int) []float64 {
	switch N {
	case 0:
		return []float64{0.0}
	case 1:
		return []float64{-1.0, 1.0}
	}
	xint, _ := GQ(alpha+1, beta+1, N-2)
	x := make([]float64, N+1)
	x[0] = -1.0
	copy(x[1:N], xint)
	x[N] = 1.0
	return x
}

// GaussLegendreUnit returns the n point Gauss-Legendre rule mapped to [0,1],
// weights summing to one.
func GaussLegendreUnit(n int) (X, W []float64) {
	if n < 1 {
		panic("quadrature needs at least one point")
	}
	X, W = GQ(0, 0, n-1)
	for i := range X {
		X[i] = 0.5 * (X[i] + 1)
		W[i] *= 0.5
	}
	return
}

func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1) * math.Gamma(beta+1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func Gamma1(alpha, beta float64) float64 {
	return (alpha + 1.) * (beta + 1.) * Gamma0(alpha, beta) / (alpha + beta + 3.0)
}

func symTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	dd := make([]float64, n*n)
	for i := 0; i < n; i++ {
		dd[i*n+i] = d0[i]
		if i < n-1 {
			dd[i*n+i+1] = d1[i]
			dd[(i+1)*n+i] = d1[i]
		}
	}
	return mat.NewSymDense(n, dd)
}
