package jacobi

import "math"

// P evaluates the orthonormal Jacobi polynomial P_n^(alpha,beta) at x.
func P(x []float64, alpha, beta float64, n int) []float64 {
	var (
		Np    = len(x)
		pm1   = make([]float64, Np)
		p     = make([]float64, Np)
		g0    = Gamma0(alpha, beta)
		g1    = Gamma1(alpha, beta)
		alpb  = alpha + beta
		aold  float64
		pnext = make([]float64, Np)
	)
	for i := range pm1 {
		pm1[i] = 1.0 / math.Sqrt(g0)
	}
	if n == 0 {
		return pm1
	}
	for i := range p {
		p[i] = ((alpb+2)*x[i]/2 + (alpha-beta)/2) / math.Sqrt(g1)
	}
	if n == 1 {
		return p
	}

	aold = 2.0 / (2.0 + alpb) * math.Sqrt((alpha+1)*(beta+1)/(alpb+3))
	for i := 1; i < n; i++ {
		fi := float64(i)
		h1 := 2*fi + alpb
		anew := 2.0 / (h1 + 2) * math.Sqrt((fi+1)*(fi+1+alpb)*
			(fi+1+alpha)*(fi+1+beta)/(h1+1)/(h1+3))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2)
		for j := range pnext {
			pnext[j] = (-aold*pm1[j] + (x[j]-bnew)*p[j]) / anew
		}
		pm1, p, pnext = p, pnext, pm1
		aold = anew
	}
	return p
}

// GradP evaluates d/dx of the orthonormal Jacobi polynomial of order n.
func GradP(x []float64, alpha, beta float64, n int) []float64 {
	dP := make([]float64, len(x))
	if n == 0 {
		return dP
	}
	fn := float64(n)
	pt := P(x, alpha+1, beta+1, n-1)
	for i := range dP {
		dP[i] = math.Sqrt(fn*(fn+alpha+beta+1)) * pt[i]
	}
	return dP
}
