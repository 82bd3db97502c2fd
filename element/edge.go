package element

// EdgeCoefficients restricts cell coefficients cv of degree d to side
// (0 bottom, 1 right, 2 top, 3 left) and writes the d.EdgeDOFs() edge basis
// coefficients of the trace into out.
func EdgeCoefficients(side int, d DGDegree, cv, out []float64) {
	var c [8]float64
	copy(c[:], cv[:d.NumCoeffs()])
	// sign of (x-½) or (y-½) on the edge
	sgn := -0.5
	if side == 1 || side == 2 {
		sgn = 0.5
	}
	var e [3]float64
	switch side {
	case 1, 3: // vertical edges, parameter y
		e[0] = c[0] + sgn*c[1] + c[3]/6
		e[1] = c[2] + sgn*c[5] + c[6]/6
		e[2] = c[4] + sgn*c[7]
	case 0, 2: // horizontal edges, parameter x
		e[0] = c[0] + sgn*c[2] + c[4]/6
		e[1] = c[1] + sgn*c[5] + c[7]/6
		e[2] = c[3] + sgn*c[6]
	default:
		panic("edge side out of range")
	}
	copy(out, e[:d.EdgeDOFs()])
}
