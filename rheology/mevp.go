package rheology

import "math"

// Delta is the deformation measure of the elliptic yield curve, bounded
// below by DeltaMin
func (p VPParameters) Delta(e11, e12, e22 float64) float64 {
	einv2 := 1 / (p.EllipseRatio * p.EllipseRatio)
	return math.Sqrt(p.DeltaMin*p.DeltaMin +
		(1+einv2)*(e11*e11+e22*e22) +
		4*einv2*e12*e12 +
		2*(1-einv2)*e11*e22)
}

// Pressure is the ice strength P = P*·H·exp(-C(1-A))
func (p VPParameters) Pressure(h, a float64) float64 {
	return p.Pstar * h * math.Exp(-p.Compaction*(1-a))
}

// Stress returns the viscous-plastic stress of strain rate E for ice of
// thickness h and concentration a
//
//	σ = 2η E + (ζ-η) tr(E) I - P/2 I,  ζ = P/(2Δ),  η = ζ/e²
func (p VPParameters) Stress(h, a, e11, e12, e22 float64) (s11, s12, s22 float64) {
	var (
		P    = p.Pressure(h, a)
		zeta = P / (2 * p.Delta(e11, e12, e22))
		eta  = zeta / (p.EllipseRatio * p.EllipseRatio)
		tr   = e11 + e22
	)
	s11 = 2*eta*e11 + (zeta-eta)*tr - 0.5*P
	s22 = 2*eta*e22 + (zeta-eta)*tr - 0.5*P
	s12 = 2 * eta * e12
	return
}

// Shear is the maximum shear strain rate
func Shear(e11, e12, e22 float64) float64 {
	return math.Sqrt((e11-e22)*(e11-e22) + 4*e12*e12)
}
