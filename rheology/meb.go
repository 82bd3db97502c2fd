package rheology

import "math"

// maxDamage keeps the relaxation time of fully damaged ice finite
const maxDamage = 1 - 1.e-12

// Stress advances the visco-elastic stress s = (s11,s12,s22) over dt under
// strain rate E, applies the Mohr-Coulomb damage criterion and returns the
// damage increment. h, a, d are thickness, concentration and damage at the
// point.
func (p MEBParameters) Stress(dt, h, a, d, e11, e12, e22 float64, s *[3]float64) (dd float64) {
	d = math.Min(math.Max(d, 0), maxDamage)
	var (
		mult       = math.Exp(-p.Compaction * (1 - a))
		elasticity = p.Young * h * (1 - d) * mult
		lambda     = p.Lambda0 * math.Pow(1-d, p.Alpha-1)
		k          = elasticity / (1 - p.Nu*p.Nu)
		relax      = 1 / (1 + dt/lambda)
	)
	s[0] = (s[0] + dt*k*(e11+p.Nu*e22)) * relax
	s[1] = (s[1] + dt*k*(1-p.Nu)*e12) * relax
	s[2] = (s[2] + dt*k*(p.Nu*e11+e22)) * relax

	var (
		sigmaN = 0.5 * (s[0] + s[2])
		tau    = math.Sqrt(0.25*(s[0]-s[2])*(s[0]-s[2]) + s[1]*s[1])
		c      = p.Cohesion * h
		pmax   = p.CompressionStrength * h
		dcrit  = 1.0
	)
	if q := tau + p.Mu*sigmaN; q > c {
		dcrit = c / q
	}
	if sigmaN < -pmax {
		dcrit = math.Min(dcrit, -pmax/sigmaN)
	}
	if dcrit >= 1 {
		return 0
	}
	rate := math.Min((1-dcrit)*dt/p.Td, 1)
	dd = (1 - d) * rate
	for i := range s {
		s[i] *= 1 - rate
	}
	return
}
