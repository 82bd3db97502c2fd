package transport

import (
	"fmt"
	"math"
)

// Step advances phi by dt with the configured Runge-Kutta scheme. Limiting
// is left to the caller. A non-finite result is reported as ErrDiverged.
func (t *DGTransport) Step(dt float64, phi []float64) error {
	if len(phi) != t.FieldLength() {
		panic(fmt.Sprintf("field length %d, want %d", len(phi), t.FieldLength()))
	}
	switch t.Scheme {
	case RK1:
		t.stepRK1(dt, phi)
	case RK2:
		t.stepRK2(dt, phi)
	case RK3:
		t.stepRK3(dt, phi)
	default:
		panic(fmt.Sprintf("unsupported scheme %s", t.Scheme))
	}
	for i, v := range phi {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coefficient %d of element %d is %v",
				ErrDiverged, i%t.Degree.NumCoeffs(), i/t.Degree.NumCoeffs(), v)
		}
	}
	return nil
}

func (t *DGTransport) stepRK1(dt float64, phi []float64) {
	t.Operator(dt, phi, t.tmp1)
	t.Combiner.Axpby(1, t.tmp1, 1, phi)
}

// stepRK2 is Heun's method
//
//	phi¹ = phi + k1,  phi ← phi¹ + ½(k2 - k1)
func (t *DGTransport) stepRK2(dt float64, phi []float64) {
	t.Operator(dt, phi, t.tmp1)
	t.Combiner.Axpby(1, t.tmp1, 1, phi)
	t.Operator(dt, phi, t.tmp2)
	t.Combiner.Axpby(0.5, t.tmp2, 1, phi)
	t.Combiner.Axpby(-0.5, t.tmp1, 1, phi)
}

// stepRK3 is the Shu-Osher form of the three stage SSP scheme
func (t *DGTransport) stepRK3(dt float64, phi []float64) {
	c := t.Combiner
	t.Operator(dt, phi, t.tmp1)
	c.Axpby(1, phi, 1, t.tmp1) // u1 = phi + L(phi)

	t.Operator(dt, t.tmp1, t.tmp2)
	c.Axpby(1, t.tmp1, 1, t.tmp2)
	c.Axpby(0.75, phi, 0.25, t.tmp2) // u2 = ¾phi + ¼(u1 + L(u1))

	t.Operator(dt, t.tmp2, t.tmp3)
	c.Axpby(1, t.tmp2, 1, t.tmp3)
	c.Axpby(2./3., t.tmp3, 1./3., phi) // phi = ⅓phi + ⅔(u2 + L(u2))
}
