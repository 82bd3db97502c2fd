package transport

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/interpolation"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/partitions"
)

func constantVelocity(t *DGTransport, vx, vy float64) {
	nb := t.Degree.NumCoeffs()
	cx := make([]float64, t.FieldLength())
	cy := make([]float64, t.FieldLength())
	for eid := 0; eid < t.Mesh.NumElements(); eid++ {
		cx[eid*nb], cy[eid*nb] = vx, vy
	}
	t.SetVelocityDG(cx, cy)
}

func randomField(rng *rand.Rand, n int) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = rng.Float64() - 0.5
	}
	return f
}

func TestParseScheme(t *testing.T) {
	for _, s := range []Scheme{RK1, RK2, RK3} {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseScheme("rk4")
	assert.Error(t, err)
}

func TestCPUCombiner(t *testing.T) {
	c := CPUCombiner{Layout: partitions.NewPartitionLayout(3, 3, 3, nil)}
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	y := []float64{1, 1, 1, 1, 1, 1, 1}
	c.Axpby(2, x, -1, y)
	assert.Equal(t, []float64{1, 3, 5, 7, 9, 11, 13}, y)
}

func TestUniformNormalVelocity(t *testing.T) {
	m, err := mesh.RectangleMesh(3, 4, 3, 2)
	require.NoError(t, err)
	tp := NewDGTransport(m, element.DG1, RK2, element.Precomputed, 2)
	constantVelocity(tp, 2, -1)
	ned := element.DG1.EdgeDOFs()
	for e := 0; e < m.NumEdgesY(); e++ {
		assert.InDelta(t, 0.5*2, tp.NormalY[e*ned], 1.e-14, "y-edge %d", e)
		assert.InDelta(t, 0, tp.NormalY[e*ned+1], 1.e-14)
	}
	for e := 0; e < m.NumEdgesX(); e++ {
		assert.InDelta(t, 1*(-1), tp.NormalX[e*ned], 1.e-14, "x-edge %d", e)
		assert.InDelta(t, 0, tp.NormalX[e*ned+1], 1.e-14)
	}
}

func TestReconstructIdempotent(t *testing.T) {
	m, err := mesh.RectangleMesh(5, 4, 1, 1, mesh.WithPeriodicX(),
		mesh.WithDistortion(func(x, y float64) (float64, float64) { return x + 0.1*y*y, y + 0.05*x }))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))
	tp := NewDGTransport(m, element.DG2, RK2, element.Precomputed, 3)
	tp.SetVelocityDG(randomField(rng, tp.FieldLength()), randomField(rng, tp.FieldLength()))
	nx := append([]float64(nil), tp.NormalX...)
	ny := append([]float64(nil), tp.NormalY...)
	tp.ReconstructEdgeNormalVelocity()
	assert.Equal(t, nx, tp.NormalX)
	assert.Equal(t, ny, tp.NormalY)
}

func TestUpwindStep(t *testing.T) {
	m, err := mesh.RectangleMesh(2, 1, 2, 1)
	require.NoError(t, err)
	const dt = 0.1
	tp := NewDGTransport(m, element.DG0, RK1, element.Precomputed, 1)
	constantVelocity(tp, 1, 0)
	phi := []float64{1, 0}
	require.NoError(t, tp.Step(dt, phi))
	// the upstream cell loses dt·v·phi_up through the shared edge, the
	// downstream cell gains it, and nothing enters through the left side
	assert.InDelta(t, 1-dt, phi[0], 1.e-15)
	assert.InDelta(t, dt, phi[1], 1.e-15)

	for _, s := range []Scheme{RK2, RK3} {
		tp.Scheme = s
		phi := []float64{1, 0}
		require.NoError(t, tp.Step(dt, phi))
		assert.Less(t, phi[0], 1.0)
		assert.Greater(t, phi[1], 0.0)
	}
}

func TestUpwindStepReversed(t *testing.T) {
	m, err := mesh.RectangleMesh(1, 2, 1, 2)
	require.NoError(t, err)
	tp := NewDGTransport(m, element.DG1, RK1, element.Precomputed, 1)
	constantVelocity(tp, 0, -1)
	phi := make([]float64, tp.FieldLength())
	phi[3] = 1 // mean of the upper cell
	require.NoError(t, tp.Step(0.05, phi))
	assert.Greater(t, phi[0], 0.0)
	assert.Less(t, phi[3], 1.0)
}

func TestMassConservation(t *testing.T) {
	m, err := mesh.RectangleMesh(6, 5, 1, 1, mesh.WithPeriodicX(), mesh.WithPeriodicY(),
		mesh.WithDistortion(func(x, y float64) (float64, float64) {
			return x + 0.03*math.Sin(2*math.Pi*y), y + 0.03*math.Sin(2*math.Pi*x)
		}))
	require.NoError(t, err)
	for _, d := range []element.DGDegree{element.DG0, element.DG1, element.DG2} {
		for _, s := range []Scheme{RK1, RK2, RK3} {
			t.Run(d.String()+"/"+s.String(), func(t *testing.T) {
				rng := rand.New(rand.NewSource(11))
				tp := NewDGTransport(m, d, s, element.OnTheFly, 2)
				tp.SetVelocityDG(randomField(rng, tp.FieldLength()), randomField(rng, tp.FieldLength()))
				phi := randomField(rng, tp.FieldLength())
				before := tp.Mass(phi)
				for i := 0; i < 5; i++ {
					require.NoError(t, tp.Step(0.01, phi))
				}
				assert.InDelta(t, before, tp.Mass(phi), 1.e-13)
			})
		}
	}
}

func TestTranslationConvergence(t *testing.T) {
	bump := func(x, _ float64) float64 { return math.Exp(math.Cos(2*math.Pi*x) - 1) }
	l2Error := func(nx int) float64 {
		m, err := mesh.RectangleMesh(nx, 2, 1, 0.25, mesh.WithPeriodicX())
		require.NoError(t, err)
		tp := NewDGTransport(m, element.DG2, RK3, element.Precomputed, 0)
		ip := interpolation.NewInterpolator(m, element.CG1, element.Precomputed, tp.Layout)
		phi := make([]float64, tp.FieldLength())
		ip.FunctionToDG(element.DG2, bump, phi)
		constantVelocity(tp, 1, 0)

		steps := 10 * nx
		dt := 1 / float64(steps)
		for i := 0; i < steps; i++ {
			require.NoError(t, tp.Step(dt, phi))
		}

		var (
			bt   = tp.Geom.Tables[element.DG2]
			vals = make([]float64, bt.NQ)
			sum  float64
		)
		for eid := 0; eid < m.NumElements(); eid++ {
			tr := tp.Geom.Transform(eid)
			bt.Evaluate(phi[eid*6:(eid+1)*6], vals)
			for k, v := range vals {
				e := v - bump(tr.X[k], tr.Y[k])
				sum += tp.Geom.Quad.W[k] * tr.J[k] * e * e
			}
		}
		return math.Sqrt(sum)
	}
	coarse, fine := l2Error(12), l2Error(24)
	assert.Less(t, coarse, 1.e-2)
	assert.Greater(t, coarse/fine, 4.0, "errors %g, %g", coarse, fine)
}

func TestStepDetectsNonFinite(t *testing.T) {
	m, err := mesh.RectangleMesh(2, 2, 1, 1)
	require.NoError(t, err)
	tp := NewDGTransport(m, element.DG1, RK2, element.Precomputed, 1)
	constantVelocity(tp, 1, 1)
	phi := make([]float64, tp.FieldLength())
	phi[4] = math.NaN()
	assert.True(t, errors.Is(tp.Step(0.1, phi), ErrDiverged))
}

func TestUnsupportedDegreePanics(t *testing.T) {
	m, err := mesh.RectangleMesh(2, 2, 1, 1)
	require.NoError(t, err)
	assert.Panics(t, func() { NewDGTransport(m, element.DG2Plus, RK1, element.Precomputed, 1) })
}
