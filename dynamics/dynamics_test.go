package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/momentum"
	"github.com/notargets/DGSeaIce/partitions"
	"github.com/notargets/DGSeaIce/transport"
)

func closedBox(t *testing.T, n int, l float64) *mesh.ParametricMesh {
	t.Helper()
	m, err := mesh.RectangleMesh(n, n, l, l,
		mesh.WithDirichlet(mesh.Bottom, mesh.Right, mesh.Top, mesh.Left))
	require.NoError(t, err)
	return m
}

func constant(v float64) func(x, y float64) float64 {
	return func(_, _ float64) float64 { return v }
}

func TestParseRheology(t *testing.T) {
	for _, r := range []Rheology{MEVP, MEB} {
		got, err := ParseRheology(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRheology("evp")
	assert.Error(t, err)
}

func TestParseForcing(t *testing.T) {
	atm, ocn, err := ParseForcing("uniform", 3, -1)
	require.NoError(t, err)
	u, v := atm.Velocity(0, 1, 2)
	assert.Equal(t, [2]float64{3, -1}, [2]float64{u, v})
	u, v = ocn.Velocity(0, 1, 2)
	assert.Equal(t, [2]float64{0, 0}, [2]float64{u, v})

	atm, ocn, err = ParseForcing("Benchmark", 0, 0)
	require.NoError(t, err)
	assert.IsType(t, BenchmarkCyclone{}, atm)
	assert.IsType(t, BenchmarkOcean{}, ocn)

	_, _, err = ParseForcing("storm", 0, 0)
	assert.Error(t, err)
}

func TestBenchmarkForcing(t *testing.T) {
	ocn := NewBenchmarkOcean()
	u, v := ocn.Velocity(0, 0, 0)
	assert.InDelta(t, -0.01, u, 1.e-15)
	assert.InDelta(t, 0.01, v, 1.e-15)
	u, v = ocn.Velocity(0, BenchmarkLength/2, BenchmarkLength/2)
	assert.InDelta(t, 0, u, 1.e-15)
	assert.InDelta(t, 0, v, 1.e-15)

	atm := NewBenchmarkCyclone()
	u, v = atm.Velocity(0, BenchmarkLength/2, BenchmarkLength/2)
	assert.Equal(t, 0.0, u)
	assert.Equal(t, 0.0, v)

	// after one day the center has moved by L/10 along the diagonal
	c := 0.6 * BenchmarkLength
	u, v = atm.Velocity(secondsPerDay, c, c)
	assert.InDelta(t, 0, u, 1.e-12)
	assert.InDelta(t, 0, v, 1.e-12)

	// the wind points inward, rotated by 72°
	const d = 1.e5
	u, v = atm.Velocity(0, BenchmarkLength/2+d, BenchmarkLength/2)
	scale := math.E / 100 * math.Exp(-0.01e-3*d) * 1.e-3 * atm.VMax
	alpha := 72. / 180. * math.Pi
	assert.InDelta(t, -scale*math.Cos(alpha)*d, u, 1.e-12)
	assert.InDelta(t, scale*math.Sin(alpha)*d, v, 1.e-12)
}

func TestLimiter(t *testing.T) {
	layout := partitions.NewPartitionLayout(2, 1, 2, nil)
	lim := NewLimiter(element.DG1, layout)
	phi := []float64{
		0.9, 0.5, 0.3, // overshoots at the corners
		1.2, 0.1, 0.1, // mean above the bound
	}
	lim.LimitMax(phi, 1)
	assert.Equal(t, 0.9, phi[0])
	assert.Equal(t, []float64{1, 0, 0}, phi[3:])

	vals := make([]float64, 9)
	lim.table.Evaluate(phi[:3], vals)
	for _, v := range vals {
		assert.LessOrEqual(t, v, 1+1.e-14)
	}
	assert.InDelta(t, 0.3/0.5, phi[2]/phi[1], 1.e-14)

	phi = []float64{0.05, -0.4, 0, -0.3, 0.2, 0}
	lim.LimitMin(phi, 0)
	assert.Equal(t, 0.05, phi[0])
	assert.Equal(t, []float64{0, 0, 0}, phi[3:])
	lim.table.Evaluate(phi[:3], vals)
	for _, v := range vals {
		assert.GreaterOrEqual(t, v, -1.e-14)
	}

	dg0 := NewLimiter(element.DG0, layout)
	phi = []float64{-0.5, 0.25}
	dg0.LimitMin(phi, 0)
	assert.Equal(t, []float64{0, 0.25}, phi)
}

func TestDriverValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	cfg.Substeps = 0
	assert.Error(t, cfg.Validate())
	cfg = DefaultConfig()
	cfg.DG = element.DG2Plus
	assert.Error(t, cfg.Validate())
	cfg = DefaultConfig()
	cfg.VP.EllipseRatio = 0
	assert.Error(t, cfg.Validate())
}

func TestDriverRejectsPeriodic(t *testing.T) {
	m, err := mesh.RectangleMesh(4, 4, 1, 1, mesh.WithPeriodicX())
	require.NoError(t, err)
	_, err = NewDriver(m, DefaultConfig(), nil, nil, nil)
	assert.True(t, errors.Is(err, momentum.ErrPeriodicUnsupported))
}

func TestDriverUniformWind(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.CG = element.CG1
	cfg.Substeps = 50
	cfg.Parallel = 2
	d, err := NewDriver(closedBox(t, 4, 4e4), cfg, Uniform{U: 10}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "dynamics initialised", hook.Entries[0].Message)
	d.SetInitial(constant(0.5), constant(1))
	area0 := d.Diagnostics().IceArea
	assert.InDelta(t, 4e4*4e4, area0, 1.e-3)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Step(60))
	}
	assert.Equal(t, 5, d.Steps)
	assert.InDelta(t, 300, d.Time, 1.e-12)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Equal(t, 5, hook.LastEntry().Data["step"])

	diag := d.Diagnostics()
	assert.Greater(t, diag.MaxSpeed, 0.0)
	assert.Less(t, diag.MaxSpeed, 1.0)
	assert.Greater(t, diag.MaxDelta, 0.0)
	assert.LessOrEqual(t, diag.IceArea, area0*(1+1.e-12))
	nb := cfg.DG.NumCoeffs()
	for eid := 0; eid < d.Mesh.NumElements(); eid++ {
		assert.LessOrEqual(t, d.A[eid*nb], 1.0)
		assert.GreaterOrEqual(t, d.H[eid*nb], 0.0)
	}
	assert.Contains(t, diag.Fields(), "maxVel")
}

func TestDriverMEB(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CG = element.CG1
	cfg.DG = element.DG0
	cfg.Scheme = transport.RK1
	cfg.Rheology = MEB
	cfg.Substeps = 100
	logger, _ := test.NewNullLogger()
	d, err := NewDriver(closedBox(t, 4, 4e4), cfg, Uniform{U: 10, V: 5}, Uniform{}, logger)
	require.NoError(t, err)
	d.SetInitial(constant(1), constant(1))

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Step(60))
	}
	vx, _ := d.Velocity()
	assert.Same(t, &d.Momentum.AvgVX[0], &vx[0])
	diag := d.Diagnostics()
	assert.GreaterOrEqual(t, diag.MaxDamage, 0.0)
	assert.LessOrEqual(t, diag.MaxDamage, 1.0)
	assert.Greater(t, diag.MaxSpeed, 0.0)
}

func TestBenchmarkSteps(t *testing.T) {
	n := 8
	m := closedBox(t, n, BenchmarkLength)
	cfg := DefaultConfig()
	cfg.Substeps = 100
	logger, _ := test.NewNullLogger()
	d, err := NewDriver(m, cfg, NewBenchmarkCyclone(), NewBenchmarkOcean(), logger)
	require.NoError(t, err)
	d.SetInitial(BenchmarkThickness, constant(1))
	vol0 := d.Diagnostics().IceVolume
	for i := 0; i < 4; i++ {
		require.NoError(t, d.Step(120))
	}
	diag := d.Diagnostics()
	assert.Greater(t, diag.MaxSpeed, 0.0)
	assert.Less(t, diag.MaxSpeed, 1.0)
	assert.InDelta(t, vol0, diag.IceVolume, 1.e-3*vol0)
}

func TestStepReportsDivergence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CG = element.CG1
	cfg.Substeps = 2
	logger, _ := test.NewNullLogger()
	d, err := NewDriver(closedBox(t, 2, 1e4), cfg, nil, nil, logger)
	require.NoError(t, err)
	d.SetInitial(constant(1), constant(1))
	d.H[3] = math.NaN()
	err = d.Step(60)
	assert.True(t, errors.Is(err, ErrDiverged))
	assert.True(t, errors.Is(err, transport.ErrDiverged))
	assert.Equal(t, 0, d.Steps)
}
