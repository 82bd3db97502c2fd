package rheology

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVPStressAtRest(t *testing.T) {
	p := DefaultVPParameters()
	assert.InDelta(t, p.DeltaMin, p.Delta(0, 0, 0), 1.e-24)
	P := p.Pressure(0.3, 1.0)
	assert.InDelta(t, 27500*0.3, P, 1.e-10)
	s11, s12, s22 := p.Stress(0.3, 1.0, 0, 0, 0)
	assert.InDelta(t, -0.5*P, s11, 1.e-10)
	assert.InDelta(t, -0.5*P, s22, 1.e-10)
	assert.Equal(t, 0.0, s12)
	assert.InDelta(t, 1.3*1.2e-3, p.FAtm(), 1.e-15)
	assert.InDelta(t, 1026*5.5e-3, p.FOcean(), 1.e-12)
}

func TestVPStressPlasticShear(t *testing.T) {
	p := DefaultVPParameters()
	P := p.Pressure(1, 1)
	// pure shear far above DeltaMin sits on the yield curve, σ12 = P/(2e)
	_, s12, _ := p.Stress(1, 1, 0, 1.e-5, 0)
	assert.InDelta(t, P/(2*p.EllipseRatio), s12, 1.e-6*P)
	// concentration loss weakens the ice
	assert.Less(t, p.Pressure(1, 0.9), P)
}

func TestVPDeltaMatchesShearForm(t *testing.T) {
	p := DefaultVPParameters()
	e11, e12, e22 := 1.e-6, -2.e-6, 3.e-7
	div := e11 + e22
	sh := Shear(e11, e12, e22)
	// Δ² = Δmin² + div² + sh²/e²
	want := math.Sqrt(p.DeltaMin*p.DeltaMin + div*div + sh*sh/4)
	assert.InDelta(t, want, p.Delta(e11, e12, e22), 1.e-18)
}

func TestMEBElasticLoading(t *testing.T) {
	p := DefaultMEBParameters()
	p.Cohesion = 1.e12 // no damage
	var s [3]float64
	dt, e11, e22 := 1.0, 1.e-9, 0.0
	dd := p.Stress(dt, 1, 1, 0, e11, 0, e22, &s)
	assert.Equal(t, 0.0, dd)
	k := p.Young / (1 - p.Nu*p.Nu)
	relax := 1 / (1 + dt/p.Lambda0)
	assert.InDelta(t, dt*k*e11*relax, s[0], 1.e-12)
	assert.InDelta(t, dt*k*p.Nu*e11*relax, s[2], 1.e-12)
	assert.Equal(t, 0.0, s[1])
}

func TestMEBDamage(t *testing.T) {
	p := DefaultMEBParameters()
	var s [3]float64
	s[1] = 1.e5 // strong shear stress, beyond cohesion 1e4·h
	d := 0.2
	dd := p.Stress(1.0, 1, 1, d, 0, 0, 0, &s)
	require.Greater(t, dd, 0.0)
	assert.LessOrEqual(t, dd, 1-d)
	assert.Less(t, s[1], 1.e5)

	// compressive failure
	var c [3]float64
	c[0], c[2] = -1.e11, -1.e11
	p.Cohesion = 1.e12
	assert.Greater(t, p.Stress(1.0, 1, 1, 0, 0, 0, 0, &c), 0.0)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
[mevp]
pstar = 30000.0
fc = 0.0

[meb]
td = 40.0
`))
	require.NoError(t, err)
	assert.Equal(t, 30000.0, cfg.MEVP.Pstar)
	assert.Equal(t, 0.0, cfg.MEVP.Fc)
	assert.Equal(t, 900.0, cfg.MEVP.RhoIce)
	assert.Equal(t, 40.0, cfg.MEB.Td)
	assert.Equal(t, DefaultMEBParameters().Young, cfg.MEB.Young)

	_, err = LoadConfig(strings.NewReader("[mevp]\npstr = 1.0\n"))
	assert.True(t, errors.Is(err, ErrParameter), "unknown key: %v", err)

	_, err = LoadConfig(strings.NewReader("[meb]\nnu = 0.7\n"))
	assert.True(t, errors.Is(err, ErrParameter), "invalid value: %v", err)

	_, err = LoadConfig(strings.NewReader("[mevp\n"))
	assert.Error(t, err)
}
