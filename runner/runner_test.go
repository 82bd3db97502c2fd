package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/transport"
	"github.com/notargets/DGSeaIce/utils"
)

func TestNewRunnerPartitions(t *testing.T) {
	for _, n := range []int{1, 1023, 1024, 1025, 5000} {
		kr := NewRunner(nil, n)
		assert.LessOrEqual(t, kr.KpartMax, innerLimit)
		assert.GreaterOrEqual(t, kr.NPart*kr.KpartMax, n)
		assert.Less(t, (kr.NPart-1)*kr.KpartMax, n)
	}
	assert.Contains(t, NewRunner(nil, 2048).GeneratePreamble(), "#define KpartMax 1024\n")
	assert.Panics(t, func() { NewRunner(nil, 0) })
}

func TestOCCACombiner(t *testing.T) {
	device, err := utils.CreateDevice("serial")
	if err != nil {
		t.Skipf("no OCCA device: %v", err)
	}
	defer device.Free()
	c := NewOCCACombiner(device)
	defer c.Free()

	for _, n := range []int{7, 3000} {
		x := make([]float64, n)
		y := make([]float64, n)
		for i := range x {
			x[i], y[i] = float64(i), 1
		}
		c.Axpby(2, x, -1, y)
		for i := range y {
			require.Equal(t, 2*float64(i)-1, y[i])
		}
	}
}

func TestOCCACombinerTransport(t *testing.T) {
	device, err := utils.CreateDevice("serial")
	if err != nil {
		t.Skipf("no OCCA device: %v", err)
	}
	defer device.Free()
	c := NewOCCACombiner(device)
	defer c.Free()

	m, err := mesh.RectangleMesh(4, 4, 1, 1, mesh.WithPeriodicX(), mesh.WithPeriodicY())
	require.NoError(t, err)
	run := func(tp *transport.DGTransport) []float64 {
		nb := tp.Degree.NumCoeffs()
		vx := make([]float64, tp.FieldLength())
		vy := make([]float64, tp.FieldLength())
		phi := make([]float64, tp.FieldLength())
		for eid := 0; eid < m.NumElements(); eid++ {
			vx[eid*nb], vy[eid*nb] = 1, 0.5
			phi[eid*nb] = float64(eid % 3)
		}
		tp.SetVelocityDG(vx, vy)
		for i := 0; i < 3; i++ {
			require.NoError(t, tp.Step(0.02, phi))
		}
		return phi
	}
	cpu := transport.NewDGTransport(m, element.DG1, transport.RK3, element.Precomputed, 1)
	dev := transport.NewDGTransport(m, element.DG1, transport.RK3, element.Precomputed, 1)
	dev.Combiner = c
	assert.InDeltaSlice(t, run(cpu), run(dev), 1.e-14)
}
