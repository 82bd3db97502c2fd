package dynamics

import (
	"fmt"
	"math"
	"strings"
)

// Forcing is a time dependent velocity field
type Forcing interface {
	Velocity(t, x, y float64) (u, v float64)
}

// Uniform is constant in space and time
type Uniform struct {
	U, V float64
}

func (f Uniform) Velocity(_, _, _ float64) (u, v float64) { return f.U, f.V }

const (
	BenchmarkLength = 512000.0 // domain size of the cyclone benchmark, m
	secondsPerDay   = 86400.0
)

// BenchmarkCyclone is the wind of a cyclone crossing the square [0,L]² on
// its diagonal, moving L/10 per day from the domain center. The wind
// converges toward the center at 72° and decays with distance.
type BenchmarkCyclone struct {
	L    float64
	VMax float64
}

func NewBenchmarkCyclone() BenchmarkCyclone {
	return BenchmarkCyclone{L: BenchmarkLength, VMax: 30 / math.E}
}

func (f BenchmarkCyclone) Velocity(t, x, y float64) (u, v float64) {
	var (
		cM    = f.L/2 + f.L/10*t/secondsPerDay
		dx    = x - cM
		dy    = y - cM
		scale = math.E / 100 * math.Exp(-0.01e-3*math.Hypot(dx, dy)) * 1.e-3
		alpha = 72. / 180. * math.Pi
	)
	sa, ca := math.Sincos(alpha)
	u = -scale * f.VMax * (ca*dx + sa*dy)
	v = -scale * f.VMax * (-sa*dx + ca*dy)
	return
}

// BenchmarkOcean is the stationary clockwise gyre of the cyclone benchmark
type BenchmarkOcean struct {
	L    float64
	VMax float64
}

func NewBenchmarkOcean() BenchmarkOcean {
	return BenchmarkOcean{L: BenchmarkLength, VMax: 0.01}
}

func (f BenchmarkOcean) Velocity(_, x, y float64) (u, v float64) {
	return f.VMax * (2*y/f.L - 1), f.VMax * (1 - 2*x/f.L)
}

// BenchmarkThickness is the initial ice thickness of the cyclone benchmark
func BenchmarkThickness(x, y float64) float64 {
	return 0.3 + 0.005*(math.Sin(6.e-5*x)+math.Sin(3.e-5*y))
}

// ParseForcing maps a forcing name to the atmosphere and ocean fields:
// "benchmark" for the moving cyclone over the ocean gyre, "uniform" for a
// constant wind (u, v) over ocean at rest, "none" for no forcing at all.
func ParseForcing(name string, u, v float64) (atm, ocean Forcing, err error) {
	switch strings.ToLower(name) {
	case "benchmark":
		return NewBenchmarkCyclone(), NewBenchmarkOcean(), nil
	case "uniform":
		return Uniform{U: u, V: v}, Uniform{}, nil
	case "none":
		return Uniform{}, Uniform{}, nil
	}
	return nil, nil, fmt.Errorf("unknown forcing %q, want benchmark, uniform or none", name)
}
