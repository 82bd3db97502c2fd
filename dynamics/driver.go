package dynamics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/momentum"
	"github.com/notargets/DGSeaIce/rheology"
	"github.com/notargets/DGSeaIce/transport"
)

var ErrDiverged = errors.New("dynamics: simulation diverged")

// Rheology selects the subcycled momentum solver
type Rheology uint8

const (
	MEVP Rheology = iota
	MEB
)

func (r Rheology) String() string {
	if r == MEB {
		return "meb"
	}
	return "mevp"
}

func ParseRheology(name string) (Rheology, error) {
	switch strings.ToLower(name) {
	case "mevp":
		return MEVP, nil
	case "meb":
		return MEB, nil
	}
	return MEVP, fmt.Errorf("unknown rheology %q, want mevp or meb", name)
}

// Config holds the discretisation and the physical parameters of a Driver
type Config struct {
	CG       element.CGDegree
	DG       element.DGDegree
	Scheme   transport.Scheme
	Rheology Rheology
	Mode     element.TransformMode
	Parallel int // goroutines per parallel loop, < 1 for GOMAXPROCS

	Substeps    int     // mEVP iterations or MEB substeps per time step
	Alpha, Beta float64 // mEVP relaxation

	VP  rheology.VPParameters
	MEB rheology.MEBParameters
}

// DefaultConfig is the setup of the cyclone benchmark
func DefaultConfig() Config {
	params := rheology.DefaultConfig()
	return Config{
		CG:       element.CG2,
		DG:       element.DG1,
		Scheme:   transport.RK2,
		Rheology: MEVP,
		Mode:     element.Precomputed,
		Substeps: 200,
		Alpha:    800,
		Beta:     800,
		VP:       params.MEVP,
		MEB:      params.MEB,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Substeps < 1:
		return fmt.Errorf("substeps = %d, want >= 1", c.Substeps)
	case c.Rheology == MEVP && (c.Alpha <= 0 || c.Beta <= 0):
		return fmt.Errorf("mEVP relaxation alpha = %g, beta = %g, want > 0", c.Alpha, c.Beta)
	case c.DG > element.DG2:
		return fmt.Errorf("advected fields of degree %s are not supported", c.DG)
	}
	if c.Rheology == MEB {
		return c.MEB.Validate()
	}
	return c.VP.Validate()
}

// Driver advances the ice state by macro time steps: advection of the ice
// fields with the current velocity, limiting, then the momentum subcycle
// on the advected state
type Driver struct {
	Mesh      *mesh.ParametricMesh
	Cfg       Config
	Momentum  *momentum.CGMomentum
	Transport *transport.DGTransport
	Limiter   *Limiter

	Atmosphere, Ocean Forcing

	H, A, D []float64 // ice thickness, concentration, damage

	Time  float64
	Steps int

	log logrus.FieldLogger
}

// NewDriver builds the solvers on m. A nil log uses the standard logger.
func NewDriver(m *mesh.ParametricMesh, cfg Config, atm, ocean Forcing, log logrus.FieldLogger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	mom, err := momentum.NewCGMomentum(m, cfg.CG, cfg.Mode, cfg.Parallel)
	if err != nil {
		return nil, err
	}
	tr := transport.NewDGTransport(m, cfg.DG, cfg.Scheme, cfg.Mode, cfg.Parallel)
	n := tr.FieldLength()
	d := &Driver{
		Mesh:       m,
		Cfg:        cfg,
		Momentum:   mom,
		Transport:  tr,
		Limiter:    NewLimiter(cfg.DG, tr.Layout),
		Atmosphere: atm,
		Ocean:      ocean,
		H:          make([]float64, n),
		A:          make([]float64, n),
		D:          make([]float64, n),
		log:        log,
	}
	d.setForcing(0)
	log.WithFields(logrus.Fields{
		"rheology":  cfg.Rheology,
		"velocity":  cfg.CG,
		"transport": cfg.DG,
		"scheme":    cfg.Scheme,
		"substeps":  cfg.Substeps,
		"ice":       m.NumIce(),
		"workers":   mom.Layout.NumPartitions,
	}).Info("dynamics initialised")
	return d, nil
}

// SetInitial projects the initial thickness and concentration. Damage
// starts at zero.
func (d *Driver) SetInitial(h, a func(x, y float64) float64) {
	ip := d.Momentum.Interp
	ip.FunctionToDG(d.Cfg.DG, h, d.H)
	ip.FunctionToDG(d.Cfg.DG, a, d.A)
	clear(d.D)
}

func (d *Driver) ice() momentum.IceFields {
	ice := momentum.IceFields{Degree: d.Cfg.DG, H: d.H, A: d.A}
	if d.Cfg.Rheology == MEB {
		ice.D = d.D
	}
	return ice
}

// setForcing samples wind and ocean at the CG nodes at time t
func (d *Driver) setForcing(t float64) {
	var (
		mom = d.Momentum
		ip  = mom.Interp
	)
	sample := func(f Forcing, u, v []float64) {
		if f == nil {
			clear(u)
			clear(v)
			return
		}
		ip.FunctionToCG(func(x, y float64) float64 { u, _ := f.Velocity(t, x, y); return u }, u)
		ip.FunctionToCG(func(x, y float64) float64 { _, v := f.Velocity(t, x, y); return v }, v)
	}
	sample(d.Atmosphere, mom.AX, mom.AY)
	sample(d.Ocean, mom.OX, mom.OY)
}

// Velocity returns the CG velocity of the last macro step, the substep
// average for MEB
func (d *Driver) Velocity() (vx, vy []float64) {
	if d.Cfg.Rheology == MEB && d.Steps > 0 {
		return d.Momentum.AvgVX, d.Momentum.AvgVY
	}
	return d.Momentum.VX, d.Momentum.VY
}

// Step advances the state by dt. The forcing is evaluated at the end of the
// step. Non-finite values stop the step with ErrDiverged and leave the state
// as it was at the failure.
func (d *Driver) Step(dt float64) error {
	t := d.Time + dt
	d.setForcing(t)

	vx, vy := d.Velocity()
	d.Transport.PrepareAdvection(d.Momentum.Interp, vx, vy)
	names, fields := []string{"A", "H"}, [][]float64{d.A, d.H}
	if d.Cfg.Rheology == MEB {
		names, fields = append(names, "D"), append(fields, d.D)
	}
	for i, phi := range fields {
		if err := d.Transport.Step(dt, phi); err != nil {
			return fmt.Errorf("%w: step %d advection of %s: %w", ErrDiverged, d.Steps+1, names[i], err)
		}
	}

	d.Limiter.LimitMax(d.A, 1)
	d.Limiter.LimitMin(d.A, 0)
	d.Limiter.LimitMin(d.H, 0)
	if d.Cfg.Rheology == MEB {
		d.Limiter.LimitMax(d.D, 1)
		d.Limiter.LimitMin(d.D, 0)
	}

	var err error
	switch d.Cfg.Rheology {
	case MEVP:
		err = d.Momentum.SubcycleMEVP(d.Cfg.VP, d.Cfg.Substeps, d.Cfg.Alpha, d.Cfg.Beta, dt, d.ice())
	case MEB:
		err = d.Momentum.SubcycleMEB(d.Cfg.MEB, d.Cfg.Substeps, dt, d.ice())
	}
	if err != nil {
		return fmt.Errorf("%w: step %d: %w", ErrDiverged, d.Steps+1, err)
	}
	d.Time = t
	d.Steps++
	d.log.WithFields(logrus.Fields{
		"step":   d.Steps,
		"time":   d.Time,
		"maxVel": d.Momentum.MaxSpeed(),
	}).Debug("time step")
	return nil
}

// Diagnostics summarises the state after a step
type Diagnostics struct {
	Time      float64
	Step      int
	MaxSpeed  float64
	IceVolume float64 // ∫H
	IceArea   float64 // ∫A
	MaxDelta  float64 // largest element deformation measure, mEVP
	MaxDamage float64 // largest element mean damage, MEB
}

func (d *Driver) Diagnostics() Diagnostics {
	diag := Diagnostics{
		Time:      d.Time,
		Step:      d.Steps,
		MaxSpeed:  d.Momentum.MaxSpeed(),
		IceVolume: d.Transport.Mass(d.H),
		IceArea:   d.Transport.Mass(d.A),
	}
	switch d.Cfg.Rheology {
	case MEVP:
		diag.MaxDelta = floats.Max(d.Momentum.Delta(d.Cfg.VP))
	case MEB:
		nb := d.Cfg.DG.NumCoeffs()
		means := make([]float64, d.Mesh.NumElements())
		for eid := range means {
			means[eid] = d.D[eid*nb]
		}
		diag.MaxDamage = floats.Max(means)
	}
	return diag
}

// Fields returns the diagnostics as structured log fields
func (diag Diagnostics) Fields() logrus.Fields {
	return logrus.Fields{
		"step":      diag.Step,
		"time":      diag.Time,
		"maxVel":    diag.MaxSpeed,
		"volume":    diag.IceVolume,
		"area":      diag.IceArea,
		"maxDelta":  diag.MaxDelta,
		"maxDamage": diag.MaxDamage,
	}
}
