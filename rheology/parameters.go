package rheology

import (
	"errors"
	"fmt"
)

// VPParameters configures the viscous-plastic (mEVP) rheology and the drag
// laws of the momentum equation. Values are never mutated after a run
// starts; solvers receive them by value.
type VPParameters struct {
	RhoIce   float64 `toml:"rho_ice"`   // kg/m³
	RhoAtm   float64 `toml:"rho_atm"`   // kg/m³
	RhoOcean float64 `toml:"rho_ocean"` // kg/m³
	CAtm     float64 `toml:"c_atm"`     // air drag coefficient
	COcean   float64 `toml:"c_ocean"`   // ocean drag coefficient

	Pstar        float64 `toml:"pstar"`         // ice strength, N/m²
	Fc           float64 `toml:"fc"`            // Coriolis parameter, 1/s
	DeltaMin     float64 `toml:"delta_min"`     // viscous regime threshold, 1/s
	EllipseRatio float64 `toml:"ellipse_ratio"` // e of the elliptic yield curve
	Compaction   float64 `toml:"compaction"`    // C in exp(-C(1-A))
}

// FAtm is the effective atmospheric drag factor C_atm·ρ_atm
func (p VPParameters) FAtm() float64 { return p.CAtm * p.RhoAtm }

// FOcean is the effective ocean drag factor C_ocean·ρ_ocean
func (p VPParameters) FOcean() float64 { return p.COcean * p.RhoOcean }

// DefaultVPParameters are the values of the Mehlmann box benchmark
func DefaultVPParameters() VPParameters {
	return VPParameters{
		RhoIce:       900.0,
		RhoAtm:       1.3,
		RhoOcean:     1026.0,
		CAtm:         1.2e-3,
		COcean:       5.5e-3,
		Pstar:        27500.0,
		Fc:           1.46e-4,
		DeltaMin:     2.e-9,
		EllipseRatio: 2.0,
		Compaction:   20.0,
	}
}

var ErrParameter = errors.New("rheology: invalid parameter")

func (p VPParameters) Validate() error {
	switch {
	case p.RhoIce <= 0 || p.RhoAtm <= 0 || p.RhoOcean <= 0:
		return fmt.Errorf("%w: densities must be positive", ErrParameter)
	case p.CAtm < 0 || p.COcean < 0:
		return fmt.Errorf("%w: drag coefficients must not be negative", ErrParameter)
	case p.Pstar < 0:
		return fmt.Errorf("%w: pstar = %g", ErrParameter, p.Pstar)
	case p.DeltaMin <= 0:
		return fmt.Errorf("%w: delta_min must be positive", ErrParameter)
	case p.EllipseRatio <= 0:
		return fmt.Errorf("%w: ellipse_ratio must be positive", ErrParameter)
	}
	return nil
}

// MEBParameters configures the Maxwell elasto-brittle rheology. Stresses are
// vertically integrated, so moduli and strengths are scaled by thickness.
type MEBParameters struct {
	RhoIce   float64 `toml:"rho_ice"`
	RhoAtm   float64 `toml:"rho_atm"`
	RhoOcean float64 `toml:"rho_ocean"`
	CAtm     float64 `toml:"c_atm"`
	COcean   float64 `toml:"c_ocean"`
	Fc       float64 `toml:"fc"`

	Young               float64 `toml:"young"`                // Young's modulus of undamaged ice, Pa
	Nu                  float64 `toml:"nu"`                   // Poisson ratio
	Lambda0             float64 `toml:"lambda0"`              // viscous relaxation time of undamaged ice, s
	Alpha               float64 `toml:"alpha"`                // damage exponent of the relaxation time
	Td                  float64 `toml:"td"`                   // damage time scale, s
	Cohesion            float64 `toml:"cohesion"`             // Pa
	Mu                  float64 `toml:"mu"`                   // internal friction coefficient
	CompressionStrength float64 `toml:"compression_strength"` // Pa
	Compaction          float64 `toml:"compaction"`           // C in exp(-C(1-A))
}

func (p MEBParameters) FAtm() float64   { return p.CAtm * p.RhoAtm }
func (p MEBParameters) FOcean() float64 { return p.COcean * p.RhoOcean }

func DefaultMEBParameters() MEBParameters {
	return MEBParameters{
		RhoIce:              900.0,
		RhoAtm:              1.3,
		RhoOcean:            1026.0,
		CAtm:                1.2e-3,
		COcean:              5.5e-3,
		Fc:                  1.46e-4,
		Young:               5.96e8,
		Nu:                  1. / 3.,
		Lambda0:             1.e7,
		Alpha:               5.0,
		Td:                  20.0,
		Cohesion:            1.e4,
		Mu:                  0.7,
		CompressionStrength: 1.e10,
		Compaction:          20.0,
	}
}

func (p MEBParameters) Validate() error {
	switch {
	case p.RhoIce <= 0 || p.RhoAtm <= 0 || p.RhoOcean <= 0:
		return fmt.Errorf("%w: densities must be positive", ErrParameter)
	case p.Young <= 0:
		return fmt.Errorf("%w: young = %g", ErrParameter, p.Young)
	case p.Nu < 0 || p.Nu >= 0.5:
		return fmt.Errorf("%w: nu = %g not in [0,0.5)", ErrParameter, p.Nu)
	case p.Lambda0 <= 0 || p.Td <= 0:
		return fmt.Errorf("%w: lambda0 and td must be positive", ErrParameter)
	case p.Cohesion < 0 || p.CompressionStrength <= 0:
		return fmt.Errorf("%w: strengths", ErrParameter)
	}
	return nil
}
