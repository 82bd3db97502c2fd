package momentum

import (
	"fmt"
	"math"

	"github.com/notargets/DGSeaIce/rheology"
)

// assembleStress recomputes the stress divergence force into tmpX, tmpY
func (cgm *CGMomentum) assembleStress() {
	clear(cgm.tmpX)
	clear(cgm.tmpY)
	cgm.AddStressDivergence(-1, cgm.tmpX, cgm.tmpY)
}

// MEVPStep is one mEVP pseudo time iteration. The drag coefficient of the
// ocean is evaluated at the current iterate while the stress divergence is
// explicit and divided by the lumped mass.
func (cgm *CGMomentum) MEVPStep(p rheology.VPParameters, alpha, beta, dt float64, ice IceFields) {
	cgm.ProjectVelocityToStrain()
	cgm.UpdateStressMEVP(p, ice, alpha)

	var (
		fatm = p.FAtm()
		focn = p.FOcean()
		n    = cgm.NumNodes()
		vx   = cgm.VX
		vy   = cgm.VY
	)
	implicit := func(i int, absocn float64) float64 {
		return p.RhoIce*cgm.CgH[i]/dt*(1+beta) + cgm.CgA[i]*focn*absocn
	}
	cgm.Layout.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var (
				rhoH   = p.RhoIce * cgm.CgH[i]
				a      = cgm.CgA[i]
				absatm = math.Hypot(cgm.AX[i], cgm.AY[i])
				absocn = math.Hypot(vx[i]-cgm.OX[i], vy[i]-cgm.OY[i])
				den    = implicit(i, absocn)
			)
			vx[i] = (rhoH/dt*(beta*vx[i]+cgm.VXmevp[i]) +
				a*(fatm*absatm*cgm.AX[i]+focn*absocn*cgm.OX[i]) +
				rhoH*p.Fc*(vy[i]-cgm.OY[i])) / den
			vy[i] = (rhoH/dt*(beta*vy[i]+cgm.VYmevp[i]) +
				a*(fatm*absatm*cgm.AY[i]+focn*absocn*cgm.OY[i]) +
				rhoH*p.Fc*(cgm.OX[i]-vx[i])) / den
		}
	})

	cgm.assembleStress()
	cgm.Layout.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			den := implicit(i, math.Hypot(vx[i]-cgm.OX[i], vy[i]-cgm.OY[i])) * cgm.lumped[i]
			vx[i] += cgm.tmpX[i] / den
			vy[i] += cgm.tmpY[i] / den
		}
	})

	cgm.ApplyDirichletZero()
	cgm.ApplyLandMask()
}

// SubcycleMEVP runs nt mEVP iterations over the time step dt
func (cgm *CGMomentum) SubcycleMEVP(p rheology.VPParameters, nt int, alpha, beta, dt float64, ice IceFields) error {
	cgm.PrepareIteration(ice)
	for it := 0; it < nt; it++ {
		cgm.MEVPStep(p, alpha, beta, dt, ice)
	}
	if err := cgm.CheckFinite(); err != nil {
		return fmt.Errorf("mEVP subcycle: %w", err)
	}
	return nil
}

// MEBStep is one of nt explicit MEB substeps of the time step dt. It updates
// the damage of ice in place and adds v/nt to the average velocity.
func (cgm *CGMomentum) MEBStep(p rheology.MEBParameters, nt int, dt float64, ice IceFields) {
	dtm := dt / float64(nt)
	cgm.ProjectVelocityToStrain()
	cgm.UpdateStressMEB(p, ice, dtm)

	var (
		fatm = p.FAtm()
		focn = p.FOcean()
		n    = cgm.NumNodes()
		vx   = cgm.VX
		vy   = cgm.VY
	)
	implicitX := func(i int) float64 {
		return p.RhoIce*cgm.CgH[i]/dtm + cgm.CgA[i]*focn*math.Abs(cgm.OX[i]-vx[i])
	}
	implicitY := func(i int) float64 {
		return p.RhoIce*cgm.CgH[i]/dtm + cgm.CgA[i]*focn*math.Abs(cgm.OY[i]-vy[i])
	}
	cgm.Layout.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var (
				rhoH = p.RhoIce * cgm.CgH[i]
				a    = cgm.CgA[i]
				ox   = cgm.OX[i]
				oy   = cgm.OY[i]
			)
			vx[i] = (rhoH/dtm*vx[i] +
				a*(fatm*math.Abs(cgm.AX[i])*cgm.AX[i]+focn*math.Abs(ox-vx[i])*ox) +
				rhoH*p.Fc*(vy[i]-oy)) / implicitX(i)
			vy[i] = (rhoH/dtm*vy[i] +
				a*(fatm*math.Abs(cgm.AY[i])*cgm.AY[i]+focn*math.Abs(oy-vy[i])*oy) +
				rhoH*p.Fc*(ox-vx[i])) / implicitY(i)
		}
	})

	cgm.assembleStress()
	cgm.Layout.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dx, dy := implicitX(i)*cgm.lumped[i], implicitY(i)*cgm.lumped[i]
			vx[i] += cgm.tmpX[i] / dx
			vy[i] += cgm.tmpY[i] / dy
		}
	})

	cgm.ApplyDirichletZero()
	cgm.ApplyLandMask()

	inv := 1 / float64(nt)
	cgm.Layout.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			cgm.AvgVX[i] += vx[i] * inv
			cgm.AvgVY[i] += vy[i] * inv
		}
	})
}

// SubcycleMEB runs nt MEB substeps over the time step dt. The macro step
// velocity is left in AvgVX, AvgVY.
func (cgm *CGMomentum) SubcycleMEB(p rheology.MEBParameters, nt int, dt float64, ice IceFields) error {
	if ice.D == nil {
		return fmt.Errorf("MEB subcycle: %w", ErrMissingDamage)
	}
	cgm.PrepareIteration(ice)
	for it := 0; it < nt; it++ {
		cgm.MEBStep(p, nt, dt, ice)
	}
	if err := cgm.CheckFinite(); err != nil {
		return fmt.Errorf("MEB subcycle: %w", err)
	}
	return nil
}
