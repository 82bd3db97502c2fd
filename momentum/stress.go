package momentum

import (
	"math"

	"github.com/notargets/DGSeaIce/rheology"
)

// gather copies the local CG velocity of element eid into w.lx, w.ly
func (cgm *CGMomentum) gather(w *workspace, eid int, vx, vy []float64) {
	ix, iy := cgm.Mesh.ElementXY(eid)
	cgm.CG.ElementNodes(cgm.Mesh.Nx, ix, iy, w.dofs)
	for j, n := range w.dofs {
		w.lx[j] = vx[n]
		w.ly[j] = vy[n]
	}
}

// ProjectVelocityToStrain projects the strain rate of the CG velocity onto
// the stress space of every ice element
//
//	E11 = ∂x vx,  E22 = ∂y vy,  E12 = ½(∂y vx + ∂x vy)
func (cgm *CGMomentum) ProjectVelocityToStrain() {
	nb := cgm.Stress.NumCoeffs()
	cgm.Layout.ForEachActiveWorker(func(worker, eid int) {
		var (
			w  = cgm.work[worker]
			tr = cgm.Geom.Transform(eid)
		)
		cgm.gather(w, eid, cgm.VX, cgm.VY)
		cgm.cgTab.EvaluateGrad(w.lx, w.fxi, w.feta)
		tr.GradJ(w.fxi, w.feta, w.jdx, w.jdy)
		cgm.cgTab.EvaluateGrad(w.ly, w.fxi, w.feta)
		tr.GradJ(w.fxi, w.feta, w.jdx2, w.jdy2)

		e12 := w.q[0]
		for k := range e12 {
			e12[k] = 0.5 * (w.jdy[k] + w.jdx2[k])
		}
		lo, hi := eid*nb, (eid+1)*nb
		cgm.Geom.Project(cgm.Stress, eid, tr, w.jdx, true, cgm.E11[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, e12, true, cgm.E12[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, w.jdy2, true, cgm.E22[lo:hi])
	})
}

// pointValues evaluates strain, stress and ice state of element eid at the
// Gauss points into w.q
//
//	q[0..2] E11, E12, E22   q[3..5] S11, S12, S22   q[6] H   q[7] A
func (cgm *CGMomentum) pointValues(w *workspace, eid int, ice IceFields) {
	var (
		nb  = cgm.Stress.NumCoeffs()
		bt  = cgm.Geom.Tables[cgm.Stress]
		ib  = ice.Degree.NumCoeffs()
		it  = cgm.Geom.Tables[ice.Degree]
		s   = eid * nb
		si  = eid * ib
		src = [6][]float64{cgm.E11, cgm.E12, cgm.E22, cgm.S11, cgm.S12, cgm.S22}
	)
	for i, f := range src {
		bt.Evaluate(f[s:s+nb], w.q[i])
	}
	it.Evaluate(ice.H[si:si+ib], w.q[6])
	it.Evaluate(ice.A[si:si+ib], w.q[7])
	for k := range w.q[6] {
		w.q[6][k] = math.Max(w.q[6][k], 0)
		w.q[7][k] = math.Min(math.Max(w.q[7][k], 0), 1)
	}
}

// UpdateStressMEVP relaxes the stress toward the viscous-plastic stress of
// the current strain rate, S ← S + (σ(E) - S)/alpha, at every Gauss point of
// every ice element
func (cgm *CGMomentum) UpdateStressMEVP(p rheology.VPParameters, ice IceFields, alpha float64) {
	ice.check(cgm.Mesh.NumElements())
	nb := cgm.Stress.NumCoeffs()
	cgm.Layout.ForEachActiveWorker(func(worker, eid int) {
		var (
			w  = cgm.work[worker]
			tr = cgm.Geom.Transform(eid)
		)
		cgm.pointValues(w, eid, ice)
		for k := range w.q[0] {
			s11, s12, s22 := p.Stress(w.q[6][k], w.q[7][k], w.q[0][k], w.q[1][k], w.q[2][k])
			w.q[3][k] += (s11 - w.q[3][k]) / alpha
			w.q[4][k] += (s12 - w.q[4][k]) / alpha
			w.q[5][k] += (s22 - w.q[5][k]) / alpha
		}
		lo, hi := eid*nb, (eid+1)*nb
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[3], false, cgm.S11[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[4], false, cgm.S12[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[5], false, cgm.S22[lo:hi])
	})
}

// UpdateStressMEB advances the elasto-brittle stress by dt at every Gauss
// point of every ice element. The damaged point values, clamped to [0,1],
// are projected back onto the coefficients of ice.D up to the stress degree.
// Modes above the stress degree cannot be resolved by the Gauss points and
// keep their values.
func (cgm *CGMomentum) UpdateStressMEB(p rheology.MEBParameters, ice IceFields, dt float64) {
	ice.check(cgm.Mesh.NumElements())
	if ice.D == nil {
		panic("MEB stress update without damage field")
	}
	var (
		nb = cgm.Stress.NumCoeffs()
		ib = ice.Degree.NumCoeffs()
		it = cgm.Geom.Tables[ice.Degree]
		pd = min(ice.Degree, cgm.Stress)
	)
	cgm.Layout.ForEachActiveWorker(func(worker, eid int) {
		var (
			w   = cgm.work[worker]
			tr  = cgm.Geom.Transform(eid)
			d   = w.fxi
			inc = w.feta
			dD  [8]float64
		)
		cgm.pointValues(w, eid, ice)
		it.Evaluate(ice.D[eid*ib:(eid+1)*ib], d)
		for k := range w.q[0] {
			s := [3]float64{w.q[3][k], w.q[4][k], w.q[5][k]}
			dd := p.Stress(dt, w.q[6][k], w.q[7][k], d[k], w.q[0][k], w.q[1][k], w.q[2][k], &s)
			w.q[3][k], w.q[4][k], w.q[5][k] = s[0], s[1], s[2]
			inc[k] = math.Min(math.Max(d[k]+dd, 0), 1) - d[k]
		}
		lo, hi := eid*nb, (eid+1)*nb
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[3], false, cgm.S11[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[4], false, cgm.S12[lo:hi])
		cgm.Geom.Project(cgm.Stress, eid, tr, w.q[5], false, cgm.S22[lo:hi])

		pn := pd.NumCoeffs()
		cgm.Geom.Project(pd, eid, tr, inc, false, dD[:pn])
		de := ice.D[eid*ib : eid*ib+pn]
		for i := range de {
			de[i] += dD[i]
		}
		de[0] = math.Min(math.Max(de[0], 0), 1)
	})
}

// AddStressDivergence adds scale·∫σ:∇φ_i to (tx, ty) at every CG node i.
// Even rows are assembled before odd rows, so neighbouring rows never write
// the same node concurrently and the result does not depend on the number
// of partitions.
func (cgm *CGMomentum) AddStressDivergence(scale float64, tx, ty []float64) {
	var (
		nb = cgm.Stress.NumCoeffs()
		bt = cgm.Geom.Tables[cgm.Stress]
		wq = cgm.Geom.Quad.W
	)
	cgm.Layout.ForEachActiveTwoColorWorker(func(worker, eid int) {
		var (
			w  = cgm.work[worker]
			tr = cgm.Geom.Transform(eid)
			s  = eid * nb
		)
		ix, iy := cgm.Mesh.ElementXY(eid)
		cgm.CG.ElementNodes(cgm.Mesh.Nx, ix, iy, w.dofs)
		bt.Evaluate(cgm.S11[s:s+nb], w.q[3])
		bt.Evaluate(cgm.S12[s:s+nb], w.q[4])
		bt.Evaluate(cgm.S22[s:s+nb], w.q[5])
		for j, n := range w.dofs {
			tr.GradJ(cgm.cgTab.Dx.RawRowView(j), cgm.cgTab.Dy.RawRowView(j), w.jdx, w.jdy)
			var fx, fy float64
			for k := range wq {
				fx += wq[k] * (w.q[3][k]*w.jdx[k] + w.q[4][k]*w.jdy[k])
				fy += wq[k] * (w.q[4][k]*w.jdx[k] + w.q[5][k]*w.jdy[k])
			}
			tx[n] += scale * fx
			ty[n] += scale * fy
		}
	})
}

// Delta returns the element mean deformation measure Δ, zero on land
func (cgm *CGMomentum) Delta(p rheology.VPParameters) []float64 {
	nb := cgm.Stress.NumCoeffs()
	out := make([]float64, cgm.Mesh.NumElements())
	cgm.Layout.ForEachActive(func(eid int) {
		out[eid] = p.Delta(cgm.E11[eid*nb], cgm.E12[eid*nb], cgm.E22[eid*nb])
	})
	return out
}

// Shear returns the element mean maximum shear strain rate, zero on land
func (cgm *CGMomentum) Shear() []float64 {
	nb := cgm.Stress.NumCoeffs()
	out := make([]float64, cgm.Mesh.NumElements())
	cgm.Layout.ForEachActive(func(eid int) {
		out[eid] = rheology.Shear(cgm.E11[eid*nb], cgm.E12[eid*nb], cgm.E22[eid*nb])
	})
	return out
}
