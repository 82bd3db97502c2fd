package transport

import (
	"math"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
)

// Operator writes the update dt·M⁻¹ R(phi) of one forward Euler step into
// out. The phases run in sequence: cell terms, vertical edges by row,
// horizontal edges by column, outflow boundaries, inverse mass.
func (t *DGTransport) Operator(dt float64, phi, out []float64) {
	clear(out)
	if t.Degree != element.DG0 {
		t.cellTerms(dt, phi, out)
	}
	t.Layout.ForEachSlice(len(t.Mesh.EdgesY), func(iy int) {
		for _, ep := range t.Mesh.EdgesY[iy] {
			t.edgeTerm(dt, ep, int(mesh.Right), int(mesh.Left), t.NormalY, phi, out)
		}
	})
	t.Layout.ForEachSlice(len(t.Mesh.EdgesX), func(ix int) {
		for _, ep := range t.Mesh.EdgesX[ix] {
			t.edgeTerm(dt, ep, int(mesh.Top), int(mesh.Bottom), t.NormalX, phi, out)
		}
	})
	for side, normal := range [4][]float64{t.NormalX, t.NormalY, t.NormalX, t.NormalY} {
		t.boundaryTerms(dt, side, normal, phi, out)
	}
	t.applyInverseMass(out)
}

// cellTerms adds dt ∫ phi v·∇ψ_i
func (t *DGTransport) cellTerms(dt float64, phi, out []float64) {
	var (
		nb = t.Degree.NumCoeffs()
		bt = t.Geom.Tables[t.Degree]
		w  = t.Geom.Quad.W
		nq = bt.NQ
	)
	t.Layout.ForEachRange(t.Mesh.NumElements(), func(lo, hi int) {
		var (
			vx, vy = make([]float64, nq), make([]float64, nq)
			pw     = make([]float64, nq)
			jdx    = make([]float64, nq)
			jdy    = make([]float64, nq)
		)
		for eid := lo; eid < hi; eid++ {
			var (
				tr = t.Geom.Transform(eid)
				s  = eid * nb
			)
			bt.Evaluate(t.VX[s:s+nb], vx)
			bt.Evaluate(t.VY[s:s+nb], vy)
			bt.Evaluate(phi[s:s+nb], pw)
			for k := range pw {
				pw[k] *= w[k]
			}
			for i := 1; i < nb; i++ {
				tr.GradJ(bt.Dx.RawRowView(i), bt.Dy.RawRowView(i), jdx, jdy)
				var sum float64
				for k := 0; k < nq; k++ {
					sum += (jdx[k]*vx[k] + jdy[k]*vy[k]) * pw[k]
				}
				out[s+i] += dt * sum
			}
		}
	})
}

// edgeTerm exchanges the upwind flux across ep. side1 is the face of C1
// on the edge, side2 the face of C2.
func (t *DGTransport) edgeTerm(dt float64, ep mesh.EdgePair, side1, side2 int,
	normal, phi, out []float64) {
	var (
		et         = t.Edges
		nb         = et.NB
		n          = et.N
		ned        = t.Degree.EdgeDOFs()
		vel        [3]float64
		up, dn, fl [3]float64
	)
	et.EdgeValues(normal[ep.Edge*ned:(ep.Edge+1)*ned], vel[:n])
	et.TraceValues(side1, phi[ep.C1*nb:], up[:n])
	et.TraceValues(side2, phi[ep.C2*nb:], dn[:n])
	for k := 0; k < n; k++ {
		fl[k] = math.Max(vel[k], 0)*up[k] + math.Min(vel[k], 0)*dn[k]
	}
	w1, w2 := et.TraceW[side1], et.TraceW[side2]
	for i := 0; i < nb; i++ {
		r1, r2 := w1.RawRowView(i), w2.RawRowView(i)
		var s1, s2 float64
		for k := 0; k < n; k++ {
			s1 += fl[k] * r1[k]
			s2 += fl[k] * r2[k]
		}
		out[ep.C1*nb+i] -= dt * s1
		out[ep.C2*nb+i] += dt * s2
	}
}

// boundaryTerms removes the outflow through the exterior edges of side.
// Nothing flows in.
func (t *DGTransport) boundaryTerms(dt float64, side int, normal, phi, out []float64) {
	var (
		et    = t.Edges
		nb    = et.NB
		n     = et.N
		ned   = t.Degree.EdgeDOFs()
		edges = t.Mesh.Boundary[side]
		sign  = 1.0
	)
	if side == int(mesh.Bottom) || side == int(mesh.Left) {
		sign = -1
	}
	t.Layout.ForEachRange(len(edges), func(lo, hi int) {
		var vel, tr [3]float64
		for _, be := range edges[lo:hi] {
			et.EdgeValues(normal[be.Edge*ned:(be.Edge+1)*ned], vel[:n])
			et.TraceValues(side, phi[be.Elem*nb:], tr[:n])
			for k := 0; k < n; k++ {
				tr[k] *= math.Max(sign*vel[k], 0)
			}
			tw := et.TraceW[side]
			for i := 0; i < nb; i++ {
				row := tw.RawRowView(i)
				var s float64
				for k := 0; k < n; k++ {
					s += tr[k] * row[k]
				}
				out[be.Elem*nb+i] -= dt * s
			}
		}
	})
}

func (t *DGTransport) applyInverseMass(out []float64) {
	nb := t.Degree.NumCoeffs()
	t.Layout.ForEachRange(t.Mesh.NumElements(), func(lo, hi int) {
		var rhs [8]float64
		for eid := lo; eid < hi; eid++ {
			s := eid * nb
			copy(rhs[:nb], out[s:s+nb])
			iM := t.Geom.InverseMass(t.Degree, eid, t.Geom.Transform(eid))
			element.ApplyInverse(iM, rhs[:nb], out[s:s+nb])
		}
	})
}
