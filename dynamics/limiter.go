package dynamics

import (
	"math"

	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/partitions"
)

// Limiter bounds DG fields at the Gauss points of every element. The mean
// is clamped first; the higher modes are then scaled by the largest factor
// in [0,1] that keeps every point value inside the bound.
type Limiter struct {
	Degree element.DGDegree
	Layout *partitions.PartitionLayout

	table *element.BasisTable
}

func NewLimiter(d element.DGDegree, layout *partitions.PartitionLayout) *Limiter {
	return &Limiter{
		Degree: d,
		Layout: layout,
		table:  element.DGTable(d, element.NewQuadrature2D(3)),
	}
}

// LimitMax enforces phi ≤ bound
func (l *Limiter) LimitMax(phi []float64, bound float64) {
	l.limit(phi, bound, 1)
}

// LimitMin enforces phi ≥ bound
func (l *Limiter) LimitMin(phi []float64, bound float64) {
	l.limit(phi, bound, -1)
}

// limit works on the excess dir·(v - bound), positive where the bound is
// violated
func (l *Limiter) limit(phi []float64, bound, dir float64) {
	var (
		nb     = l.Degree.NumCoeffs()
		ne     = len(phi) / nb
		nq     = l.table.NQ
		excess = func(v float64) float64 { return dir * (v - bound) }
	)
	l.Layout.ForEachRange(ne, func(lo, hi int) {
		vals := make([]float64, nq)
		for eid := lo; eid < hi; eid++ {
			c := phi[eid*nb : (eid+1)*nb]
			if excess(c[0]) >= 0 {
				c[0] = bound
				for i := 1; i < nb; i++ {
					c[i] = 0
				}
				continue
			}
			if nb == 1 {
				continue
			}
			l.table.Evaluate(c, vals)
			var (
				mean  = excess(c[0])
				theta = 1.0
			)
			for _, v := range vals {
				if e := excess(v); e > 0 {
					// the excess is affine in v, so the point value of the
					// scaled field is mean + θ(e - mean)
					theta = math.Min(theta, -mean/(e-mean))
				}
			}
			for i := 1; i < nb; i++ {
				c[i] *= theta
			}
		}
	})
}
