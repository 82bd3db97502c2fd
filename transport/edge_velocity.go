package transport

import (
	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
)

// ReconstructEdgeNormalVelocity computes the normal velocity on every edge
// as the mean of the traces of the two adjacent cells. The tangent is not
// normalised, so the coefficients carry the edge length. Exterior edges see
// one cell only and their half contribution is doubled; the two halves of a
// periodic edge are summed into both copies.
func (t *DGTransport) ReconstructEdgeNormalVelocity() {
	var (
		m   = t.Mesh
		d   = t.Degree
		nb  = d.NumCoeffs()
		ned = d.EdgeDOFs()
	)
	clear(t.NormalX)
	clear(t.NormalY)

	// vertical edges, normal (t.y, -t.x) for the upward tangent
	t.Layout.ForEachSlice(m.Ny, func(iy int) {
		var ex, ey [3]float64
		for ix := 0; ix < m.Nx; ix++ {
			c := m.ElementIndex(ix, iy)
			for side, col := range [2]int{ix, ix + 1} {
				var (
					tan  = m.EdgeVector(m.NodeIndex(col, iy), m.NodeIndex(col, iy+1))
					face = int(mesh.Left)
					nv   = t.NormalY[m.YEdge(col, iy)*ned:]
				)
				if side == 1 {
					face = int(mesh.Right)
				}
				element.EdgeCoefficients(face, d, t.VX[c*nb:], ex[:])
				element.EdgeCoefficients(face, d, t.VY[c*nb:], ey[:])
				for k := 0; k < ned; k++ {
					nv[k] += 0.5 * (tan[1]*ex[k] - tan[0]*ey[k])
				}
			}
		}
	})

	// horizontal edges, normal (-t.y, t.x) for the rightward tangent
	t.Layout.ForEachSlice(m.Nx, func(ix int) {
		var ex, ey [3]float64
		for iy := 0; iy < m.Ny; iy++ {
			c := m.ElementIndex(ix, iy)
			for side, row := range [2]int{iy, iy + 1} {
				var (
					tan  = m.EdgeVector(m.NodeIndex(ix, row), m.NodeIndex(ix+1, row))
					face = int(mesh.Bottom)
					nv   = t.NormalX[m.XEdge(ix, row)*ned:]
				)
				if side == 1 {
					face = int(mesh.Top)
				}
				element.EdgeCoefficients(face, d, t.VX[c*nb:], ex[:])
				element.EdgeCoefficients(face, d, t.VY[c*nb:], ey[:])
				for k := 0; k < ned; k++ {
					nv[k] += 0.5 * (-tan[1]*ex[k] + tan[0]*ey[k])
				}
			}
		}
	})

	for side, normal := range [4][]float64{t.NormalX, t.NormalY, t.NormalX, t.NormalY} {
		for _, be := range m.Boundary[side] {
			for k := 0; k < ned; k++ {
				normal[be.Edge*ned+k] *= 2
			}
		}
	}
	fold := func(pairs [][]mesh.EdgePair, normal []float64) {
		for _, row := range pairs {
			for _, ep := range row {
				if !ep.IsPeriodic() {
					continue
				}
				for k := 0; k < ned; k++ {
					s := normal[ep.Edge*ned+k] + normal[ep.Mirror*ned+k]
					normal[ep.Edge*ned+k], normal[ep.Mirror*ned+k] = s, s
				}
			}
		}
	}
	fold(m.EdgesY, t.NormalY)
	fold(m.EdgesX, t.NormalX)
}
