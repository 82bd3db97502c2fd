package momentum

import (
	"fmt"
	"sort"

	"github.com/notargets/DGSeaIce/mesh"
)

// segmentNodes appends the CG nodes of element eid lying on side
func (cgm *CGMomentum) segmentNodes(eid int, side mesh.Side, nodes []int) []int {
	var (
		c      = int(cgm.CG)
		stride = cgm.CG.RowStride(cgm.Mesh.Nx)
		ix, iy = cgm.Mesh.ElementXY(eid)
		cgi    = c*stride*iy + c*ix
	)
	for j := 0; j <= c; j++ {
		switch side {
		case mesh.Bottom:
			nodes = append(nodes, cgi+j)
		case mesh.Right:
			nodes = append(nodes, cgi+j*stride+c)
		case mesh.Top:
			nodes = append(nodes, cgi+c*stride+j)
		case mesh.Left:
			nodes = append(nodes, cgi+j*stride)
		default:
			panic(fmt.Sprintf("boundary segment %d outside {0,1,2,3}", side))
		}
	}
	return nodes
}

func unique(nodes []int) []int {
	if len(nodes) == 0 {
		return nodes
	}
	sort.Ints(nodes)
	out := nodes[:1]
	for _, n := range nodes[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

// boundaryNodes collects the pinned nodes of all four Dirichlet segments.
// Each node appears once, so the parallel zeroing never writes a node twice.
func (cgm *CGMomentum) boundaryNodes() []int {
	var nodes []int
	for side := mesh.Bottom; side <= mesh.Left; side++ {
		for _, eid := range cgm.Mesh.Dirichlet[side] {
			nodes = cgm.segmentNodes(eid, side, nodes)
		}
	}
	return unique(nodes)
}

// maskedNodes collects every CG node of every land element
func (cgm *CGMomentum) maskedNodes() []int {
	var (
		m     = cgm.Mesh
		dofs  = make([]int, cgm.CG.NodesPerElement())
		nodes []int
	)
	for eid := 0; eid < m.NumElements(); eid++ {
		if m.IsIce(eid) {
			continue
		}
		ix, iy := m.ElementXY(eid)
		cgm.CG.ElementNodes(m.Nx, ix, iy, dofs)
		nodes = append(nodes, dofs...)
	}
	return unique(nodes)
}

func (cgm *CGMomentum) zeroNodes(nodes []int, vx, vy []float64) {
	cgm.Layout.ForEachRange(len(nodes), func(lo, hi int) {
		for _, n := range nodes[lo:hi] {
			vx[n], vy[n] = 0, 0
		}
	})
}

// ApplyDirichletZero sets the velocity to zero on every pinned segment
func (cgm *CGMomentum) ApplyDirichletZero() {
	cgm.zeroNodes(cgm.dirichletNodes, cgm.VX, cgm.VY)
}

// ApplyLandMask sets the velocity to zero at every node of a land element
func (cgm *CGMomentum) ApplyLandMask() {
	cgm.zeroNodes(cgm.landNodes, cgm.VX, cgm.VY)
}

// DirichletNodes lists the pinned CG nodes in ascending order
func (cgm *CGMomentum) DirichletNodes() []int { return cgm.dirichletNodes }
