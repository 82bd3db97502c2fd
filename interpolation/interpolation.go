package interpolation

import (
	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/partitions"
)

// Interpolator moves fields between the CG velocity space and the DG
// spaces on one mesh
type Interpolator struct {
	Mesh   *mesh.ParametricMesh
	CG     element.CGDegree
	Geom   *element.Geometry
	Layout *partitions.PartitionLayout

	cgTab *element.BasisTable
}

// NewInterpolator uses a 3x3 Gauss rule, exact for the CG2·DG2 products on
// bilinear elements.
func NewInterpolator(m *mesh.ParametricMesh, cg element.CGDegree, mode element.TransformMode,
	layout *partitions.PartitionLayout) *Interpolator {
	geom := element.NewGeometry(m, 3, mode, element.DG0, element.DG1, element.DG2)
	return &Interpolator{
		Mesh:   m,
		CG:     cg,
		Geom:   geom,
		Layout: layout,
		cgTab:  element.CGTable(cg, geom.Quad),
	}
}

// DGToCG sets every CG node to the mean of the DG field of degree d
// evaluated at that node in the elements sharing it
func (ip *Interpolator) DGToCG(d element.DGDegree, dg, cg []float64) {
	var (
		c      = int(ip.CG)
		nx, ny = ip.Mesh.Nx, ip.Mesh.Ny
		nb     = d.NumCoeffs()
		stride = ip.CG.RowStride(nx)
		rows   = c*ny + 1
	)
	ip.Layout.ForEachRange(rows, func(lo, hi int) {
		var ex, ey [2]int
		for gy := lo; gy < hi; gy++ {
			ney := adjacent(gy, c, ny, &ey)
			for gx := 0; gx < stride; gx++ {
				nex := adjacent(gx, c, nx, &ex)
				var sum float64
				for a := 0; a < ney; a++ {
					y := float64(gy-c*ey[a]) / float64(c)
					for b := 0; b < nex; b++ {
						x := float64(gx-c*ex[b]) / float64(c)
						coeffs := dg[(ey[a]*nx+ex[b])*nb:]
						for i := 0; i < nb; i++ {
							sum += coeffs[i] * element.Psi(i, x, y)
						}
					}
				}
				cg[gy*stride+gx] = sum / float64(ney*nex)
			}
		}
	})
}

// adjacent lists the element indices along one direction that touch CG
// node line g
func adjacent(g, c, n int, e *[2]int) int {
	k := 0
	if g%c == 0 && g/c > 0 {
		e[k] = g/c - 1
		k++
	}
	if g/c < n {
		e[k] = g / c
		k++
	}
	return k
}

// CGToDG projects the CG field onto DG degree d in the L2 sense
func (ip *Interpolator) CGToDG(d element.DGDegree, cg, dg []float64) {
	var (
		nx    = ip.Mesh.Nx
		nb    = d.NumCoeffs()
		npe   = ip.CG.NodesPerElement()
		nq    = ip.Geom.Quad.NumPoints()
		cgTab = ip.cgTab
	)
	ip.Layout.ForEachRow(func(iy int) {
		var (
			dofs  = make([]int, npe)
			local = make([]float64, npe)
			vals  = make([]float64, nq)
		)
		for ix := 0; ix < nx; ix++ {
			eid := iy*nx + ix
			ip.CG.ElementNodes(nx, ix, iy, dofs)
			for j, n := range dofs {
				local[j] = cg[n]
			}
			cgTab.Evaluate(local, vals)
			ip.Geom.Project(d, eid, ip.Geom.Transform(eid), vals, false, dg[eid*nb:(eid+1)*nb])
		}
	})
}

// FunctionToDG projects f(x,y) onto DG degree d
func (ip *Interpolator) FunctionToDG(d element.DGDegree, f func(x, y float64) float64, dg []float64) {
	var (
		nx = ip.Mesh.Nx
		nb = d.NumCoeffs()
		nq = ip.Geom.Quad.NumPoints()
	)
	ip.Layout.ForEachRow(func(iy int) {
		vals := make([]float64, nq)
		for ix := 0; ix < nx; ix++ {
			eid := iy*nx + ix
			tr := ip.Geom.Transform(eid)
			for k := range vals {
				vals[k] = f(tr.X[k], tr.Y[k])
			}
			ip.Geom.Project(d, eid, tr, vals, false, dg[eid*nb:(eid+1)*nb])
		}
	})
}

// FunctionToCG samples f at the physical position of every CG node
func (ip *Interpolator) FunctionToCG(f func(x, y float64) float64, cg []float64) {
	var (
		c      = int(ip.CG)
		nx, ny = ip.Mesh.Nx, ip.Mesh.Ny
		stride = ip.CG.RowStride(nx)
	)
	ip.Layout.ForEachRange(c*ny+1, func(lo, hi int) {
		for gy := lo; gy < hi; gy++ {
			ey := min(gy/c, ny-1)
			eta := float64(gy-c*ey) / float64(c)
			for gx := 0; gx < stride; gx++ {
				ex := min(gx/c, nx-1)
				xi := float64(gx-c*ex) / float64(c)
				x, y := ip.NodePosition(ey*nx+ex, xi, eta)
				cg[gy*stride+gx] = f(x, y)
			}
		}
	})
}

// NodePosition maps reference coordinates of element eid to physical space
func (ip *Interpolator) NodePosition(eid int, xi, eta float64) (x, y float64) {
	c := ip.Mesh.Corners(eid)
	x = (1-xi)*(1-eta)*c[0][0] + xi*(1-eta)*c[1][0] + (1-xi)*eta*c[2][0] + xi*eta*c[3][0]
	y = (1-xi)*(1-eta)*c[0][1] + xi*(1-eta)*c[1][1] + (1-xi)*eta*c[2][1] + xi*eta*c[3][1]
	return
}
