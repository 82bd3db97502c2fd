package mesh

import (
	"fmt"
	"math"
)

// Side labels the four boundary segments of the structured mesh and the four
// edges of an element. The numbering is part of the file format.
type Side uint8

const (
	Bottom Side = iota
	Right
	Top
	Left
)

func (s Side) String() string {
	switch s {
	case Bottom:
		return "bottom"
	case Right:
		return "right"
	case Top:
		return "top"
	case Left:
		return "left"
	}
	return fmt.Sprintf("Side(%d)", uint8(s))
}

// Direction of a periodic identification
type Direction uint8

const (
	// XPeriodic identifies the right edge of A with the left edge of B
	XPeriodic Direction = iota
	// YPeriodic identifies the top edge of A with the bottom edge of B
	YPeriodic
)

type PeriodicPair struct {
	A, B int
	Dir  Direction
}

// ParametricMesh is a structured nx*ny mesh of curvilinear quadrilaterals.
// Nodes are numbered iy*(nx+1)+ix and elements iy*nx+ix. It is immutable
// after construction.
type ParametricMesh struct {
	Nx, Ny    int
	Vertices  [][2]float64
	Ice       []bool // false marks land elements
	Dirichlet [4][]int
	Periodic  []PeriodicPair

	// Edge lists, built by finalize
	EdgesY   [][]EdgePair // per element row, vertical edges
	EdgesX   [][]EdgePair // per element column, horizontal edges
	Boundary [4][]BoundaryEdge
}

func (m *ParametricMesh) NumElements() int { return m.Nx * m.Ny }
func (m *ParametricMesh) NumNodes() int    { return (m.Nx + 1) * (m.Ny + 1) }

// NumEdgesY is the length of an array indexed by vertical edge
func (m *ParametricMesh) NumEdgesY() int { return m.Ny * (m.Nx + 1) }

// NumEdgesX is the length of an array indexed by horizontal edge
func (m *ParametricMesh) NumEdgesX() int { return (m.Ny + 1) * m.Nx }

func (m *ParametricMesh) NodeIndex(ix, iy int) int    { return iy*(m.Nx+1) + ix }
func (m *ParametricMesh) ElementIndex(ix, iy int) int { return iy*m.Nx + ix }

// ElementXY returns the column and row of element eid
func (m *ParametricMesh) ElementXY(eid int) (ix, iy int) { return eid % m.Nx, eid / m.Nx }

func (m *ParametricMesh) IsIce(eid int) bool { return m.Ice[eid] }

// Corners returns lower-left, lower-right, upper-left, upper-right vertices
// of element eid.
func (m *ParametricMesh) Corners(eid int) (c [4][2]float64) {
	ix, iy := m.ElementXY(eid)
	n0 := m.NodeIndex(ix, iy)
	c[0] = m.Vertices[n0]
	c[1] = m.Vertices[n0+1]
	c[2] = m.Vertices[n0+m.Nx+1]
	c[3] = m.Vertices[n0+m.Nx+2]
	return
}

// EdgeVector returns v[n2]-v[n1]
func (m *ParametricMesh) EdgeVector(n1, n2 int) [2]float64 {
	return [2]float64{
		m.Vertices[n2][0] - m.Vertices[n1][0],
		m.Vertices[n2][1] - m.Vertices[n1][1],
	}
}

func (m *ParametricMesh) Center(eid int) (x, y float64) {
	c := m.Corners(eid)
	for i := 0; i < 4; i++ {
		x += 0.25 * c[i][0]
		y += 0.25 * c[i][1]
	}
	return
}

// HX is the mean length of the bottom and top edges of element eid
func (m *ParametricMesh) HX(eid int) float64 {
	c := m.Corners(eid)
	return 0.5 * (dist(c[0], c[1]) + dist(c[2], c[3]))
}

// HY is the mean length of the left and right edges of element eid
func (m *ParametricMesh) HY(eid int) float64 {
	c := m.Corners(eid)
	return 0.5 * (dist(c[0], c[2]) + dist(c[1], c[3]))
}

// H is the characteristic length of element eid, the smaller of HX and HY
func (m *ParametricMesh) H(eid int) float64 {
	return math.Min(m.HX(eid), m.HY(eid))
}

// Area of element eid. The bilinear map of a quadrilateral with straight
// edges covers exactly the polygon.
func (m *ParametricMesh) Area(eid int) float64 {
	c := m.Corners(eid)
	// counter-clockwise: ll, lr, ur, ul
	p := [4][2]float64{c[0], c[1], c[3], c[2]}
	var a float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		a += p[i][0]*p[j][1] - p[j][0]*p[i][1]
	}
	return 0.5 * math.Abs(a)
}

// HMin returns the minimum characteristic element length
func (m *ParametricMesh) HMin() float64 {
	hmin := math.MaxFloat64
	for eid := 0; eid < m.NumElements(); eid++ {
		hmin = math.Min(hmin, m.H(eid))
	}
	return hmin
}

func (m *ParametricMesh) TotalArea() (a float64) {
	for eid := 0; eid < m.NumElements(); eid++ {
		a += m.Area(eid)
	}
	return
}

// NumIce counts the ice-capable elements
func (m *ParametricMesh) NumIce() (n int) {
	for _, ice := range m.Ice {
		if ice {
			n++
		}
	}
	return
}

func dist(a, b [2]float64) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}
