package mesh

import "fmt"

// EdgePair is an edge shared by two elements. The edge normal points from
// C1 to C2. Edge indexes the normal velocity array of the edge direction;
// Mirror is the index of the identified edge for a periodic pair and equals
// Edge otherwise.
type EdgePair struct {
	C1, C2       int
	Edge, Mirror int
}

func (ep EdgePair) IsPeriodic() bool { return ep.Edge != ep.Mirror }

// BoundaryEdge is an exterior edge of element Elem
type BoundaryEdge struct {
	Elem, Edge int
}

// YEdge indexes the vertical edge left of column ix in row iy, ix in [0,nx]
func (m *ParametricMesh) YEdge(ix, iy int) int { return iy*(m.Nx+1) + ix }

// XEdge indexes the horizontal edge below row iy in column ix, iy in [0,ny]
func (m *ParametricMesh) XEdge(ix, iy int) int { return iy*m.Nx + ix }

func (m *ParametricMesh) validatePeriodic() error {
	seen := make(map[[2]int]bool)
	for _, p := range m.Periodic {
		ne := m.NumElements()
		if p.A < 0 || p.A >= ne || p.B < 0 || p.B >= ne {
			return fmt.Errorf("%w: periodic pair (%d,%d) out of range", ErrSection, p.A, p.B)
		}
		ax, ay := m.ElementXY(p.A)
		bx, by := m.ElementXY(p.B)
		switch p.Dir {
		case XPeriodic:
			if ay != by || ax != m.Nx-1 || bx != 0 {
				return fmt.Errorf("%w: x-periodic pair (%d,%d) must join the right and left end of one row",
					ErrSection, p.A, p.B)
			}
		case YPeriodic:
			if ax != bx || ay != m.Ny-1 || by != 0 {
				return fmt.Errorf("%w: y-periodic pair (%d,%d) must join the top and bottom end of one column",
					ErrSection, p.A, p.B)
			}
		default:
			return fmt.Errorf("%w: periodic direction %d", ErrSection, p.Dir)
		}
		key := [2]int{p.A, int(p.Dir)}
		if seen[key] {
			return fmt.Errorf("%w: periodic pair (%d,%d) declared twice", ErrSection, p.A, p.B)
		}
		seen[key] = true
	}
	return nil
}

// finalize builds the edge lists. Periodic pairs are folded into the row and
// column lists they belong to, so that rows (columns) stay independent.
func (m *ParametricMesh) finalize() error {
	if m.Ice == nil {
		m.Ice = make([]bool, m.NumElements())
		for i := range m.Ice {
			m.Ice[i] = true
		}
	}
	if err := m.validatePeriodic(); err != nil {
		return err
	}
	var (
		nx, ny    = m.Nx, m.Ny
		xPeriodic = make(map[int]bool) // rows
		yPeriodic = make(map[int]bool) // columns
	)
	m.EdgesY = make([][]EdgePair, ny)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx-1; ix++ {
			c1 := m.ElementIndex(ix, iy)
			e := m.YEdge(ix+1, iy)
			m.EdgesY[iy] = append(m.EdgesY[iy], EdgePair{C1: c1, C2: c1 + 1, Edge: e, Mirror: e})
		}
	}
	m.EdgesX = make([][]EdgePair, nx)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny-1; iy++ {
			c1 := m.ElementIndex(ix, iy)
			e := m.XEdge(ix, iy+1)
			m.EdgesX[ix] = append(m.EdgesX[ix], EdgePair{C1: c1, C2: c1 + nx, Edge: e, Mirror: e})
		}
	}
	for _, p := range m.Periodic {
		ax, ay := m.ElementXY(p.A)
		switch p.Dir {
		case XPeriodic:
			m.EdgesY[ay] = append(m.EdgesY[ay], EdgePair{
				C1: p.A, C2: p.B, Edge: m.YEdge(nx, ay), Mirror: m.YEdge(0, ay),
			})
			xPeriodic[ay] = true
		case YPeriodic:
			m.EdgesX[ax] = append(m.EdgesX[ax], EdgePair{
				C1: p.A, C2: p.B, Edge: m.XEdge(ax, ny), Mirror: m.XEdge(ax, 0),
			})
			yPeriodic[ax] = true
		}
	}
	for s := range m.Boundary {
		m.Boundary[s] = m.Boundary[s][:0]
	}
	for ix := 0; ix < nx; ix++ {
		if yPeriodic[ix] {
			continue
		}
		m.Boundary[Bottom] = append(m.Boundary[Bottom], BoundaryEdge{Elem: ix, Edge: m.XEdge(ix, 0)})
		m.Boundary[Top] = append(m.Boundary[Top],
			BoundaryEdge{Elem: m.ElementIndex(ix, ny-1), Edge: m.XEdge(ix, ny)})
	}
	for iy := 0; iy < ny; iy++ {
		if xPeriodic[iy] {
			continue
		}
		m.Boundary[Left] = append(m.Boundary[Left],
			BoundaryEdge{Elem: m.ElementIndex(0, iy), Edge: m.YEdge(0, iy)})
		m.Boundary[Right] = append(m.Boundary[Right],
			BoundaryEdge{Elem: m.ElementIndex(nx-1, iy), Edge: m.YEdge(nx, iy)})
	}
	return nil
}
