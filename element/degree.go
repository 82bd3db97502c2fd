package element

import "fmt"

// DGDegree selects one of the closed set of discontinuous polynomial spaces
// on the unit square. Coefficients of a field are stored per element,
// contiguous, in the basis order of Psi.
type DGDegree uint8

const (
	DG0 DGDegree = iota // constant, 1 coefficient
	DG1                 // linear, 3 coefficients
	DG2                 // quadratic, 6 coefficients
	DG2Plus             // quadratic plus the two cubic cross terms, 8 coefficients
)

func (d DGDegree) NumCoeffs() int {
	switch d {
	case DG0:
		return 1
	case DG1:
		return 3
	case DG2:
		return 6
	case DG2Plus:
		return 8
	}
	panic(fmt.Sprintf("unsupported DG degree %d", d))
}

// Order is the polynomial order used to size edge quadrature
func (d DGDegree) Order() int {
	if d == DG2Plus {
		return 2
	}
	return int(d)
}

// EdgeDOFs is the number of edge basis coefficients of a trace
func (d DGDegree) EdgeDOFs() int { return d.Order() + 1 }

func (d DGDegree) String() string {
	if d == DG2Plus {
		return "DG2+"
	}
	return fmt.Sprintf("DG%d", d)
}

// ParseDGDegree maps a polynomial order 0, 1 or 2 onto the advected field
// spaces
func ParseDGDegree(order int) (DGDegree, error) {
	if order < 0 || order > 2 {
		return DG0, fmt.Errorf("DG degree %d not in {0,1,2}", order)
	}
	return DGDegree(order), nil
}

// CGDegree selects the continuous Q1 or Q2 velocity space
type CGDegree uint8

const (
	CG1 CGDegree = 1
	CG2 CGDegree = 2
)

func (c CGDegree) String() string { return fmt.Sprintf("CG%d", uint8(c)) }

func ParseCGDegree(order int) (CGDegree, error) {
	switch order {
	case 1:
		return CG1, nil
	case 2:
		return CG2, nil
	}
	return CG1, fmt.Errorf("CG degree %d not in {1,2}", order)
}

// NodesPerElement is (c+1)^2
func (c CGDegree) NodesPerElement() int { return (int(c) + 1) * (int(c) + 1) }

// StressDegree is the DG space holding strain and stress for this velocity
// space
func (c CGDegree) StressDegree() DGDegree {
	switch c {
	case CG1:
		return DG1
	case CG2:
		return DG2Plus
	}
	panic(fmt.Sprintf("unsupported CG degree %d", c))
}

// GaussPoints per direction used for strain and stress integrals
func (c CGDegree) GaussPoints() int { return int(c) + 1 }

// NumNodes is the length of a CG vector on an nx*ny mesh
func (c CGDegree) NumNodes(nx, ny int) int {
	return (int(c)*nx + 1) * (int(c)*ny + 1)
}

// RowStride is the number of CG nodes in one row, the cgshift of the
// element to node map
func (c CGDegree) RowStride(nx int) int { return int(c)*nx + 1 }

// ElementNodes writes the global CG indices of element (ix,iy) into dofs in
// local order jy*(c+1)+jx.
func (c CGDegree) ElementNodes(nx, ix, iy int, dofs []int) {
	var (
		cg     = int(c)
		stride = c.RowStride(nx)
		cgi    = cg*stride*iy + cg*ix
	)
	for jy := 0; jy <= cg; jy++ {
		for jx := 0; jx <= cg; jx++ {
			dofs[jy*(cg+1)+jx] = cgi + jy*stride + jx
		}
	}
}
