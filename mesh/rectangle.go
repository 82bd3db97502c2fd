package mesh

// RectOption configures RectangleMesh
type RectOption func(*rectConfig)

type rectConfig struct {
	x0, y0     float64
	dirichlet  [4]bool
	periodicX  bool
	periodicY  bool
	land       func(x, y float64) bool
	distortion func(x, y float64) (float64, float64)
}

// WithOrigin moves the lower-left corner of the domain
func WithOrigin(x0, y0 float64) RectOption {
	return func(c *rectConfig) { c.x0, c.y0 = x0, y0 }
}

// WithDirichlet pins the velocity to zero along the given sides
func WithDirichlet(sides ...Side) RectOption {
	return func(c *rectConfig) {
		for _, s := range sides {
			c.dirichlet[s] = true
		}
	}
}

func WithPeriodicX() RectOption { return func(c *rectConfig) { c.periodicX = true } }
func WithPeriodicY() RectOption { return func(c *rectConfig) { c.periodicY = true } }

// WithLand marks every element whose center satisfies isLand as land
func WithLand(isLand func(x, y float64) bool) RectOption {
	return func(c *rectConfig) { c.land = isLand }
}

// WithDistortion moves every vertex through f, producing a curvilinear mesh
func WithDistortion(f func(x, y float64) (float64, float64)) RectOption {
	return func(c *rectConfig) { c.distortion = f }
}

// RectangleMesh builds a uniform nx*ny mesh of the lx*ly rectangle
func RectangleMesh(nx, ny int, lx, ly float64, opts ...RectOption) (*ParametricMesh, error) {
	var cfg rectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if nx < 1 || ny < 1 {
		return nil, ErrDimensions
	}
	m := &ParametricMesh{Nx: nx, Ny: ny}
	m.Vertices = make([][2]float64, m.NumNodes())
	for iy := 0; iy <= ny; iy++ {
		for ix := 0; ix <= nx; ix++ {
			x := cfg.x0 + lx*float64(ix)/float64(nx)
			y := cfg.y0 + ly*float64(iy)/float64(ny)
			if cfg.distortion != nil {
				x, y = cfg.distortion(x, y)
			}
			m.Vertices[m.NodeIndex(ix, iy)] = [2]float64{x, y}
		}
	}
	m.Ice = make([]bool, m.NumElements())
	for eid := range m.Ice {
		m.Ice[eid] = true
		if cfg.land != nil {
			m.Ice[eid] = !cfg.land(m.Center(eid))
		}
	}
	for ix := 0; ix < nx; ix++ {
		if cfg.dirichlet[Bottom] {
			m.Dirichlet[Bottom] = append(m.Dirichlet[Bottom], m.ElementIndex(ix, 0))
		}
		if cfg.dirichlet[Top] {
			m.Dirichlet[Top] = append(m.Dirichlet[Top], m.ElementIndex(ix, ny-1))
		}
		if cfg.periodicY {
			m.Periodic = append(m.Periodic, PeriodicPair{A: m.ElementIndex(ix, ny-1), B: ix, Dir: YPeriodic})
		}
	}
	for iy := 0; iy < ny; iy++ {
		if cfg.dirichlet[Right] {
			m.Dirichlet[Right] = append(m.Dirichlet[Right], m.ElementIndex(nx-1, iy))
		}
		if cfg.dirichlet[Left] {
			m.Dirichlet[Left] = append(m.Dirichlet[Left], m.ElementIndex(0, iy))
		}
		if cfg.periodicX {
			m.Periodic = append(m.Periodic,
				PeriodicPair{A: m.ElementIndex(nx-1, iy), B: m.ElementIndex(0, iy), Dir: XPeriodic})
		}
	}
	if err := m.finalize(); err != nil {
		return nil, err
	}
	return m, nil
}
