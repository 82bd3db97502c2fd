package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	FormatTag     = "ParametricMesh"
	FormatVersion = "1.0"
)

var (
	ErrFormat     = errors.New("mesh: wrong file format")
	ErrDimensions = errors.New("mesh: wrong mesh dimensions")
	ErrTruncated  = errors.New("mesh: unexpected end of file")
	ErrSection    = errors.New("mesh: malformed section")
)

type tokenReader struct {
	sc *bufio.Scanner
}

func (tr *tokenReader) next() (string, bool) {
	if !tr.sc.Scan() {
		return "", false
	}
	return tr.sc.Text(), true
}

func (tr *tokenReader) float() (float64, error) {
	tok, ok := tr.next()
	if !ok {
		return 0, ErrTruncated
	}
	return strconv.ParseFloat(tok, 64)
}

func (tr *tokenReader) int() (int, error) {
	tok, ok := tr.next()
	if !ok {
		return 0, ErrTruncated
	}
	return strconv.Atoi(tok)
}

// Read parses a mesh in ParametricMesh text format
func Read(r io.Reader) (*ParametricMesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	tr := &tokenReader{sc: sc}

	if tag, _ := tr.next(); tag != FormatTag {
		return nil, fmt.Errorf("%w: found %q, %q expected", ErrFormat, tag, FormatTag)
	}
	if ver, _ := tr.next(); ver != FormatVersion {
		return nil, fmt.Errorf("%w: version %q, %q expected", ErrFormat, ver, FormatVersion)
	}
	nx, err := tr.int()
	if err != nil {
		return nil, fmt.Errorf("%w: reading nx: %v", ErrDimensions, err)
	}
	ny, err := tr.int()
	if err != nil {
		return nil, fmt.Errorf("%w: reading ny: %v", ErrDimensions, err)
	}
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("%w: (nx,ny) = (%d,%d)", ErrDimensions, nx, ny)
	}

	m := &ParametricMesh{Nx: nx, Ny: ny}
	m.Vertices = make([][2]float64, m.NumNodes())
	for i := range m.Vertices {
		for d := 0; d < 2; d++ {
			if m.Vertices[i][d], err = tr.float(); err != nil {
				if errors.Is(err, ErrTruncated) {
					return nil, fmt.Errorf("%w: %d of %d nodes read", ErrTruncated, i, len(m.Vertices))
				}
				return nil, fmt.Errorf("%w: node %d: %v", ErrFormat, i, err)
			}
		}
	}

	for {
		key, ok := tr.next()
		if !ok {
			break
		}
		if err = m.readSection(tr, key); err != nil {
			return nil, err
		}
	}
	if err = sc.Err(); err != nil {
		return nil, err
	}
	if err = m.finalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ParametricMesh) readSection(tr *tokenReader, key string) error {
	count, err := tr.int()
	if err != nil || count < 0 {
		return fmt.Errorf("%w: %s count", ErrSection, key)
	}
	ne := m.NumElements()
	elem := func() (int, error) {
		eid, err := tr.int()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrSection, key, err)
		}
		if eid < 0 || eid >= ne {
			return 0, fmt.Errorf("%w: %s: element %d out of range", ErrSection, key, eid)
		}
		return eid, nil
	}
	switch key {
	case "landmask":
		if m.Ice == nil {
			m.Ice = make([]bool, ne)
			for i := range m.Ice {
				m.Ice[i] = true
			}
		}
		for i := 0; i < count; i++ {
			eid, err := elem()
			if err != nil {
				return err
			}
			m.Ice[eid] = false
		}
	case "dirichlet":
		for i := 0; i < count; i++ {
			eid, err := elem()
			if err != nil {
				return err
			}
			side, err := tr.int()
			if err != nil || side < 0 || side > 3 {
				return fmt.Errorf("%w: dirichlet side tag of element %d", ErrSection, eid)
			}
			m.Dirichlet[side] = append(m.Dirichlet[side], eid)
		}
	case "periodic":
		for i := 0; i < count; i++ {
			a, err := elem()
			if err != nil {
				return err
			}
			b, err := elem()
			if err != nil {
				return err
			}
			dir, err := tr.int()
			if err != nil || dir < 0 || dir > 1 {
				return fmt.Errorf("%w: periodic direction of pair (%d,%d)", ErrSection, a, b)
			}
			m.Periodic = append(m.Periodic, PeriodicPair{A: a, B: b, Dir: Direction(dir)})
		}
	default:
		return fmt.Errorf("%w: unknown keyword %q", ErrSection, key)
	}
	return nil
}

// ReadFile opens and parses a mesh file, logging a summary to log when it
// is not nil.
func ReadFile(path string, log logrus.FieldLogger) (*ParametricMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: could not open mesh file: %w", err)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"file":      path,
			"nx":        m.Nx,
			"ny":        m.Ny,
			"elements":  m.NumElements(),
			"nodes":     m.NumNodes(),
			"land":      m.NumElements() - m.NumIce(),
			"periodic":  len(m.Periodic),
			"dirichlet": len(m.Dirichlet[0]) + len(m.Dirichlet[1]) + len(m.Dirichlet[2]) + len(m.Dirichlet[3]),
		}).Info("read mesh")
	}
	return m, nil
}

// Write emits m in the format accepted by Read. Empty sections are omitted.
func (m *ParametricMesh) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\n%d\t%d\n", FormatTag, FormatVersion, m.Nx, m.Ny)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%s\t%s\n",
			strconv.FormatFloat(v[0], 'g', -1, 64), strconv.FormatFloat(v[1], 'g', -1, 64))
	}
	if land := m.NumElements() - m.NumIce(); land > 0 {
		fmt.Fprintf(bw, "landmask %d\n", land)
		for eid, ice := range m.Ice {
			if !ice {
				fmt.Fprintf(bw, "%d\n", eid)
			}
		}
	}
	var nd int
	for s := range m.Dirichlet {
		nd += len(m.Dirichlet[s])
	}
	if nd > 0 {
		fmt.Fprintf(bw, "dirichlet %d\n", nd)
		for s := range m.Dirichlet {
			for _, eid := range m.Dirichlet[s] {
				fmt.Fprintf(bw, "%d\t%d\n", eid, s)
			}
		}
	}
	if len(m.Periodic) > 0 {
		fmt.Fprintf(bw, "periodic %d\n", len(m.Periodic))
		for _, p := range m.Periodic {
			fmt.Fprintf(bw, "%d\t%d\t%d\n", p.A, p.B, p.Dir)
		}
	}
	return bw.Flush()
}
