package mesh

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallMesh = `ParametricMesh
1.0
2 1
0 0
1 0
2 0
0 1
1 1.5
2 1
landmask 1
1
dirichlet 2
0 3
0 0
`

func TestReadMesh(t *testing.T) {
	m, err := Read(strings.NewReader(smallMesh))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Nx)
	assert.Equal(t, 1, m.Ny)
	assert.Equal(t, 2, m.NumElements())
	assert.Equal(t, 6, m.NumNodes())
	assert.Equal(t, []bool{true, false}, m.Ice)
	assert.Equal(t, []int{0}, m.Dirichlet[Left])
	assert.Equal(t, []int{0}, m.Dirichlet[Bottom])
	assert.Empty(t, m.Dirichlet[Right])

	c := m.Corners(1)
	assert.Equal(t, [2]float64{1, 0}, c[0])
	assert.Equal(t, [2]float64{2, 0}, c[1])
	assert.Equal(t, [2]float64{1, 1.5}, c[2])
	assert.Equal(t, [2]float64{2, 1}, c[3])
	assert.Equal(t, [2]float64{0, 1.5}, m.EdgeVector(1, 4))

	// trapezoid areas 1.25 each
	assert.InDelta(t, 1.25, m.Area(0), 1.e-14)
	assert.InDelta(t, 1.25, m.Area(1), 1.e-14)
	assert.InDelta(t, 2.5, m.TotalArea(), 1.e-14)
	assert.InDelta(t, math.Min(m.H(0), m.H(1)), m.HMin(), 1.e-14)
	assert.InDelta(t, 1.25, m.HY(0), 1.e-14)
	assert.InDelta(t, 0.5*(1+math.Sqrt(1.25)), m.HX(1), 1.e-14)
}

func TestReadMeshErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"tag", "Mesh\n1.0\n1 1\n", ErrFormat},
		{"version", "ParametricMesh\n2.0\n1 1\n", ErrFormat},
		{"zero nx", "ParametricMesh\n1.0\n0 1\n", ErrDimensions},
		{"negative ny", "ParametricMesh\n1.0\n1 -3\n", ErrDimensions},
		{"truncated", "ParametricMesh\n1.0\n1 1\n0 0\n1 0\n0 1\n", ErrTruncated},
		{"bad keyword", "ParametricMesh\n1.0\n1 1\n0 0\n1 0\n0 1\n1 1\nboundary 0\n", ErrSection},
		{"side tag", "ParametricMesh\n1.0\n1 1\n0 0\n1 0\n0 1\n1 1\ndirichlet 1\n0 4\n", ErrSection},
		{"landmask range", "ParametricMesh\n1.0\n1 1\n0 0\n1 0\n0 1\n1 1\nlandmask 1\n1\n", ErrSection},
		{"periodic shape", "ParametricMesh\n1.0\n2 1\n0 0\n1 0\n2 0\n0 1\n1 1\n2 1\nperiodic 1\n0 1 0\n", ErrSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m, err := RectangleMesh(3, 2, 3, 2,
		WithDirichlet(Top, Bottom), WithPeriodicX(),
		WithLand(func(x, y float64) bool { return x < 1 && y > 1 }))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	m2, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, m2.Vertices)
	assert.Equal(t, m.Ice, m2.Ice)
	assert.Equal(t, m.Dirichlet, m2.Dirichlet)
	assert.Equal(t, m.Periodic, m2.Periodic)
	assert.Equal(t, m.EdgesY, m2.EdgesY)
	assert.Equal(t, m.Boundary, m2.Boundary)
}

func TestEdgeLists(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		m, err := RectangleMesh(3, 2, 3, 2)
		require.NoError(t, err)
		require.Len(t, m.EdgesY, 2)
		require.Len(t, m.EdgesX, 3)
		assert.Equal(t, EdgePair{C1: 3, C2: 4, Edge: 5, Mirror: 5}, m.EdgesY[1][0])
		assert.Equal(t, EdgePair{C1: 1, C2: 4, Edge: 4, Mirror: 4}, m.EdgesX[1][0])
		for s := range m.Boundary {
			assert.NotEmpty(t, m.Boundary[s])
		}
		assert.Equal(t, BoundaryEdge{Elem: 5, Edge: 7}, m.Boundary[Right][1])
		assert.Equal(t, BoundaryEdge{Elem: 4, Edge: 7}, m.Boundary[Top][1])
		var interior int
		for _, row := range m.EdgesY {
			interior += len(row)
		}
		for _, col := range m.EdgesX {
			interior += len(col)
		}
		assert.Equal(t, 2*2+3*1, interior)
	})
	t.Run("periodic", func(t *testing.T) {
		m, err := RectangleMesh(3, 2, 3, 2, WithPeriodicX(), WithPeriodicY())
		require.NoError(t, err)
		for s := range m.Boundary {
			assert.Empty(t, m.Boundary[s])
		}
		last := m.EdgesY[1][len(m.EdgesY[1])-1]
		assert.True(t, last.IsPeriodic())
		assert.Equal(t, EdgePair{C1: 5, C2: 3, Edge: 7, Mirror: 4}, last)
		lastX := m.EdgesX[2][len(m.EdgesX[2])-1]
		assert.Equal(t, EdgePair{C1: 5, C2: 2, Edge: 8, Mirror: 2}, lastX)
	})
}

func TestRectangleMeshGeometry(t *testing.T) {
	m, err := RectangleMesh(4, 4, 4, 4)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, m.TotalArea(), 1.e-12)
	assert.InDelta(t, 1.0, m.HMin(), 1.e-12)
	x, y := m.Center(m.ElementIndex(2, 1))
	assert.InDelta(t, 2.5, x, 1.e-14)
	assert.InDelta(t, 1.5, y, 1.e-14)

	_, err = RectangleMesh(0, 4, 1, 1)
	assert.ErrorIs(t, err, ErrDimensions)
}
