package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/DGSeaIce/mesh"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetArgs([]string{"version"})
	require.NoError(t, Root.Execute())
	assert.Equal(t, "seaice v"+Version+"\n", out.String())
}

func TestParseSide(t *testing.T) {
	s, err := parseSide(" Top")
	require.NoError(t, err)
	assert.Equal(t, mesh.Top, s)
	_, err = parseSide("north")
	assert.Error(t, err)
}

func TestMeshThenRun(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "box.mesh")
	Root.SetArgs([]string{"mesh", "--nx", "4", "--ny", "3", "--lx", "4e4", "--ly", "3e4",
		"--dirichlet", "bottom,top", "--periodic-x", "-o", file})
	require.NoError(t, Root.Execute())

	f, err := os.Open(file)
	require.NoError(t, err)
	m, err := mesh.Read(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 4, m.Nx)
	assert.Equal(t, 3, m.Ny)
	assert.Len(t, m.Dirichlet[mesh.Bottom], 4)
	assert.Len(t, m.Dirichlet[mesh.Left], 0)
	assert.Len(t, m.Periodic, 3)
	assert.InDelta(t, 4e4*3e4, m.TotalArea(), 1.e-3)

	Root.SetArgs([]string{"mesh", "--periodic-x", "--dirichlet", "left", "-o", file})
	assert.Error(t, Root.Execute())

	// a closed box runs with the momentum solver
	file = filepath.Join(dir, "closed.mesh")
	Root.SetArgs([]string{"mesh", "--nx", "4", "--ny", "4", "--lx", "4e4", "--ly", "4e4",
		"--dirichlet", "bottom,right,top,left", "--periodic-x=false", "-o", file})
	require.NoError(t, Root.Execute())
	Root.SetArgs([]string{"run", "--mesh", file, "--cg", "1", "--dg", "0", "--rk", "rk1",
		"--steps", "2", "--dt", "60", "--substeps", "20", "--forcing", "uniform",
		"--wind", "5,0", "--progress=false", "--log-every", "1"})
	require.NoError(t, Root.Execute())
}

func TestDriverConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		key string
		val interface{}
	}{
		{"rheology", "evp"},
		{"rk", "rk4"},
		{"cg", 3},
		{"dg", 5},
		{"substeps", 0},
	} {
		t.Run(tc.key, func(t *testing.T) {
			old := Cfg.Get(tc.key)
			Cfg.Set(tc.key, tc.val)
			defer Cfg.Set(tc.key, old)
			_, err := driverConfig()
			assert.Error(t, err)
		})
	}
}

func TestRunReturnsErrors(t *testing.T) {
	// the default --dirichlet closes all four sides of the generated box
	base := []string{"run", "--mesh=", "--nx", "2", "--ny", "2", "--lx", "1e4", "--ly", "1e4",
		"--cg", "1", "--dg", "0", "--rk", "rk1", "--rheology", "mevp", "--substeps", "2",
		"--steps", "1", "--dt", "60", "--progress=false"}
	defer func() {
		Root.SetArgs(append(base, "--device", "cpu"))
		require.NoError(t, Root.Execute())
	}()

	Root.SetArgs(append(base, "--device", "bogus"))
	err := Root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	Root.SetArgs(append(base, "--device", "cpu", "--dt=-60"))
	err = Root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation stopped")
}
