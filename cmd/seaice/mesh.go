package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/notargets/DGSeaIce/mesh"
)

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Write a rectangle mesh file",
	Long: `mesh writes a uniform nx*ny mesh of the lx*ly rectangle in the
ParametricMesh format read by run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := Cfg.GetString("output")
		if out == "" {
			return fmt.Errorf("seaice: --output is required")
		}
		m, err := rectangleFromConfig()
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("seaice: %w", err)
		}
		if err = m.Write(f); err != nil {
			f.Close()
			return fmt.Errorf("seaice: writing %s: %w", out, err)
		}
		if err = f.Close(); err != nil {
			return fmt.Errorf("seaice: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"file": out,
			"nx":   m.Nx,
			"ny":   m.Ny,
		}).Info("wrote mesh")
		return nil
	},
	DisableAutoGenTag: true,
}

func parseSide(name string) (mesh.Side, error) {
	for s := mesh.Bottom; s <= mesh.Left; s++ {
		if strings.EqualFold(strings.TrimSpace(name), s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("seaice: unknown side %q, want bottom, right, top or left", name)
}

func rectangleFromConfig() (*mesh.ParametricMesh, error) {
	nx, err := cast.ToIntE(Cfg.Get("nx"))
	if err != nil {
		return nil, fmt.Errorf("seaice: nx: %w", err)
	}
	ny, err := cast.ToIntE(Cfg.Get("ny"))
	if err != nil {
		return nil, fmt.Errorf("seaice: ny: %w", err)
	}
	lx, err := cast.ToFloat64E(Cfg.Get("lx"))
	if err != nil {
		return nil, fmt.Errorf("seaice: lx: %w", err)
	}
	ly, err := cast.ToFloat64E(Cfg.Get("ly"))
	if err != nil {
		return nil, fmt.Errorf("seaice: ly: %w", err)
	}
	if lx <= 0 || ly <= 0 {
		return nil, fmt.Errorf("seaice: domain size %g x %g", lx, ly)
	}

	var (
		sides []mesh.Side
		opts  []mesh.RectOption
	)
	for _, name := range Cfg.GetStringSlice("dirichlet") {
		if name == "" {
			continue
		}
		s, err := parseSide(name)
		if err != nil {
			return nil, err
		}
		sides = append(sides, s)
	}
	if Cfg.GetBool("periodic-x") {
		for _, s := range sides {
			if s == mesh.Left || s == mesh.Right {
				return nil, fmt.Errorf("seaice: periodic x and a Dirichlet %s side", s)
			}
		}
		opts = append(opts, mesh.WithPeriodicX())
	}
	opts = append(opts, mesh.WithDirichlet(sides...))
	return mesh.RectangleMesh(nx, ny, lx, ly, opts...)
}
