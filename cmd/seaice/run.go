package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/notargets/DGSeaIce/dynamics"
	"github.com/notargets/DGSeaIce/element"
	"github.com/notargets/DGSeaIce/mesh"
	"github.com/notargets/DGSeaIce/rheology"
	"github.com/notargets/DGSeaIce/runner"
	"github.com/notargets/DGSeaIce/transport"
	"github.com/notargets/DGSeaIce/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sea-ice dynamics simulation",
	Long: `run advances the ice state for --steps macro steps of length --dt,
starting from the thickness field of the cyclone benchmark and full
concentration. Diagnostics are logged every --log-every steps.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logrus.StandardLogger()
		cfg, err := driverConfig()
		if err != nil {
			return err
		}
		m, err := loadMesh(log)
		if err != nil {
			return err
		}
		atm, ocn, err := forcingFromConfig()
		if err != nil {
			return err
		}
		d, err := dynamics.NewDriver(m, cfg, atm, ocn, log)
		if err != nil {
			return err
		}
		if dev := Cfg.GetString("device"); !strings.EqualFold(dev, "cpu") {
			device, err := utils.CreateDevice(dev)
			if err != nil {
				return err
			}
			defer device.Free()
			c := runner.NewOCCACombiner(device)
			defer c.Free()
			d.Transport.Combiner = c
			log.WithField("mode", device.Mode()).Info("transport stage updates on device")
		}
		d.SetInitial(dynamics.BenchmarkThickness, func(_, _ float64) float64 { return 1 })
		if err = simulate(d); err != nil {
			return fmt.Errorf("simulation stopped: %w", err)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func driverConfig() (dynamics.Config, error) {
	cfg := dynamics.DefaultConfig()
	if path := Cfg.GetString("params"); path != "" {
		params, err := rheology.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.VP, cfg.MEB = params.MEVP, params.MEB
	}
	var err error
	if cfg.Rheology, err = dynamics.ParseRheology(Cfg.GetString("rheology")); err != nil {
		return cfg, err
	}
	if cfg.Scheme, err = transport.ParseScheme(Cfg.GetString("rk")); err != nil {
		return cfg, err
	}
	cg, err := cast.ToIntE(Cfg.Get("cg"))
	if err != nil {
		return cfg, fmt.Errorf("seaice: cg: %w", err)
	}
	if cfg.CG, err = element.ParseCGDegree(cg); err != nil {
		return cfg, err
	}
	dg, err := cast.ToIntE(Cfg.Get("dg"))
	if err != nil {
		return cfg, fmt.Errorf("seaice: dg: %w", err)
	}
	if cfg.DG, err = element.ParseDGDegree(dg); err != nil {
		return cfg, err
	}
	if Cfg.GetBool("on-the-fly") {
		cfg.Mode = element.OnTheFly
	}
	if cfg.Substeps, err = cast.ToIntE(Cfg.Get("substeps")); err != nil {
		return cfg, fmt.Errorf("seaice: substeps: %w", err)
	}
	if cfg.Parallel, err = cast.ToIntE(Cfg.Get("parallel")); err != nil {
		return cfg, fmt.Errorf("seaice: parallel: %w", err)
	}
	if cfg.Alpha, err = cast.ToFloat64E(Cfg.Get("alpha")); err != nil {
		return cfg, fmt.Errorf("seaice: alpha: %w", err)
	}
	if cfg.Beta, err = cast.ToFloat64E(Cfg.Get("beta")); err != nil {
		return cfg, fmt.Errorf("seaice: beta: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadMesh(log logrus.FieldLogger) (*mesh.ParametricMesh, error) {
	if path := Cfg.GetString("mesh"); path != "" {
		return mesh.ReadFile(path, log)
	}
	m, err := rectangleFromConfig()
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"nx": m.Nx, "ny": m.Ny}).Info("generated rectangle mesh")
	return m, nil
}

func forcingFromConfig() (atm, ocn dynamics.Forcing, err error) {
	wind := Cfg.GetStringSlice("wind")
	if len(wind) != 2 {
		return nil, nil, fmt.Errorf("seaice: wind needs two components, got %v", wind)
	}
	var uv [2]float64
	for i, w := range wind {
		if uv[i], err = cast.ToFloat64E(strings.TrimSpace(w)); err != nil {
			return nil, nil, fmt.Errorf("seaice: wind: %w", err)
		}
	}
	return dynamics.ParseForcing(Cfg.GetString("forcing"), uv[0], uv[1])
}

// simulate runs the macro steps, logging diagnostics and driving the
// progress bar
func simulate(d *dynamics.Driver) error {
	dt, err := cast.ToFloat64E(Cfg.Get("dt"))
	if err != nil {
		return fmt.Errorf("seaice: dt: %w", err)
	}
	steps, err := cast.ToIntE(Cfg.Get("steps"))
	if err != nil {
		return fmt.Errorf("seaice: steps: %w", err)
	}
	every, err := cast.ToIntE(Cfg.Get("log-every"))
	if err != nil {
		return fmt.Errorf("seaice: log-every: %w", err)
	}
	if dt <= 0 || steps < 0 {
		return fmt.Errorf("seaice: dt = %g, steps = %d", dt, steps)
	}

	var bar *uiprogress.Bar
	if Cfg.GetBool("progress") && steps > 0 {
		uiprogress.Start()
		defer uiprogress.Stop()
		bar = uiprogress.AddBar(steps).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("t = %8.0fs", float64(b.Current())*dt)
		})
	}

	logrus.WithFields(d.Diagnostics().Fields()).Info("initial state")
	for i := 0; i < steps; i++ {
		if err := d.Step(dt); err != nil {
			return err
		}
		if bar != nil {
			bar.Incr()
		}
		if every > 0 && d.Steps%every == 0 {
			logrus.WithFields(d.Diagnostics().Fields()).Info("diagnostics")
		}
	}
	logrus.WithFields(d.Diagnostics().Fields()).Info("done")
	return nil
}
