package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the release of the seaice command
const Version = "0.1.0"

// Cfg holds the configuration of the current invocation
var Cfg *viper.Viper

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	options = []option{
		{
			name:       "config",
			usage:      "configuration file (TOML, YAML or JSON) holding any of the flags below",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name:       "verbose",
			usage:      "log every time step",
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name:       "nx",
			usage:      "elements in x of a generated rectangle mesh",
			defaultVal: 32,
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), runCmd.Flags()},
		},
		{
			name:       "ny",
			usage:      "elements in y of a generated rectangle mesh",
			defaultVal: 32,
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), runCmd.Flags()},
		},
		{
			name:       "lx",
			usage:      "domain length in x [m]",
			defaultVal: 512000.0,
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), runCmd.Flags()},
		},
		{
			name:       "ly",
			usage:      "domain length in y [m]",
			defaultVal: 512000.0,
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), runCmd.Flags()},
		},
		{
			name:       "dirichlet",
			usage:      "sides of a generated mesh with zero velocity (bottom, right, top, left)",
			defaultVal: []string{"bottom", "right", "top", "left"},
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), runCmd.Flags()},
		},
		{
			name:       "periodic-x",
			usage:      "identify the left and right sides of a generated mesh",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{meshCmd.Flags()},
		},
		{
			name:       "output",
			usage:      "mesh file to write",
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{meshCmd.Flags()},
		},
		{
			name:       "mesh",
			usage:      "mesh file; a rectangle is generated from --nx --ny --lx --ly when empty",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "params",
			usage:      "TOML file with [mevp] and [meb] rheology parameters",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "rheology",
			usage:      "mevp or meb",
			defaultVal: "mevp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "cg",
			usage:      "velocity degree, 1 or 2",
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "dg",
			usage:      "degree of the advected fields, 0, 1 or 2",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "rk",
			usage:      "transport time integrator, rk1, rk2 or rk3",
			defaultVal: "rk2",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "on-the-fly",
			usage:      "build element mass matrices on demand instead of caching them",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "dt",
			usage:      "macro time step [s]",
			defaultVal: 120.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "steps",
			usage:      "number of macro time steps",
			defaultVal: 720,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "substeps",
			usage:      "mEVP iterations or MEB substeps per macro step",
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "alpha",
			usage:      "mEVP stress relaxation",
			defaultVal: 800.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "beta",
			usage:      "mEVP velocity relaxation",
			defaultVal: 800.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "forcing",
			usage:      "benchmark, uniform or none",
			defaultVal: "benchmark",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "wind",
			usage:      "wind velocity u,v [m/s] of the uniform forcing",
			defaultVal: []string{"10", "0"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "device",
			usage:      "cpu, or an OCCA backend (auto, serial, openmp, cuda) for the transport stage updates",
			defaultVal: "cpu",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "parallel",
			usage:      "goroutines per parallel loop, 0 for GOMAXPROCS",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "log-every",
			usage:      "log diagnostics every n macro steps",
			defaultVal: 60,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "progress",
			usage:      "show a progress bar",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()
	Cfg.SetEnvPrefix("SEAICE")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	Cfg.AutomaticEnv()

	for _, opt := range options {
		for i, set := range opt.flagsets {
			if i != 0 {
				set.AddFlag(opt.flagsets[0].Lookup(opt.name))
				continue
			}
			switch v := opt.defaultVal.(type) {
			case string:
				set.StringP(opt.name, opt.shorthand, v, opt.usage)
			case []string:
				set.StringSliceP(opt.name, opt.shorthand, v, opt.usage)
			case bool:
				set.BoolP(opt.name, opt.shorthand, v, opt.usage)
			case int:
				set.IntP(opt.name, opt.shorthand, v, opt.usage)
			case float64:
				set.Float64P(opt.name, opt.shorthand, v, opt.usage)
			default:
				panic("invalid argument type")
			}
		}
	}

	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(meshCmd)
}

// bindFlags binds the flags of the command being run. Flags shared between
// subcommands are bound per invocation so the last binding wins.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if e := Cfg.BindPFlag(f.Name, f); e != nil && err == nil {
			err = e
		}
	})
	return err
}

// setConfig binds the flags and reads the configuration file, if there is one
func setConfig(cmd *cobra.Command) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("seaice: problem reading configuration file: %w", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Root is the main command
var Root = &cobra.Command{
	Use:   "seaice",
	Short: "Sea-ice dynamics on structured quadrilateral meshes.",
	Long: `seaice advances sea-ice velocity, thickness and concentration with a
continuous Galerkin momentum solver (mEVP or MEB rheology) and discontinuous
Galerkin upwind transport.

Configuration can be given on the command line, in a configuration file passed
with --config, or in environment variables named SEAICE_<flag>, with dashes
replaced by underscores.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return setConfig(cmd) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("seaice v%s\n", Version)
	},
	DisableAutoGenTag: true,
}
