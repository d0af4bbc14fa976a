package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nathoo/widgetcore/cli"
	"github.com/nathoo/widgetcore/engine"
	"github.com/nathoo/widgetcore/engine/manager"
	"github.com/nathoo/widgetcore/engine/snapshot"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/internal/config"
	"github.com/nathoo/widgetcore/internal/logging"
	"github.com/nathoo/widgetcore/loader"
	"github.com/nathoo/widgetcore/tui"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	seed       int64
}

// session is a loaded scene plus everything needed to build engines for it.
type session struct {
	cfg     config.Config
	log     zerolog.Logger
	defs    *state.Defs
	options []engine.Option
	close   func()
}

// NewRootCmd creates the root command for widgetcore.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	var g globalFlags
	var plain, trace bool
	var script string

	rootCmd := &cobra.Command{
		Use:   "widgetcore <scene_directory>",
		Short: "Drive a widget scene through the widget state machine",
		Long: `widgetcore loads a Lua scene of UI widgets and lets you drive them through
the state machine: show, hide, pause, queue and tick, with every state change
printed as it happens.

Runs the dashboard when stdout is a terminal, a plain REPL otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := script == "" && !plain && isTerminal()
			s, err := openSession(cmd, g, args[0], interactive)
			if err != nil {
				return err
			}
			defer s.close()

			eng := engine.New(s.defs, s.options...)

			if interactive {
				return tui.Run(eng, s.defs, tui.Options{
					TickRate:      s.cfg.Runtime.TickRate,
					AutoTick:      s.cfg.TUI.AutoTick,
					DumpDir:       s.cfg.DumpDir,
					EngineOptions: s.options,
				})
			}

			c := cli.New(eng, s.defs)
			c.Options = s.options
			c.DumpDir = s.cfg.DumpDir
			c.Out = cmd.OutOrStdout()
			c.Trace = trace
			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				c.In = f
				c.EchoInput = true
			} else {
				c.In = cmd.InOrStdin()
			}
			c.Run()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default $HOME/.config/widgetcore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().Int64Var(&g.seed, "seed", 0, "override runtime.seed")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "use the line-oriented REPL instead of the dashboard")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "print reactions and events after each command")
	rootCmd.Flags().StringVar(&script, "script", "", "play commands from a file and exit")

	rootCmd.AddCommand(
		newValidateCmd(&g),
		newSoakCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "widgetcore %s\n", version)
				fmt.Fprintf(out, "commit: %s\n", commit)
				fmt.Fprintf(out, "built: %s\n", buildDate)
			},
		},
	)

	return rootCmd
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <scene_directory>",
		Short:         "Load a scene, report warnings and errors, and exit",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, *g, args[0], false)
			if err != nil {
				return err
			}
			defer s.close()

			eng := engine.New(s.defs, s.options...)
			if errs := eng.StartupErrors(); len(errs) > 0 {
				return fmt.Errorf("scene %s failed to start:\n  %s", args[0], strings.Join(errs, "\n  "))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s: %d widget(s), %d reaction(s), %d registered at start\n",
				s.defs.Scene.Title, len(s.defs.Widgets), len(s.defs.Reactions), eng.Manager.Len())
			return nil
		},
	}
}

func newSoakCmd(g *globalFlags) *cobra.Command {
	var steps int
	var dump string

	cmd := &cobra.Command{
		Use:   "soak <scene_directory>",
		Short: "Drive random commands through a scene and check invariants",
		Long: `soak issues seeded random commands against the scene and checks the
manager invariants after every step. The same seed always produces the same
run. Exits non-zero on the first violation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, *g, args[0], false)
			if err != nil {
				return err
			}
			defer s.close()

			eng := engine.New(s.defs, s.options...)
			report := eng.Soak(steps)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scene: %s\nseed: %d\nsteps: %d\nevents: %d\n",
				s.defs.Scene.Title, eng.Seed(), report.Steps, report.Events)
			verbs := make([]string, 0, len(report.Verbs))
			for v := range report.Verbs {
				verbs = append(verbs, v)
			}
			sort.Strings(verbs)
			for _, v := range verbs {
				fmt.Fprintf(out, "  %-10s %d\n", v, report.Verbs[v])
			}
			fmt.Fprintf(out, "violations: %d\n", len(report.Violations))
			for _, v := range report.Violations {
				fmt.Fprintf(out, "  %s\n", v)
			}

			if dump != "" {
				path, err := snapshot.WriteFile(s.cfg.DumpDir, dump, eng.Snapshot())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "snapshot: %s\n", path)
			}

			if len(report.Violations) > 0 {
				return fmt.Errorf("soak found %d invariant violation(s)", len(report.Violations))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1000, "number of random commands")
	cmd.Flags().StringVar(&dump, "dump", "", "write the final snapshot under this name")
	return cmd
}

// openSession loads config, builds the logger and loads the scene. The
// dashboard owns the terminal, so interactive sessions only log to a file.
func openSession(cmd *cobra.Command, g globalFlags, dir string, interactive bool) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.Runtime.Seed = g.seed
	}

	s := &session{cfg: cfg, close: func() {}}
	lc := cfg.LogConfig()
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		lc.Output = f
		s.close = func() { f.Close() }
		s.log = logging.New(lc)
	case interactive:
		s.log = zerolog.Nop()
	default:
		lc.Output = cmd.ErrOrStderr()
		s.log = logging.New(lc)
	}
	ctx := logging.WithScene(logging.WithContext(cmd.Context(), s.log), dir)
	cmd.SetContext(ctx)
	s.log = *logging.FromContext(ctx)

	defs, err := loader.Load(dir, loader.WithLogger(s.log))
	if err != nil {
		s.close()
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	s.defs = defs
	s.options = []engine.Option{
		engine.WithLogger(s.log),
		engine.WithSeed(cfg.Runtime.Seed),
		engine.WithManagerOptions(
			manager.WithTieBreak(cfg.TieBreak()),
			manager.WithStrictConfig(cfg.Runtime.StrictConfig),
		),
	}
	return s, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
