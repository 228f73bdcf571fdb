// Package main is the entry point for the twintree scenario runner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/dshills/twintree/internal/config"
	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/scenario"
	"github.com/dshills/twintree/internal/script"
	"github.com/fatih/color"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	ConfigPath   string
	ScenarioPath string
	Watch        bool
	JSON         bool
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "twintree - model/view conversion scenario runner\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  twintree run [-config file] [-watch] [-json] scenario.json\n")
	fmt.Fprintf(w, "  twintree ops\n")
	fmt.Fprintf(w, "  twintree version\n")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "twintree %s\n", version)
		return 0
	case "ops":
		for _, op := range scenario.Ops() {
			fmt.Fprintln(stdout, op)
		}
		return 0
	case "run":
	default:
		usage(stderr)
		return 2
	}

	var opts options
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.BoolVar(&opts.Watch, "watch", false, "Re-run when the scenario, config or scripts change")
	fs.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return 2
	}
	opts.ScenarioPath = fs.Arg(0)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !opts.Watch {
		if err := runOnce(opts, cfg, cfg.NewLogger(stderr), stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := watch(ctx, opts, cfg, stderr, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runOnce runs the scenario file once and prints the report.
func runOnce(opts options, cfg *config.Config, log *logging.Logger, out io.Writer) error {
	data, err := os.ReadFile(opts.ScenarioPath)
	if err != nil {
		return err
	}
	sc, err := scenario.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.ScenarioPath, err)
	}

	var rt *script.Runtime
	defer func() {
		if rt != nil {
			rt.Close()
		}
	}()
	env := scenario.Env{
		Options: cfg.Options(log),
		Setup: func(down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
			if err := cfg.Register(down, up); err != nil {
				return err
			}
			if len(cfg.Scripts) == 0 {
				return nil
			}
			rt = script.NewRuntime(down, up, script.WithLogger(log))
			return rt.LoadFiles(cfg.Scripts...)
		},
	}

	rep, runErr := scenario.Run(sc, env)
	if rep == nil {
		return runErr
	}
	if opts.JSON {
		js, err := rep.JSON()
		if err != nil {
			return err
		}
		if _, err := out.Write(js); err != nil {
			return err
		}
	} else {
		printReport(out, rep)
	}
	return runErr
}

var (
	stepColor    = color.New(color.FgCyan, color.Bold)
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
	sameColor    = color.New(color.Faint)
)

// printReport prints each step with a diff of the view against the
// previous state.
func printReport(out io.Writer, rep *scenario.Report) {
	stepColor.Fprintf(out, "initial\n")
	fmt.Fprintf(out, "  %s\n", rep.Initial)
	prev := rep.Initial
	for i, st := range rep.Steps {
		stepColor.Fprintf(out, "#%d %s\n", st.Index, st.Op)
		if rep.Changed(i) {
			removedColor.Fprintf(out, "- %s\n", prev)
			addedColor.Fprintf(out, "+ %s\n", st.View)
		} else {
			sameColor.Fprintf(out, "= %s\n", st.View)
		}
		prev = st.View
	}
	if rep.Data != "" {
		stepColor.Fprintf(out, "data\n")
		fmt.Fprintf(out, "  %s\n", rep.Data)
	}
}

// watchFiles lists the inputs whose change triggers a new run.
func watchFiles(opts options, cfg *config.Config) []string {
	files := append([]string{opts.ScenarioPath}, cfg.Scripts...)
	if opts.ConfigPath != "" {
		files = append(files, opts.ConfigPath)
	}
	return files
}

// watch runs the scenario, then again whenever one of its inputs changes.
// Configuration changes are reloaded; an invalid file keeps the previous
// configuration. A reload rebuilds the logger, and the watcher too when the
// script list changed.
func watch(ctx context.Context, opts options, cfg *config.Config, stderr, out io.Writer) error {
	log := cfg.NewLogger(stderr)
	if err := runOnce(opts, cfg, log, out); err != nil {
		log.Error("run failed: %v", err)
	}
	for {
		files := watchFiles(opts, cfg)
		w, err := config.NewWatcher(config.DefaultDebounce, files...)
		if err != nil {
			return err
		}
		round, restart := context.WithCancel(ctx)
		err = w.Run(round, func(path string) {
			log.WithField("file", path).Info("change detected")
			if opts.ConfigPath != "" {
				next, err := config.Load(opts.ConfigPath)
				if err != nil {
					log.Error("config reload failed: %v", err)
				} else {
					cfg = next
					log = cfg.NewLogger(stderr)
					log.WithField("config", opts.ConfigPath).Info("config reloaded")
					if !slices.Equal(files, watchFiles(opts, cfg)) {
						restart()
					}
				}
			}
			if err := runOnce(opts, cfg, log, out); err != nil {
				log.Error("run failed: %v", err)
			}
		}, func(err error) {
			log.Error("watch: %v", err)
		})
		restart()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
}
