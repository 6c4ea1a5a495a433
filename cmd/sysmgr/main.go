package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/presets"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/server"
)

const usage = `usage: sysmgr [-v] <command> [flags] [args]

commands:
  catalog [-format text|json|yaml] [-repo id]   build the repository catalog
  repos                                         list configured repositories
  query <repo>                                  list packages in one repository
  count <name>                                  count instances of a container
  launch [-mode terminal|pty] <name>            resume or create a container
  presets                                       list container presets
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("sysmgr", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "debug logging")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "sysmgr: %v\n", err)
		return 1
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewFromSettings(level, true)
	defer logger.Sync()

	comp, err := server.Build(cfg, logger.Logger, nil)
	if err != nil {
		fmt.Fprintf(stderr, "sysmgr: %v\n", err)
		return 1
	}
	defer comp.Sessions.Shutdown()

	cli := &cli{comp: comp, logger: logger.Logger, stdout: stdout, stderr: stderr}
	err = cli.dispatch(ctx, global.Arg(0), global.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(stderr, usage)
		return 2
	default:
		fmt.Fprintf(stderr, "sysmgr: %v\n", err)
		return 1
	}
}

type cli struct {
	comp   *server.Components
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "catalog":
		return c.catalog(ctx, args)
	case "repos":
		return c.repos(ctx)
	case "query":
		if len(args) != 1 {
			return errUsage
		}
		return c.query(ctx, args[0])
	case "count":
		if len(args) != 1 {
			return errUsage
		}
		return c.count(ctx, args[0])
	case "launch":
		return c.launch(ctx, args)
	case "presets":
		return writePresets(c.stdout, c.comp.Presets)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (c *cli) catalog(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", "text", "output format: text, json or yaml")
	repo := fs.String("repo", "", "only print this repository")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := c.comp.Catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	if *repo != "" {
		pkgs, ok := catalog.Packages(*repo)
		if !ok {
			return fmt.Errorf("repository not in catalog: %s", *repo)
		}
		catalog = &packages.Catalog{
			Entries: []packages.Entry{{Repository: *repo, Packages: pkgs}},
			BuiltAt: catalog.BuiltAt,
		}
	}
	return writeCatalog(c.stdout, catalog, *format)
}

func (c *cli) repos(ctx context.Context) error {
	repos, err := c.comp.Lister.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range repos {
		fmt.Fprintln(c.stdout, r.ID)
	}
	return nil
}

func (c *cli) query(ctx context.Context, repo string) error {
	pkgs, err := c.comp.Querier.Query(ctx, repo)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		fmt.Fprintln(c.stdout, p)
	}
	return nil
}

func (c *cli) count(ctx context.Context, name string) error {
	n, err := c.comp.Resolver.Count(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, n)
	return nil
}

func (c *cli) launch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	mode := fs.String("mode", string(c.comp.Mode), "terminal opens a terminal window, pty runs in this terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	m := containers.Mode(*mode)
	if err := m.Validate(); err != nil {
		return err
	}

	if m == containers.ModeTerminal {
		launch, err := c.comp.Resolver.Resolve(ctx, fs.Arg(0), m)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "%s %s (pid %d)\n", launch.Action, launch.Name, launch.PID)
		return nil
	}

	decision, err := c.comp.Resolver.Decide(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	// The caller's own terminal stands in for the PTY
	cmd := c.comp.Launcher.Interactive(decision)
	c.logger.Debug("Attaching", zap.Strings("argv", cmd.Argv()))
	proc := exec.Command(cmd.Name, cmd.Args...)
	proc.Stdin, proc.Stdout, proc.Stderr = os.Stdin, c.stdout, c.stderr
	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d", cmd.Name, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %w", containers.ErrLaunch, err)
	}
	return nil
}

// catalogDocument is the json/yaml rendering: repository id to package names
type catalogDocument struct {
	Repositories map[string][]string `json:"repositories" yaml:"repositories"`
	Failures     []packages.Failure  `json:"failures,omitempty" yaml:"failures,omitempty"`
	Excluded     []string            `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	BuiltAt      time.Time           `json:"built_at" yaml:"built_at"`
}

func writeCatalog(w io.Writer, catalog *packages.Catalog, format string) error {
	doc := catalogDocument{
		Repositories: catalog.Map(),
		Failures:     catalog.Failures,
		Excluded:     catalog.Excluded,
		BuiltAt:      catalog.BuiltAt,
	}

	switch format {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text":
		for _, e := range catalog.Entries {
			fmt.Fprintf(w, "%s (%d)\n", e.Repository, len(e.Packages))
			for _, p := range e.Packages {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		for _, f := range catalog.Failures {
			fmt.Fprintf(w, "! %s: %s\n", f.Repository, f.Message)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, format)
	}
}

func writePresets(w io.Writer, list []presets.Preset) error {
	width := 0
	for _, p := range list {
		width = max(width, len(p.Label))
	}
	for _, p := range list {
		fmt.Fprintf(w, "%-*s  %s\n", width, p.Label, p.Image)
	}
	return nil
}
