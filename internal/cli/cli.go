package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/YadongOfficial/pkgx/internal/config"
	"github.com/YadongOfficial/pkgx/internal/core"
	"github.com/YadongOfficial/pkgx/internal/printer"
	"github.com/YadongOfficial/pkgx/internal/virtualenv"
)

var (
	noColorFlag bool
	verboseFlag bool
)

// New builds and returns the root CLI command,
// configuring all subcommands and flags for the pkgx cli.
func New(cfg *config.Config) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "pkgx",
		Usage:                 "Resolve the implicit virtual environment of a directory",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
			&urfavecli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "Enable debug logging",
				Destination: &verboseFlag,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag)
			if verboseFlag {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			envCommand(cfg),
		},
	}
}

func envCommand(cfg *config.Config) *urfavecli.Command {
	var jsonFlag bool

	return &urfavecli.Command{
		Name:      "env",
		Usage:     "Print the virtual environment resolved for a directory",
		ArgsUsage: "[dir]",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:        "json",
				Usage:       "Emit the resolved environment as JSON",
				Destination: &jsonFlag,
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to determine working directory: %w", err)
				}
				dir = wd
			}

			resolver := virtualenv.New(core.OSFileSystem{}, cfg)
			venv, err := resolver.Resolve(ctx, dir)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(venv)
			}
			writeHuman(venv)
			return nil
		},
	}
}

// envJSON is the stable JSON shape of a resolved environment.
type envJSON struct {
	Requirements []string          `json:"requirements"`
	Teafiles     []string          `json:"teafiles"`
	SrcRoot      string            `json:"srcroot"`
	Version      string            `json:"version,omitempty"`
	Env          map[string]string `json:"env"`
}

func writeJSON(venv *virtualenv.VirtualEnv) error {
	out := envJSON{
		Requirements: make([]string, 0, len(venv.Requirements)),
		Teafiles:     venv.Teafiles,
		SrcRoot:      venv.SrcRoot,
		Env:          venv.Env,
	}
	for _, req := range venv.Requirements {
		out.Requirements = append(out.Requirements, req.String())
	}
	if venv.Version != nil {
		out.Version = venv.Version.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeHuman(venv *virtualenv.VirtualEnv) {
	printer.PrintField("srcroot", venv.SrcRoot)
	if venv.Version != nil {
		printer.PrintField("version", venv.Version.String())
	}

	for _, req := range venv.Requirements {
		fmt.Printf("  %s %s\n", printer.Success("+"), req.String())
	}

	keys := make([]string, 0, len(venv.Env))
	for k := range venv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s=%s\n", printer.Bold(k), venv.Env[k])
	}

	if len(venv.Teafiles) > 0 {
		printer.PrintField("markers", "")
		for _, tf := range venv.Teafiles {
			fmt.Printf("  %s\n", printer.Faint(tf))
		}
	}
}
