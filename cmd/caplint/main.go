// Command caplint is the CLI wrapper around the core: analyze, fix and
// format subcommands over a directory of CAPL sources, grounded on the
// teacher's cmd/lci/main.go urfave/cli/v2 app shape (global config/root
// flags layered with per-command overrides, JSON output behind a
// --json flag).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/core"
	"github.com/standardbeagle/caplint/internal/discover"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/persist"
	"github.com/standardbeagle/caplint/internal/report"
	"github.com/standardbeagle/caplint/internal/types"
	"github.com/standardbeagle/caplint/internal/version"
)

func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	cfg, err := config.LoadKDL(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if disabled := c.StringSlice("disable"); len(disabled) > 0 {
		cfg.DisabledRules = append(cfg.DisabledRules, disabled...)
	}
	if fixOnly := c.StringSlice("fix-only"); len(fixOnly) > 0 {
		cfg.FixOnly = fixOnly
	}
	return cfg, nil
}

func outputFormat(c *cli.Context) report.Format {
	if c.Bool("json") {
		return report.JSON
	}
	return report.Text
}

func rootDir(c *cli.Context) (string, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	return filepath.Abs(root)
}

func main() {
	app := &cli.App{
		Name:                   "caplint",
		Usage:                  "Static analyzer, auto-fixer and formatter for CAPL test scripts",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file name (not read: .caplint.kdl under --root is always loaded)", Value: config.FileName},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Project root directory"},
			&cli.StringSliceFlag{Name: "disable", Usage: "Disable a rule id (repeatable)"},
			&cli.StringSliceFlag{Name: "fix-only", Usage: "Restrict auto-fix to these rule ids (repeatable)"},
			&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
			&cli.StringFlag{Name: "db", Usage: "Persist facts to this sqlite file (default: none)"},
		},
		Commands: []*cli.Command{
			{Name: "analyze", Aliases: []string{"lint"}, Usage: "Report lint issues without changing files", Action: analyzeCommand},
			{Name: "fix", Usage: "Apply auto-fixes in place", Action: fixCommand},
			{
				Name:  "format",
				Usage: "Reformat files in place",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "check", Usage: "Report violations without writing changes"},
				},
				Action: formatCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func targetFiles(c *cli.Context, root string, cfg *config.Config) ([]string, error) {
	args := c.Args().Slice()
	if len(args) > 0 {
		out := make([]string, len(args))
		for i, a := range args {
			out[i] = a
		}
		return out, nil
	}
	return discover.Files(root, cfg)
}

func analyzeCommand(c *cli.Context) error {
	root, err := rootDir(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	files, err := targetFiles(c, root, cfg)
	if err != nil {
		return err
	}

	p, err := parser.NewParser()
	if err != nil {
		return err
	}
	defer p.Close()

	known := make([]types.FileID, len(files))
	for i, f := range files {
		known[i] = types.FileID(f)
	}
	proj := core.NewProject(p, cfg, known)

	var db *persist.DB
	if dbPath := c.String("db"); dbPath != "" {
		db, err = persist.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open persist db: %w", err)
		}
		defer db.Close()
	}

	hasErrors := false
	format := outputFormat(c)
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		rep, err := proj.AnalyzeFile(types.FileID(f), src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			hasErrors = true
			continue
		}
		for _, is := range rep.Issues {
			if is.Severity == types.SeverityError {
				hasErrors = true
			}
		}
		if err := report.WriteAnalysis(os.Stdout, rep, format); err != nil {
			return err
		}
		if db != nil {
			hash := fmt.Sprintf("%016x", xxhash.Sum64(src))
			if err := db.SyncFile(types.FileID(f), hash, proj.Store()); err != nil {
				return fmt.Errorf("persist %s: %w", f, err)
			}
		}
	}
	if db != nil {
		if err := db.SyncEdges(proj.Store().Edges()); err != nil {
			return fmt.Errorf("persist edges: %w", err)
		}
	}

	os.Exit(report.ExitCode(hasErrors))
	return nil
}

func fixCommand(c *cli.Context) error {
	root, err := rootDir(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	files, err := targetFiles(c, root, cfg)
	if err != nil {
		return err
	}

	p, err := parser.NewParser()
	if err != nil {
		return err
	}
	defer p.Close()

	format := outputFormat(c)
	hasRemaining := false
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		rep, err := core.Fix(p, cfg, types.FileID(f), src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			hasRemaining = true
			continue
		}
		if len(rep.RemainingIssues) > 0 {
			hasRemaining = true
		}
		if err := os.WriteFile(f, rep.NewBytes, 0o644); err != nil {
			return err
		}
		if err := report.WriteFix(os.Stdout, types.FileID(f), rep, format); err != nil {
			return err
		}
	}

	os.Exit(report.ExitCode(hasRemaining))
	return nil
}

func formatCommand(c *cli.Context) error {
	root, err := rootDir(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	files, err := targetFiles(c, root, cfg)
	if err != nil {
		return err
	}

	checkOnly := c.Bool("check")
	format := outputFormat(c)
	anyChanged := false
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		rep := core.Format(src, cfg, checkOnly)
		if rep.Changed {
			anyChanged = true
		}
		if !checkOnly && rep.Changed {
			if err := os.WriteFile(f, rep.NewBytes, 0o644); err != nil {
				return err
			}
		}
		if err := report.WriteFormat(os.Stdout, types.FileID(f), rep, format); err != nil {
			return err
		}
	}

	os.Exit(report.ExitCode(checkOnly && anyChanged))
	return nil
}
