package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/linkorg/internal"
	"github.com/starford/linkorg/internal/models"
	"github.com/starford/linkorg/internal/parser"
	"github.com/starford/linkorg/internal/render"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Serve the HTTP API (default)",
			Action: serve,
		},
		{
			Name:   "config",
			Usage:  "Print the effective configuration as YAML",
			Action: printConfig,
		},
		{
			Name:      "files",
			Usage:     "List candidate note files",
			ArgsUsage: "[dir]",
			Action:    listFiles,
		},
		{
			Name:      "parse",
			Usage:     "Parse one note file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Usage:   "Output format: json or tree",
					Value:   "json",
				},
			},
			Action: parseFile,
		},
		{
			Name:   "index",
			Usage:  "Synchronize the index with the notes directory",
			Action: reindex,
		},
		{
			Name:      "search",
			Usage:     "Search indexed links",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"n"},
					Usage:   "Maximum number of hits",
					Value:   20,
				},
			},
			Action: search,
		},
		{
			Name:   "mcp",
			Usage:  "Serve the MCP tools over stdio",
			Action: serveMCP,
		},
	}
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openApp loads the config and opens the application for one-shot commands.
func openApp(cmd *cli.Command) (*internal.App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Open(internal.WithConfig(cfg), internal.WithLogger(logger), internal.WithVersion(version))
}

func printConfig(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(output(cmd))
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func listFiles(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	files, err := app.Service.ListFiles(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	w := output(cmd)
	for _, f := range files {
		fmt.Fprintln(w, f)
	}
	return nil
}

func parseFile(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("parse: file argument is required")
	}
	format := cmd.String("format")
	if format != "json" && format != "tree" {
		return fmt.Errorf("parse: unknown format %q", format)
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path = resolveNote(cfg.Notes.Dir, path)

	doc, err := parser.ParseFile(path, logger)
	if err != nil {
		return err
	}
	if format == "tree" {
		_, err = fmt.Fprintln(output(cmd), render.Tree(doc))
		return err
	}
	return writeJSON(output(cmd), doc)
}

// resolveNote returns path unchanged when it exists or is absolute;
// otherwise a relative path is tried against the notes directory.
func resolveNote(notesDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(notesDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

func reindex(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Service.Reindex(ctx)
	if err != nil {
		return err
	}
	w := output(cmd)
	fmt.Fprintf(w, "run %s: scanned %d, indexed %d, unchanged %d, removed %d, failed %d\n",
		report.RunID, report.Scanned, report.Indexed, report.Unchanged, report.Removed, len(report.Failures))
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Message)
	}
	return nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	hits, err := app.Service.SearchLinks(ctx, cmd.Args().First(), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	w := output(cmd)
	for _, h := range hits {
		link := render.LinkLabel(models.Link{
			Name:        h.Name,
			Target:      h.Target,
			ReadTill:    h.ReadTill,
			Description: h.Description,
			Likeability: h.Likeability,
		})
		if h.Heading != "" {
			fmt.Fprintf(w, "%s:%d [%s] %s\n", h.Path, h.LineNumber, h.Heading, link)
		} else {
			fmt.Fprintf(w, "%s:%d %s\n", h.Path, h.LineNumber, link)
		}
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	)
}
