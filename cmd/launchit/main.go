// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/launchit"
	"github.com/poiesic/launchit/config"
	"github.com/poiesic/launchit/core"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "launchit",
		Usage: "Quick launcher for programs and files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a rotating file instead of stderr",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the settings file",
				Value:   config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB catalog directory (overrides the settings file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run one query and print the results",
				ArgsUsage: "<text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Print every kept result instead of one page",
					},
				},
			},
			{
				Name:   "repl",
				Usage:  "Read queries from stdin and print results as they change",
				Action: replCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the program catalog",
				Action: reindexCommand,
			},
			{
				Name:  "catalog",
				Usage: "Inspect and edit the program catalog",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List catalog entries",
						Action: catalogListCommand,
					},
					{
						Name:      "disable",
						Usage:     "Hide a program from results",
						ArgsUsage: "<path>",
						Action:    catalogToggleCommand(false),
					},
					{
						Name:      "enable",
						Usage:     "Offer a hidden program again",
						ArgsUsage: "<path>",
						Action:    catalogToggleCommand(true),
					},
				},
			},
			{
				Name:   "init",
				Usage:  "Write the default settings file",
				Action: initCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing settings file",
					},
				},
			},
		},
	}
}

// loadSettings reads the settings file and applies command line overrides.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		settings.DatabasePath = db
	}
	return settings, nil
}

func openLauncher(c *cli.Context, opts ...launchit.LauncherOption) (*launchit.Launcher, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	opts = append(opts, launchit.WithSettings(settings))
	l, err := launchit.NewLauncher(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open launcher: %w", err)
	}
	return l, nil
}

func queryCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("query text is required")
	}

	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	l.Submit(text)
	l.Wait()

	list := l.Results()
	if c.Bool("all") {
		list = l.Store().Snapshot()
	}
	printResults(c.App.Writer, list, -1)
	return nil
}

func replCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Resets run inline so printed selections are current
	l, err := openLauncher(c, launchit.WithScheduler(func(fn func()) { fn() }))
	if err != nil {
		return err
	}
	defer l.Close()
	l.StartIndexing()

	out := c.App.Writer
	fmt.Fprintln(out, "Type a query. :n/:p move, :pg N pages, :menu shows actions, :run executes, :q quits.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.App.Reader)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := replLine(out, l, line); quit {
				return nil
			}
		}
	}
}

// replLine handles one input line. It returns true when the user quits.
func replLine(out io.Writer, l *launchit.Launcher, line string) bool {
	sel := l.Selection()
	switch fields := strings.Fields(line); {
	case line == ":q":
		return true
	case line == ":n":
		sel.MoveBy(1)
	case line == ":p":
		sel.MoveBy(-1)
	case len(fields) == 2 && fields[0] == ":pg":
		var pages int
		if _, err := fmt.Sscanf(fields[1], "%d", &pages); err != nil {
			fmt.Fprintf(out, "bad page count %q\n", fields[1])
			return false
		}
		sel.MoveByPage(pages * len(l.Results()))
	case line == ":menu":
		items, err := l.ContextMenu(sel.CurrentIndex())
		if err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		for _, item := range items {
			fmt.Fprintf(out, "  %s: %s %s\n", item.Title, item.Command, strings.Join(item.Args, " "))
		}
		return false
	case line == ":run":
		if err := l.Execute(sel.CurrentIndex()); err != nil {
			fmt.Fprintln(out, err)
		}
		return false
	default:
		l.Submit(line)
		l.Wait()
	}
	printResults(out, l.Results(), sel.CurrentIndex())
	return false
}

func printResults(out io.Writer, list []core.Candidate, selected int) {
	if len(list) == 0 {
		fmt.Fprintln(out, "no results")
		return
	}
	for i, c := range list {
		marker := " "
		if i == selected {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %2d. %-40s %s [%s %d]\n", marker, i+1, c.Title, c.Subtitle, c.SourceID, c.Score)
	}
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	l, err := openLauncher(c, launchit.WithIndexProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer l.Close()

	count, err := l.IndexNow(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Indexed %d programs\n", count)
	return nil
}

func catalogListCommand(c *cli.Context) error {
	ctx := context.Background()

	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	out := c.App.Writer
	return l.CatalogRepository().ForEach(ctx, func(entry *core.ProgramEntry) error {
		state := "enabled"
		if !entry.Enabled {
			state = "disabled"
		}
		_, err := fmt.Fprintf(out, "%-8s %-30s %s\n", state, entry.Name, entry.Path)
		return err
	})
}

func catalogToggleCommand(enabled bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return fmt.Errorf("program path is required")
		}

		l, err := openLauncher(c)
		if err != nil {
			return err
		}
		defer l.Close()

		if err := l.CatalogRepository().SetEnabled(context.Background(), core.EntryIDForPath(path), enabled); err != nil {
			return fmt.Errorf("failed to update %s: %w", path, err)
		}
		return nil
	}
}

func initCommand(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.DefaultSettings().WriteYAML(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	var w io.Writer = os.Stderr
	if path := c.String("log-file"); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
