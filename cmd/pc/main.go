package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/Werneck0live/personal-controller/internal/admin"
	"github.com/Werneck0live/personal-controller/internal/app"
	"github.com/Werneck0live/personal-controller/internal/config"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/ingest"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
	"github.com/Werneck0live/personal-controller/internal/tui"
)

func main() {
	_ = config.LoadDotEnv()
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pc",
		Usage: "Personal Controller: importação, consultas e assistente",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Storage driver (memory, mongo, badger); defaults to badger at BADGER_PATH",
				EnvVars: []string{"STORAGE_DRIVER"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import a spreadsheet, PDF or photo (or every file of a directory)",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "freight, timesheet, route, photo, pdf or auto",
						Value:   string(importer.KindAuto),
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "File to import",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to import",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent files when importing a directory",
					},
				},
			},
			{
				Name:      "chat",
				Usage:     "Ask the assistant",
				ArgsUsage: "<pergunta>",
				Action:    chatCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "interactive",
						Aliases: []string{"i"},
						Usage:   "Open the interactive chat screen",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session id",
						Value: "cli",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print record counts and summaries",
				Action: statsCommand,
			},
			{
				Name:   "init",
				Usage:  "Create indexes, seed companies and index them",
				Action: initCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the vector index from the stored records",
				Action: reindexCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	config.InitLoggerTo(os.Stderr, config.ParseLevel(c.String("log-level")))
	return nil
}

// loadConfig usa badger quando nada foi escolhido: cada comando é um
// processo novo e o store em memória não sobreviveria entre eles.
func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	cfg.StorageDriver = config.DriverBadger
	if s := c.String("storage"); s != "" {
		cfg.StorageDriver = s
	}
	return cfg
}

func withApp(c *cli.Context, cfg *config.Config, fn func(*app.App) error) error {
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()
	return fn(a)
}

func importCommand(c *cli.Context) error {
	kind, err := importer.ParseKind(c.String("type"))
	if err != nil {
		return err
	}
	file, dir := c.String("file"), c.String("dir")
	if (file == "") == (dir == "") {
		return errors.New("use exactly one of --file or --dir")
	}
	cfg := loadConfig(c)
	if n := c.Int("workers"); n > 0 {
		cfg.ImportWorkers = n
	}
	w := c.App.Writer

	return withApp(c, cfg, func(a *app.App) error {
		if file != "" {
			sum, err := a.Ingest.ImportFile(c.Context, kind, file)
			if err != nil {
				return err
			}
			printSummary(w, sum)
			return nil
		}
		batch, err := a.Ingest.Batch(c.Context, kind, dir)
		if err != nil {
			return err
		}
		for _, s := range batch.Files {
			printSummary(w, s)
		}
		for _, f := range batch.Failed {
			fmt.Fprintf(w, "FALHOU %s: %s\n", f.Path, f.Err)
		}
		fmt.Fprintf(w, "total: %d importados, %d duplicados, %d ignorados, %d indexados\n",
			batch.Imported, batch.Duplicates, batch.Skipped, batch.Indexed)
		return nil
	})
}

func printSummary(w io.Writer, s *ingest.Summary) {
	fmt.Fprintf(w, "%s [%s -> %s]: %d linhas, %d importados, %d duplicados, %d ignorados, %d indexados (%s)\n",
		s.Source, s.Kind, s.Collection, s.Rows, s.Imported, s.Duplicates, s.Skipped, s.Indexed,
		s.Took.Round(time.Millisecond))
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  linha %d: %s\n", e.Line, e.Reason)
	}
}

func chatCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	interactive := c.Bool("interactive")
	if !interactive && strings.TrimSpace(query) == "" {
		return errors.New("missing question (or use -i)")
	}
	w := c.App.Writer

	return withApp(c, loadConfig(c), func(a *app.App) error {
		session := a.Sessions.Get(c.String("session"))
		if interactive {
			_, err := tea.NewProgram(tui.New(a.Assistant, session), tea.WithAltScreen()).Run()
			return err
		}
		resp, err := a.Assistant.Chat(c.Context, session, query)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, resp.Response)
		if len(resp.Sources) > 0 {
			fmt.Fprintf(w, "\nFontes: %s\n", strings.Join(resp.Sources, ", "))
		}
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	w := c.App.Writer
	return withApp(c, loadConfig(c), func(a *app.App) error {
		counts, err := repository.Stats(c.Context, a.Store)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(counts))
		for k := range counts {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(w, "%-16s %d\n", k, counts[k])
		}

		orders, err := repository.ListAll[models.FreightOrder](c.Context, a.Store, models.CollectionFreightOrders)
		if err != nil {
			return err
		}
		var receita float64
		for _, o := range orders {
			receita += o.ValorFrete
		}
		fmt.Fprintf(w, "receita de frete: %.2f\n", receita)
		return nil
	})
}

func initCommand(c *cli.Context) error {
	w := c.App.Writer
	return withApp(c, loadConfig(c), func(a *app.App) error {
		res, err := admin.Init(c.Context, a.Store, a.Indexer, slog.Default())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "empresas: %d criadas, %d já existiam, %d inválidas\n",
			len(res.Created), res.Existed, res.Invalid)
		return nil
	})
}

func reindexCommand(c *cli.Context) error {
	w := c.App.Writer
	return withApp(c, loadConfig(c), func(a *app.App) error {
		n, err := admin.Reindex(c.Context, a.Indexer, a.Pub, slog.Default())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d trechos indexados\n", n)
		return nil
	})
}
