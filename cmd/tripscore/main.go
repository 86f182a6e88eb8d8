package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Black-And-White-Club/tripscore/app"
	"github.com/Black-And-White-Club/tripscore/config"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/pkg/jwt"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "tripscore",
		Usage: "golf trip scores, standings and prizes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"TRIPSCORE_CONFIG"},
			},
		},
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the API server and event router",
				Action: serve,
			},
			{
				Name:      "standings",
				Usage:     "print results, or a day leaderboard",
				ArgsUsage: "[day selector]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "segment", Value: "fullRound", Usage: "front9, back9 or fullRound"},
				},
				Action: printStandings,
			},
			{
				Name:  "export",
				Usage: "write the results workbook and prize chart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: ".", Usage: "output directory"},
				},
				Action: export,
			},
			{
				Name:  "token",
				Usage: "issue an admin token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Value: "admin"},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to jwt.default_ttl"},
				},
				Action: issueToken,
			},
			{
				Name:   "reset",
				Usage:  "clear both ledgers",
				Action: reset,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := app.WithShutdownSignal(c.Context)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, observability.New(config.ToObsConfig(cfg)), app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	runErr := application.Run(ctx)
	closeErr := application.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// withApp builds an app without HTTP routes for one-shot commands.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	obs := observability.NewNoop()
	obs.Logger = observability.NewLogger(os.Stderr, config.ToObsConfig(cfg))

	application, err := app.NewApp(c.Context, cfg, obs, app.Options{DisableHTTP: true})
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer application.Close() //nolint:errcheck

	return fn(c.Context, application)
}

func printStandings(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		svc := a.Modules.StandingsModule.StandingsService
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")

		if selector := c.Args().First(); selector != "" {
			lb, err := svc.DayLeaderboard(selector, c.String("segment"))
			if err != nil {
				return err
			}
			return enc.Encode(lb)
		}
		return enc.Encode(svc.Results())
	})
}

func export(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		svc := a.Modules.StandingsModule.StandingsService
		dir := c.String("dir")

		workbook, err := svc.ExportWorkbook(ctx)
		if err != nil {
			return err
		}
		chart, err := svc.PrizeChartPNG(ctx)
		if err != nil {
			return err
		}

		files := map[string][]byte{"results.xlsx": workbook, "prizes.png": chart}
		for name, data := range files {
			p := filepath.Join(dir, name)
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", p, err)
			}
			fmt.Fprintln(c.App.Writer, p)
		}
		return nil
	})
}

func issueToken(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret (or JWT_SECRET) is not set")
	}
	svc := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.DefaultTTL)

	ttl := c.Duration("ttl")
	token, err := svc.GenerateToken(c.String("subject"), jwt.RoleAdmin, ttl)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = svc.DefaultTTL()
	}
	fmt.Fprintf(c.App.Writer, "%s\n# expires %s\n", token, time.Now().Add(ttl).UTC().Format(time.RFC3339))
	return nil
}

func reset(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		if err := a.Modules.StandingsModule.StandingsService.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "ledgers cleared")
		return nil
	})
}
