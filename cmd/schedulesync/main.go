package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/redeemerbc/schedule-sync/internal/auth"
	"github.com/redeemerbc/schedule-sync/internal/config"
	"github.com/redeemerbc/schedule-sync/internal/export"
	"github.com/redeemerbc/schedule-sync/internal/gsuite"
	"github.com/redeemerbc/schedule-sync/internal/schedule"
	"github.com/redeemerbc/schedule-sync/internal/sync"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "schedulesync",
		Usage: "Sync a spreadsheet schedule grid into Google Calendar events.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging."},
		},
		Commands: []*cli.Command{
			syncCommand(),
			exportCommand(),
			authCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "Path to JSON config file."},
		&cli.StringFlag{Name: "spreadsheet", Usage: "Master schedule spreadsheet ID (overrides config file and SPREADSHEET_ID)."},
		&cli.StringFlag{Name: "credentials", Usage: "Path to Google OAuth credentials JSON (overrides config file and GOOGLE_CREDENTIALS_PATH)."},
		&cli.StringFlag{Name: "token", Usage: "Path to the stored OAuth token (overrides config file and TOKEN_PATH)."},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile the schedule against its calendars and apply the changes.",
		Flags: append(configFlags(),
			&cli.BoolFlag{Name: "dry-run", Usage: "Log the planned actions without applying them."},
			&cli.StringFlag{Name: "calendar", Usage: "Sync only the named calendar ID."},
			&cli.StringFlag{Name: "schedule", Usage: "Run on a cron schedule (e.g. \"0 6 * * *\") instead of once."},
		),
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.Bool("verbose"))
			cfg, err := config.LoadConfig(c.String("config"), c.String("spreadsheet"), c.String("credentials"), c.String("token"))
			if err != nil {
				return err
			}

			run := func() error {
				return runSync(c.Context, logger, cfg, c.Bool("dry-run"), c.String("calendar"))
			}

			if spec := c.String("schedule"); spec != "" {
				scheduler := cron.New()
				if _, err := scheduler.AddFunc(spec, func() {
					if err := run(); err != nil {
						logger.Error("Scheduled sync failed", "error", err)
					}
				}); err != nil {
					return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
				}
				logger.Info("Running on schedule.", "cron", spec)
				scheduler.Run()
				return nil
			}
			return run()
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the desired schedule events as an ICS file, without touching any calendar.",
		Flags: append(configFlags(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default: stdout)."},
		),
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.Bool("verbose"))
			cfg, err := config.LoadConfig(c.String("config"), c.String("spreadsheet"), c.String("credentials"), c.String("token"))
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			httpClient, err := authenticate(c.Context, cfg)
			if err != nil {
				return err
			}
			grid, err := fetchGrid(c.Context, logger, httpClient, cfg)
			if err != nil {
				return err
			}

			out := os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return export.WriteICS(out, grid, loc)
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Run the OAuth flow and store the token for later runs.",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.Bool("verbose"))
			cfg, err := config.LoadConfig(c.String("config"), c.String("spreadsheet"), c.String("credentials"), c.String("token"))
			if err != nil {
				return err
			}
			if _, err := authenticate(c.Context, cfg); err != nil {
				return err
			}
			logger.Info("Authorization complete.", "token", cfg.TokenPath)
			return nil
		},
	}
}

// authenticate loads the OAuth credentials and returns an HTTP client,
// running the interactive browser flow when no stored token exists yet.
func authenticate(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	clientID, clientSecret, err := config.LoadGoogleCredentials(cfg.GoogleCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load Google credentials: %w", err)
	}

	oauthConfig := auth.NewOAuthConfig(clientID, clientSecret)
	tokenStore := auth.NewFileTokenStore(cfg.TokenPath)
	httpClient, err := auth.GetAuthenticatedClient(ctx, oauthConfig, tokenStore)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return httpClient, nil
}

// fetchGrid reads the schedule sheet and parses it into schedule columns,
// logging any columns that were excluded.
func fetchGrid(ctx context.Context, logger *slog.Logger, httpClient *http.Client, cfg *config.Config) (*schedule.Grid, error) {
	sheetsClient, err := gsuite.NewSheetsClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}

	raw, err := sheetsClient.Grid(ctx, cfg.SpreadsheetID, cfg.SheetIndex)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched schedule sheet.",
		"sheet", raw.Title, "columns", len(raw.Columns), "headerHeight", raw.HeaderHeight)

	grid, skipped, err := schedule.ParseGrid(raw.Columns, raw.HeaderHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet %q: %w", raw.Title, err)
	}
	for _, colErr := range skipped {
		if errors.Is(colErr, schedule.ErrNoCalendarLink) {
			logger.Debug("Column has no calendar link, skipping.", "column", colErr.Column)
		} else {
			logger.Warn("Column excluded from sync.", "column", colErr.Column, "error", colErr.Err)
		}
	}
	return grid, nil
}

func runSync(ctx context.Context, logger *slog.Logger, cfg *config.Config, dryRun bool, onlyCalendar string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	httpClient, err := authenticate(ctx, cfg)
	if err != nil {
		return err
	}

	grid, err := fetchGrid(ctx, logger, httpClient, cfg)
	if err != nil {
		return err
	}

	peopleClient, err := gsuite.NewPeopleClient(ctx, httpClient)
	if err != nil {
		return err
	}
	contacts, err := peopleClient.Contacts(ctx)
	if err != nil {
		return err
	}
	logger.Info("Fetched contact directory.", "count", len(contacts))

	calendarClient, err := gsuite.NewCalendarClient(ctx, httpClient)
	if err != nil {
		return err
	}

	syncer := sync.NewSyncer(logger, calendarClient, gsuite.NewPeopleMapper(contacts), loc, dryRun, cfg.RequestTimeout())

	if onlyCalendar != "" {
		groups := grid.Groups()
		group, ok := groups[onlyCalendar]
		if !ok {
			return fmt.Errorf("calendar %q not found in schedule; schedule feeds: %s",
				onlyCalendar, strings.Join(grid.CalendarIDs(), ", "))
		}
		return syncer.SyncGroup(ctx, onlyCalendar, group)
	}
	return syncer.SyncAll(ctx, grid)
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
