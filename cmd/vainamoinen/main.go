package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	if err := newApp().Run(args); err != nil {
		return fmt.Errorf("vainamoinen: %w", err)
	}
	return nil
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "vainamoinen",
		Usage:   "abuse rate limiting and audit logs for delegated moderation",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Usage:   "KV store URL (mem://, redis://, pebble://, bolt://, sqlite://, postgres://)",
			Value:   "bolt://data/vainamoinen/kv.bolt",
			EnvVars: []string{"VAINAMOINEN_STORE", "DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			Usage:   "connection pool size for SQL stores",
			Value:   8,
			EnvVars: []string{"VAINAMOINEN_MAX_DB_CONNECTIONS"},
		},
		&cli.BoolFlag{
			Name:    "db-tracing",
			Usage:   "trace SQL store queries",
			EnvVars: []string{"VAINAMOINEN_DB_TRACING"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"VAINAMOINEN_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format (text or json)",
			EnvVars: []string{"VAINAMOINEN_LOG_FMT"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to serve metrics on while the command runs (disabled when empty)",
			EnvVars: []string{"VAINAMOINEN_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "username of the acting user",
			EnvVars: []string{"VAINAMOINEN_USER"},
		},
		&cli.BoolFlag{
			Name:    "moderator",
			Usage:   "treat the acting user as a community moderator",
			EnvVars: []string{"VAINAMOINEN_MODERATOR"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "full URL of slack webhook for automatic ban notifications",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.BoolFlag{
			Name:    "disable-post-remove-restore",
			EnvVars: []string{"VAINAMOINEN_DISABLE_POST_REMOVE_RESTORE"},
		},
		&cli.BoolFlag{
			Name:    "disable-comment-remove-restore",
			EnvVars: []string{"VAINAMOINEN_DISABLE_COMMENT_REMOVE_RESTORE"},
		},
		&cli.IntFlag{
			Name:    "ban-days",
			Usage:   "duration of automatic bans",
			Value:   7,
			EnvVars: []string{"VAINAMOINEN_BAN_DAYS"},
		},
	}

	app.Before = func(cctx *cli.Context) error {
		if addr := cctx.String("metrics-listen"); addr != "" {
			go func() {
				if err := runMetrics(addr); err != nil {
					slog.Error("failed to start metrics endpoint", "err", err)
				}
			}()
		}
		return nil
	}

	app.Commands = []*cli.Command{
		recordCmd,
		classifyCmd,
		logCmd,
		countsCmd,
		myActionsCmd,
		targetLogCmd,
		freezeCmd,
		frozenCmd,
		unbanCmd,
		clearLogCmd,
		stripLegacyCountsCmd,
	}

	return app
}
