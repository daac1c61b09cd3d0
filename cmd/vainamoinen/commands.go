package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/vainamoinen-app/vainamoinen/abuse"
	"github.com/vainamoinen-app/vainamoinen/engine"
	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/platform"
	"github.com/vainamoinen-app/vainamoinen/target"
	"github.com/vainamoinen-app/vainamoinen/targetlog"
	"github.com/vainamoinen-app/vainamoinen/util/cliutil"

	cli "github.com/urfave/cli/v2"
)

type session struct {
	Engine *engine.Engine
	Bans   *platform.KVBanList
	Logger *slog.Logger

	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Opens the configured store and builds an engine acting as --user, with bans held in the store.
func openSession(cctx *cli.Context) (*session, error) {
	opts := cliutil.LogOptions{
		LogLevel:  cctx.String("log-level"),
		LogFormat: cctx.String("log-format"),
	}
	if os.Getenv("VAINAMOINEN_LOG_FILE") == "" {
		// stdout carries command output
		opts.Writer = cctx.App.ErrWriter
	}
	logger, err := cliutil.SetupSlog(opts)
	if err != nil {
		return nil, err
	}
	s := &session{Logger: logger}
	s.closers = append(s.closers, configOTEL("vainamoinen"))

	kv, err := cliutil.OpenStore(cctx.String("store"), cliutil.StoreOptions{
		MaxConnections: cctx.Int("max-db-connections"),
		DBTracing:      cctx.Bool("db-tracing"),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s.closers = append(s.closers, func() {
		if err := kvstore.Close(kv); err != nil {
			logger.Error("failed to close store", "err", err)
		}
	})

	s.Bans = platform.NewKVBanList(kv)
	p := &platform.OfflinePlatform{
		Username:  cctx.String("user"),
		Moderator: cctx.Bool("moderator"),
		Checker:   platform.NewCachedBanChecker(s.Bans, 1024, time.Minute),
		Bans:      s.Bans,
	}

	cfg := engine.DefaultConfig()
	cfg.RemoveRestorePosts = !cctx.Bool("disable-post-remove-restore")
	cfg.RemoveRestoreComments = !cctx.Bool("disable-comment-remove-restore")
	cfg.BanDurationDays = cctx.Int("ban-days")

	ui := &engine.WriterUI{W: cctx.App.Writer, Logger: logger}
	s.Engine = engine.New(kv, p, ui, cfg, logger)
	if u := cctx.String("slack-webhook-url"); u != "" {
		s.Engine.SetNotifier(engine.NewSlackNotifier(u))
	}
	return s, nil
}

func parseTarget(cctx *cli.Context) (target.Ref, error) {
	if cctx.Args().Len() != 2 {
		return target.Ref{}, fmt.Errorf("expected <type> <id> arguments")
	}
	ref := target.NewRef(target.Type(cctx.Args().Get(0)), cctx.Args().Get(1))
	if !ref.Type.Valid() {
		return target.Ref{}, fmt.Errorf("target type must be %q or %q", target.Post, target.Comment)
	}
	return ref, nil
}

var recordCmd = &cli.Command{
	Name:  "record",
	Usage: "record an action performed elsewhere for the acting user and apply escalation",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "action",
			Usage:    "action identifier (eg: post-remove, comment-lock)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "permalink of the target",
		},
		&cli.StringFlag{
			Name:  "reason",
			Usage: "reason given for the action",
		},
		&cli.StringFlag{
			Name:  "target",
			Usage: "target reference as <type>:<id>; when set, the action is also appended to the target log",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		act := history.Action{
			Action: cctx.String("action"),
			URL:    engine.FormatPermalink(cctx.String("url")),
			Reason: cctx.String("reason"),
		}
		var ref target.Ref
		if t := cctx.String("target"); t != "" {
			ref, err = target.ParseRef(t)
			if err != nil {
				return err
			}
			act.TargetID = ref.ID
		}

		res, err := s.Engine.ReportAction(ctx, act)
		if err != nil {
			return err
		}
		if ref.ID != "" {
			if err := s.Engine.Targets.Append(ctx, ref, targetlog.Entry{
				Action:   act.Action,
				Reason:   res.Reason,
				URL:      act.URL,
				Username: cctx.String("user"),
			}); err != nil {
				s.Logger.Error("failed to append target log", "target", ref.String(), "err", err)
			}
		}
		if out := res.Abuse; out != nil && out.Record != nil {
			fmt.Fprintf(cctx.App.Writer, "hourly=%d daily=%d tier=%s banned=%t\n",
				out.Record.HourlyCount, out.Record.DailyCount, out.Tier, out.BannedNow || out.Record.Banned)
		}
		return nil
	},
}

var classifyCmd = &cli.Command{
	Name:      "classify",
	Usage:     "show the escalation message for a pair of hourly and daily counts",
	ArgsUsage: "<hourly> <daily>",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 2 {
			return fmt.Errorf("expected <hourly> <daily> arguments")
		}
		hourly, err := strconv.Atoi(cctx.Args().Get(0))
		if err != nil {
			return fmt.Errorf("invalid hourly count: %w", err)
		}
		daily, err := strconv.Atoi(cctx.Args().Get(1))
		if err != nil {
			return fmt.Errorf("invalid daily count: %w", err)
		}
		msg, ok := abuse.Classify(hourly, daily)
		if !ok {
			fmt.Fprintln(cctx.App.Writer, "none")
			return nil
		}
		exceedHourly, exceedDaily := abuse.ExceedsBan(hourly, daily)
		fmt.Fprintf(cctx.App.Writer, "%s\n%s\n", msg.Tier, msg.Text)
		if exceedHourly || exceedDaily {
			fmt.Fprintf(cctx.App.Writer, "ban: hourly=%t daily=%t\n", exceedHourly, exceedDaily)
		}
		return nil
	},
}

func reportCommand(name, usage string, fn func(cctx *cli.Context, s *session) (string, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(cctx *cli.Context) error {
			s, err := openSession(cctx)
			if err != nil {
				return err
			}
			defer s.Close()
			text, err := fn(cctx, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer, text)
			return nil
		},
	}
}

var logCmd = reportCommand("log", "print every user's recent action history", func(cctx *cli.Context, s *session) (string, error) {
	return s.Engine.ActionLogSnapshot(cctx.Context)
})

var countsCmd = reportCommand("counts", "print every user's lifetime action counts", func(cctx *cli.Context, s *session) (string, error) {
	return s.Engine.ActionCountsSnapshot(cctx.Context)
})

var myActionsCmd = reportCommand("my-actions", "print the acting user's counts and recent history", func(cctx *cli.Context, s *session) (string, error) {
	rep, err := s.Engine.MyActions(cctx.Context)
	if err != nil {
		return "", err
	}
	return "Totals:\n" + rep.Totals + "\n\nRecent:\n" + rep.Recent, nil
})

var targetLogCmd = &cli.Command{
	Name:      "target-log",
	Usage:     "print the actions taken on one post or comment",
	ArgsUsage: "<type> <id>",
	Action: func(cctx *cli.Context) error {
		ref, err := parseTarget(cctx)
		if err != nil {
			return err
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()
		text, err := s.Engine.TargetLog(cctx.Context, ref)
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, text)
		return nil
	},
}

var freezeCmd = &cli.Command{
	Name:      "freeze",
	Usage:     "toggle the freeze flag on a post or comment (moderators only)",
	ArgsUsage: "<type> <id>",
	Action: func(cctx *cli.Context) error {
		ref, err := parseTarget(cctx)
		if err != nil {
			return err
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var res *engine.Result
		if ref.Type == target.Post {
			res = s.Engine.TogglePostFreeze(cctx.Context, ref.ID)
		} else {
			res = s.Engine.ToggleCommentFreeze(cctx.Context, ref.ID)
		}
		if res.Rejected != "" {
			if res.Err != nil {
				return res.Err
			}
			return fmt.Errorf("freeze toggle refused: %s", res.Rejected)
		}
		return nil
	},
}

var frozenCmd = &cli.Command{
	Name:      "frozen",
	Usage:     "report whether a post or comment is frozen",
	ArgsUsage: "<type> <id>",
	Action: func(cctx *cli.Context) error {
		ref, err := parseTarget(cctx)
		if err != nil {
			return err
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()
		frozen, err := s.Engine.Freeze.IsFrozen(cctx.Context, ref)
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, frozen)
		return nil
	},
}

var unbanCmd = &cli.Command{
	Name:      "unban",
	Usage:     "lift a ban held in the store",
	ArgsUsage: "<username>",
	Action: func(cctx *cli.Context) error {
		username := cctx.Args().First()
		if username == "" {
			return fmt.Errorf("expected <username> argument")
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Bans.Unban(cctx.Context, username)
	},
}

var clearLogCmd = &cli.Command{
	Name:  "clear-log",
	Usage: "delete all action histories and target logs, keeping counts",
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Engine.ClearActionLog(cctx.Context)
	},
}

var stripLegacyCountsCmd = &cli.Command{
	Name:  "strip-legacy-counts",
	Usage: "remove combined remove/restore counters left by older versions",
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()
		_, err = s.Engine.StripLegacyCounters(cctx.Context)
		return err
	},
}
