// Package main provides the recoverytoken binary entry point.
// It exposes the sobriety milestone calculator, the circle roster store and
// gift attribution over a NATS-backed document store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/charmas3r/recovery-token-project-sub000/config"
	"github.com/charmas3r/recovery-token-project-sub000/docstore"
	"github.com/charmas3r/recovery-token-project-sub000/gifts"
	"github.com/charmas3r/recovery-token-project-sub000/roster"
	"github.com/charmas3r/recovery-token-project-sub000/sobriety"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "recoverytoken"
)

// conflictRetries bounds re-fetch-and-retry attempts after a concurrent
// roster write. The store itself never retries; this is the caller side of
// that contract.
const conflictRetries = 3

type rootFlags struct {
	configPath  string
	natsURL     string
	logLevel    string
	metricsAddr string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Sobriety milestone and circle roster engine",
		Long: `Recoverytoken tracks sobriety progress for you and the people in your
support circle, and attributes purchased token gifts to the right person.

It provides:
- Milestone calculation from a clean date
- Circle roster management in a versioned NATS KV document
- Gift attribution over an exported order feed`,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.natsURL, "nats-url", "", "External NATS server URL (default: embedded server)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Prometheus listen address (empty = disabled)")

	cmd.AddCommand(versionCmd(), statusCmd(), circleCmd(flags), giftsCmd(flags))
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup configures logging and resolves the layered configuration with
// flag overrides applied.
func setup(flags *rootFlags) (*config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(flags.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
	}
	if err != nil {
		return nil, nil, err
	}

	if flags.natsURL != "" {
		cfg.NATS.URL = flags.natsURL
		cfg.NATS.Embedded = false
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	return cfg, logger, nil
}

// startApp brings up the full stack for commands that need storage.
func startApp(ctx context.Context, flags *rootFlags) (*App, error) {
	cfg, logger, err := setup(flags)
	if err != nil {
		return nil, err
	}

	app := NewApp(cfg, logger)
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func statusCmd() *cobra.Command {
	var (
		cleanDate string
		asOf      string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show milestone progress for a clean date",
		RunE: func(cmd *cobra.Command, args []string) error {
			clean, err := roster.ParseDate(cleanDate)
			if err != nil {
				return err
			}

			now := time.Now()
			if asOf != "" {
				d, err := roster.ParseDate(asOf)
				if err != nil {
					return err
				}
				now = d.Time()
			}

			result, err := sobriety.CalculateMilestones(clean.Time(), now)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cleanDate, "clean-date", "", "Clean date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Calculate as of this date instead of today (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("clean-date")
	return cmd
}

func printReport(w io.Writer, result sobriety.Result) {
	bd := result.Breakdown
	fmt.Fprintf(w, "%d days sober (%dy %dm %dd)\n", result.TotalDays, bd.Years, bd.Months, bd.Days)

	for _, a := range result.Achieved {
		fmt.Fprintf(w, "  %s %s — achieved %s\n", a.Milestone.Emoji, a.Milestone.Label, a.DateAchieved.Format(time.DateOnly))
	}
	if result.Next != nil {
		fmt.Fprintf(w, "  next: %s in %d days (%s)\n",
			result.Next.Milestone.Label, result.Next.DaysRemaining, result.Next.TargetDate.Format(time.DateOnly))
	} else {
		fmt.Fprintln(w, "  all milestones reached")
	}
}

func circleCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circle",
		Short: "Manage your support circle roster",
	}
	cmd.AddCommand(circleListCmd(flags), circleAddCmd(flags), circleEditCmd(flags), circleRemoveCmd(flags))
	return cmd
}

func circleListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List circle members and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := startApp(ctx, flags)
			if err != nil {
				return err
			}
			defer app.Stop()

			opCtx, opCancel := context.WithTimeout(ctx, app.OpTimeout())
			defer opCancel()

			members, err := app.Roster().List(opCtx)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "circle is empty")
				return nil
			}

			now := time.Now()
			for _, m := range members {
				days, err := sobriety.DaysSober(m.CleanDate.Time(), now)
				if err != nil {
					// A stored future clean date shouldn't exist, but a
					// bad row must not sink the whole listing.
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  clean %s  (unavailable)\n", m.ID, m.Name, m.CleanDate)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  clean %s  %d days", m.ID, m.Name, m.CleanDate, days)
				if m.Relationship != roster.RelationshipNone {
					fmt.Fprintf(cmd.OutOrStdout(), "  (%s)", m.Relationship)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func memberInputFlags(cmd *cobra.Command, name, cleanDate, relationship, program *string) {
	cmd.Flags().StringVar(name, "name", "", "Member display name")
	cmd.Flags().StringVar(cleanDate, "clean-date", "", "Member clean date (YYYY-MM-DD)")
	cmd.Flags().StringVar(relationship, "relationship", "", "Relationship (partner, parent, child, sibling, friend, sponsor, sponsee, other)")
	cmd.Flags().StringVar(program, "program", "", "Recovery program (aa, na, al-anon, smart, celebrate-recovery, other)")
}

func parseMemberInput(name, cleanDate, relationship, program string) (roster.MemberInput, error) {
	input := roster.MemberInput{
		Name:         name,
		Relationship: roster.Relationship(relationship),
		Program:      roster.Program(program),
	}
	if cleanDate != "" {
		d, err := roster.ParseDate(cleanDate)
		if err != nil {
			return roster.MemberInput{}, err
		}
		input.CleanDate = d
	}
	return input, nil
}

// withConflictRetry re-runs op after a concurrent-write conflict, up to
// conflictRetries attempts. Each attempt re-reads the document, so the
// semantic mutation is re-applied to fresh state rather than replayed.
func withConflictRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = op()
		if !errors.Is(err, docstore.ErrConflict) {
			return err
		}
		slog.Debug("roster changed concurrently, retrying", slog.Int("attempt", attempt+1))
	}
	return err
}

func circleAddCmd(flags *rootFlags) *cobra.Command {
	var name, cleanDate, relationship, program string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member to your circle",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseMemberInput(name, cleanDate, relationship, program)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			app, err := startApp(ctx, flags)
			if err != nil {
				return err
			}
			defer app.Stop()

			var member *roster.CircleMember
			err = withConflictRetry(func() error {
				opCtx, opCancel := context.WithTimeout(ctx, app.OpTimeout())
				defer opCancel()
				member, err = app.Roster().AddMember(opCtx, input)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", member.Name, member.ID)
			return nil
		},
	}

	memberInputFlags(cmd, &name, &cleanDate, &relationship, &program)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("clean-date")
	return cmd
}

func circleEditCmd(flags *rootFlags) *cobra.Command {
	var name, cleanDate, relationship, program string

	cmd := &cobra.Command{
		Use:   "edit <member-id>",
		Short: "Edit a circle member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseMemberInput(name, cleanDate, relationship, program)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			app, err := startApp(ctx, flags)
			if err != nil {
				return err
			}
			defer app.Stop()

			var member *roster.CircleMember
			err = withConflictRetry(func() error {
				opCtx, opCancel := context.WithTimeout(ctx, app.OpTimeout())
				defer opCancel()
				member, err = app.Roster().EditMember(opCtx, args[0], input)
				return err
			})
			if err != nil {
				return err
			}
			if member == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "no member with id %s\n", args[0])
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", member.Name, member.ID)
			return nil
		},
	}

	memberInputFlags(cmd, &name, &cleanDate, &relationship, &program)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("clean-date")
	return cmd
}

func circleRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Remove a member from your circle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := startApp(ctx, flags)
			if err != nil {
				return err
			}
			defer app.Stop()

			err = withConflictRetry(func() error {
				opCtx, opCancel := context.WithTimeout(ctx, app.OpTimeout())
				defer opCancel()
				return app.Roster().RemoveMember(opCtx, args[0])
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func giftsCmd(flags *rootFlags) *cobra.Command {
	var (
		ordersPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "gifts",
		Short: "Group purchased token gifts by recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := startApp(ctx, flags)
			if err != nil {
				return err
			}
			defer app.Stop()

			path := ordersPath
			if path == "" {
				path = app.cfg.Gifts.FeedPath
			}
			if path == "" {
				return fmt.Errorf("no order feed: pass --orders or set gifts.feed_path")
			}

			regroup := func(orders []gifts.Order) {
				opCtx, opCancel := context.WithTimeout(ctx, app.OpTimeout())
				defer opCancel()

				members, err := app.Roster().List(opCtx)
				if err != nil {
					app.logger.Warn("roster fetch failed", slog.String("error", err.Error()))
					return
				}
				printGroups(cmd.OutOrStdout(), gifts.GroupByRecipient(orders, members))
			}

			if watch {
				watcher := gifts.NewFeedWatcher(path,
					gifts.WithDebounce(app.cfg.Gifts.GetWatchDebounce()),
					gifts.WithWatchLogger(app.logger),
				)
				if err := watcher.Watch(ctx, regroup); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			orders, err := gifts.LoadOrders(path)
			if err != nil {
				return err
			}
			regroup(orders)
			return nil
		},
	}

	cmd.Flags().StringVar(&ordersPath, "orders", "", "Order feed JSON file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-group whenever the feed file changes")
	return cmd
}

func printGroups(w io.Writer, groups []gifts.RecipientGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "no gifts found")
		return
	}

	for _, g := range groups {
		switch {
		case g.Member != nil:
			fmt.Fprintf(w, "%s (circle member, clean %s)\n", g.Member.Name, g.Member.CleanDate)
		case g.MemberID != "":
			fmt.Fprintf(w, "%s (removed from circle)\n", g.RecipientName)
		default:
			fmt.Fprintf(w, "%s (not in circle)\n", g.RecipientName)
		}
		for _, gift := range g.Gifts {
			fmt.Fprintf(w, "  %s", gift.Title)
			if gift.Variant != "" {
				fmt.Fprintf(w, " / %s", gift.Variant)
			}
			fmt.Fprintf(w, " x%d @ %s — order %s (%s)", gift.Quantity, gift.UnitPrice, gift.OrderID, gift.OrderDate.Format(time.DateOnly))
			if gift.Engraving != "" {
				fmt.Fprintf(w, " engraved %q", gift.Engraving)
			}
			fmt.Fprintln(w)
		}
	}
}
