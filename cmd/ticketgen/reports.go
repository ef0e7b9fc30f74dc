package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/export"
	"github.com/spec-kit/ticket-synth/internal/generator"
	"github.com/spec-kit/ticket-synth/internal/profile"
	"github.com/spec-kit/ticket-synth/internal/review"
	"github.com/spec-kit/ticket-synth/internal/sampler"
	"github.com/spec-kit/ticket-synth/internal/stats"
)

func syncroPath(app *cli) string {
	return filepath.Join(app.cfg.Output.Dir, app.cfg.Output.SyncroFile)
}

func newStatsCmd(app *cli) *cobra.Command {
	var ticketsPath string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize generated tickets per technician",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ticketsPath
			if path == "" {
				path = export.NewCSVWriter(app.cfg.Output, app.logger).TicketsPath()
			}
			tickets, err := export.ReadTickets(path)
			if err != nil {
				return err
			}
			registry, err := profile.Load(app.cfg.Generator.ProfilesFile, app.cfg.Generator.ProfileDefaultWeight)
			if err != nil {
				return err
			}
			return stats.Render(cmd.OutOrStdout(), stats.SummarizeAssigned(tickets, registry.TechAssignments()))
		},
	}
	cmd.Flags().StringVar(&ticketsPath, "tickets", "", "tickets CSV (defaults to the configured output)")
	return cmd
}

func newReviewCmd(app *cli) *cobra.Command {
	var (
		seed     int64
		ticketID string
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Print one generated ticket with its thread and time entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := export.NewCSVWriter(app.cfg.Output, app.logger)
			tickets, err := export.ReadTickets(writer.TicketsPath())
			if err := ignoreMissing(err); err != nil {
				return err
			}
			messages, err := export.ReadConversations(writer.ConversationsPath())
			if err := ignoreMissing(err); err != nil {
				return err
			}
			entries, err := export.ReadTimeEntries(writer.TimeEntriesPath())
			if err := ignoreMissing(err); err != nil {
				return err
			}

			items := review.Candidates(tickets, messages, entries)
			if ticketID != "" {
				var match []review.Item
				for _, item := range items {
					if item.Ticket.ID == ticketID {
						match = append(match, item)
					}
				}
				items = match
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No completed ticket data available for review.")
				return nil
			}
			rng := sampler.New(seed)
			item := items[rng.Intn(len(items))]
			app.logger.Info("ticket reviewed", zap.String("ticket_id", item.Ticket.ID), zap.Int("candidates", len(items)))
			return review.Render(out, item)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for the pick (0 draws a fresh one)")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "review this ticket id instead of a random one")
	return cmd
}

// ignoreMissing treats an output file that was never written as empty.
func ignoreMissing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func newSyncroCmd(app *cli) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "syncro",
		Short: "Combine the ticket and conversation CSVs into a Syncro import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := export.NewCSVWriter(app.cfg.Output, app.logger)
			path := outPath
			if path == "" {
				path = syncroPath(app)
			}
			n, err := export.CombineFiles(writer.TicketsPath(), writer.ConversationsPath(), path)
			if err != nil {
				return err
			}
			app.logger.Info("syncro export written", zap.String("path", path), zap.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (defaults to OUTPUT_SYNCRO)")
	return cmd
}

func newProfilesCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List probability profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gcfg := app.cfg.Generator
			registry, err := profile.Load(gcfg.ProfilesFile, gcfg.ProfileDefaultWeight)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			names := registry.Names()
			if len(names) == 0 {
				fmt.Fprintln(out, "No probability profiles configured; draws are uniform.")
				return nil
			}
			def := registry.Default()
			for _, name := range names {
				marker := ""
				if def != nil && def.Name == name {
					marker = " (default)"
				}
				fmt.Fprintf(out, "%s%s\n", name, marker)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check profiles against the reference tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := generator.Load(app.cfg.Generator, generator.SystemClock(), app.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d profiles valid against %s\n", len(engine.Profiles().Names()), app.cfg.Generator.DataDir)
			return nil
		},
	})
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-key <api-key>",
		Short: "Print the bcrypt hash for AUTH_BOT_API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashAPIKey(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
