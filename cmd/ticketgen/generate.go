package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/export"
	"github.com/spec-kit/ticket-synth/internal/generator"
)

type generateOptions struct {
	count     int
	seed      int64
	profile   string
	maxRounds int
	sqlite    string
	syncro    bool
}

func newGenerateCmd(app *cli) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of tickets and append it to the output CSVs",
		Example: `  ticketgen generate -n 10
  ticketgen generate -n 5 --profile hardware --seed 42
  ticketgen generate -n 5 --sqlite results/tickets.db --syncro`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gcfg := app.cfg.Generator
			if cmd.Flags().Changed("seed") {
				gcfg.Seed = opts.seed
			}
			if cmd.Flags().Changed("profile") {
				gcfg.ActiveProfile = opts.profile
			}
			if cmd.Flags().Changed("max-rounds") {
				gcfg.MaxConversationRounds = opts.maxRounds
			}

			engine, err := generator.Load(gcfg, generator.SystemClock(), app.logger)
			if err != nil {
				return err
			}
			batch, err := engine.GenerateBatch(cmd.Context(), opts.count, gcfg)
			if err != nil {
				app.logger.Error("generation failed", zap.Int("count", opts.count), zap.Error(err))
				return err
			}

			writer := export.NewCSVWriter(app.cfg.Output, app.logger)
			if err := writer.WriteBatch(batch); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d tickets and %d messages (batch %s, seed %d)\n",
				len(batch.Tickets), batch.MessageCount(), batch.ID, batch.Seed)
			fmt.Fprintf(out, "Tickets: %s\nConversations: %s\n", writer.TicketsPath(), writer.ConversationsPath())

			if opts.sqlite != "" {
				sink, err := export.OpenSQLite(opts.sqlite, app.logger)
				if err != nil {
					return err
				}
				defer sink.Close()
				if err := sink.WriteBatch(cmd.Context(), batch); err != nil {
					return fmt.Errorf("write sqlite %s: %w", opts.sqlite, err)
				}
				fmt.Fprintf(out, "SQLite: %s\n", opts.sqlite)
			}

			if opts.syncro {
				path := syncroPath(app)
				n, err := export.CombineFiles(writer.TicketsPath(), writer.ConversationsPath(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Syncro: %s (%d rows)\n", path, n)
			}
			fmt.Fprintf(out, "Log: %s\n", app.logPath)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of tickets to generate")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 draws a fresh one)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "probability profile name")
	cmd.Flags().IntVar(&opts.maxRounds, "max-rounds", 0, "maximum conversation rounds")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "also write the batch to this SQLite file")
	cmd.Flags().BoolVar(&opts.syncro, "syncro", false, "rebuild the combined Syncro export afterwards")
	return cmd
}
