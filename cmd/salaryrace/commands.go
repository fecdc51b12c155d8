package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaryrace/salaryrace-go/internal/client"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/og"
	"github.com/salaryrace/salaryrace-go/internal/tui"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "create NAME_A ANNUAL_A NAME_B ANNUAL_B",
		Short: "Create a comparison and print its share link",
		Example: `  salaryrace create Alice 50000 Bob 60000
  salaryrace create "Our CEO" 1500000 "An intern" 24000 --currency USD`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd.Context())
			if err != nil {
				return err
			}
			slug, url, err := b.Create(cmd.Context(), domain.CreateInput{
				NameA:    args[0],
				AnnualA:  args[1],
				NameB:    args[2],
				AnnualB:  args[3],
				Currency: currency,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code (default: SALARYRACE_DEFAULT_CURRENCY)")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Print a comparison with both counters sampled now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := b.Sample(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"comparison": snap.Comparison,
				"perSecA":    og.FormatPerSec(snap.Comparison.PerSecA),
				"perSecB":    og.FormatPerSec(snap.Comparison.PerSecB),
				"earnedA":    snap.A,
				"earnedB":    snap.B,
				"difference": snap.Difference,
				"leader":     snap.Leader,
				"at":         snap.At,
			})
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch SLUG",
		Short: "Watch the race live in the terminal",
		Long:  "Watch the race live. Keys: p/space pause or resume, r replay from zero, q quit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd.Context())
			if err != nil {
				return err
			}
			slug := args[0]
			return tui.Run(cmd.Context(), func(ctx context.Context) (domain.Comparison, error) {
				return b.Get(ctx, slug)
			}, tui.Options{Interval: interval})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", tui.DefaultInterval, "redraw interval")
	return cmd
}

func newOGCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "og SLUG",
		Short: "Render the share image as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd.Context())
			if err != nil {
				return err
			}
			svg, err := b.OG(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(svg)
				return err
			}
			if err := os.WriteFile(out, svg, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, og.Width, og.Height)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Migrate explicitly even when auto-migrate is off.
			opts.cfg.AutoMigrate = false
			st, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			applied, err := st.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			version, err := st.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: applied %d migration(s), schema version %d\n", st.Path(), applied, version)
			return nil
		},
	}
}

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	var token string
	var latest int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print the ad analytics summary from a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireAPI(cmd); err != nil {
				return err
			}
			if token == "" {
				token = opts.cfg.AdminToken
			}
			sum, err := client.New(opts.apiURL).Analytics(cmd.Context(), token, latest)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "admin bearer token (default: SALARYRACE_ADMIN_TOKEN)")
	cmd.Flags().IntVar(&latest, "latest", 0, "number of latest events to include")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
