package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mazurov/brow-cli/internal/output"
	"github.com/mazurov/brow-cli/internal/prompts"
)

var flagYes bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached credentials",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where credentials are cached and whether they are still fresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.cacheStatus()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached credentials",
	Long: `Remove cached credentials so the next run opens the browser.

This operation is idempotent - it succeeds even if nothing is cached.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.cacheClear(flagYes)
	},
}

func (r *runner) cacheStatus() error {
	st, err := r.store.Status()
	if err != nil {
		return fmt.Errorf("failed to read cache status: %w", err)
	}

	if r.cfg.Output.Format == output.FormatJSON {
		return output.WriteJSON(r.out, st, nil)
	}

	r.printer.Println(fmt.Sprintf("Backend:  %s", st.Backend))
	r.printer.Println(fmt.Sprintf("Location: %s", st.Location))
	if !st.Exists {
		r.printer.Println("Status:   empty")
		return nil
	}

	r.printer.Println(fmt.Sprintf("Saved at: %s", st.SavedAt.Local().Format(time.RFC3339)))
	r.printer.Println(fmt.Sprintf("Age:      %s", st.Age.Round(time.Second)))
	if st.Valid {
		r.printer.Println(fmt.Sprintf("Status:   valid (expires in %s)", (r.cfg.Cache.TTL - st.Age).Round(time.Second)))
	} else {
		r.printer.Println("Status:   expired")
	}
	return nil
}

func (r *runner) cacheClear(yes bool) error {
	if !yes && !prompts.Confirm(r.in, r.out, "This will delete the cached credentials") {
		r.printer.Println("Aborted")
		return nil
	}

	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	if r.cfg.Output.Format == output.FormatJSON {
		return output.WriteJSON(r.out, map[string]bool{"cleared": true}, nil)
	}
	r.printer.PrintSuccess("Cache cleared")
	return nil
}

func init() {
	cacheClearCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompt")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
