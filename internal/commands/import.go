package commands

import (
	"github.com/spf13/cobra"

	"github.com/mazurov/brow-cli/internal/errors"
	"github.com/mazurov/brow-cli/internal/extract"
)

var importCmd = &cobra.Command{
	Use:   "import <cookie-header>",
	Short: "Publish tokens from a pasted Cookie header",
	Long: `Parse a Cookie header copied from the browser developer tools, e.g.

  brow-cli import "JSESSIONID=595559A2...; token=3c91836c...; _ga=GA1.2.1"

and write the Bruno environment files, the settings file and the cache
exactly as a browser login would. No browser is opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	return app.importHeader(args[0])
}

func (r *runner) importHeader(header string) error {
	creds := extract.FromCookies(extract.ParseCookies(header))
	if !creds.Complete() {
		return errors.WithCode(errors.ExitInvalidArguments, "cookie header must contain both JSESSIONID and token", nil)
	}

	if err := r.show("Imported Tokens:", creds); err != nil {
		return err
	}

	r.printer.Section("Generating Bruno environment files...")
	if err := r.publish(creds); err != nil {
		return err
	}
	return r.save(creds)
}

func init() {
	rootCmd.AddCommand(importCmd)
}
