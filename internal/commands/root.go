package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mazurov/brow-cli/internal/config"
	"github.com/mazurov/brow-cli/internal/errors"
)

var (
	// Global flags
	flagConfig  string
	flagWorkDir string
	flagURL     string
	flagOutput  string
	flagMask    bool
	flagVerbose bool

	// Extraction flags
	flagTimeout      int
	flagBrowser      string
	flagForceRefresh bool

	v = config.NewViper()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "brow-cli",
	Short: "Extract authentication tokens from a browser SSO login",
	Long: `brow-cli opens a Chromium window, waits for you to complete the SSO login,
then extracts the JSESSIONID and token cookies for API access.

The tokens are written to environments/cli-generated.bru in every folder
whose name contains "API", and to .vscode/settings.json for Java test runs.

Results are cached for 4 hours in .cache/cli. Use --force-refresh to bypass
the cache and perform a fresh login.`,
	Args:              cobra.NoArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runExtract,
}

// Execute executes the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return errors.Report(os.Stderr, err)
	}
	return errors.ExitSuccess
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "Path to configuration file (or use BROW_CLI_CONFIG_FILE env var)")
	pf.StringVar(&flagWorkDir, "workdir", "", "Project directory holding the API folders and cache (default: current directory)")
	pf.StringVar(&flagURL, "url", config.DefaultURL, "URL to navigate to for login")
	pf.StringVar(&flagOutput, "output", "plain", "Output format: plain or json")
	pf.BoolVar(&flagMask, "mask", false, "Mask sensitive data in output for security")
	pf.BoolVar(&flagVerbose, "verbose", false, "Show detailed extraction information for debugging")

	f := rootCmd.Flags()
	f.IntVar(&flagTimeout, "timeout", config.DefaultTimeout, "Timeout in seconds to wait for authentication")
	f.StringVar(&flagBrowser, "browser", "light", "Browser type: light (Chromium) or full (Chrome)")
	f.BoolVar(&flagForceRefresh, "force-refresh", false, "Ignore cache and perform fresh browser login")

	// Flags take precedence over env vars and the config file
	bindings := map[string]string{
		"workdir":             "workdir",
		"login.url":           "url",
		"output.format":       "output",
		"output.mask":         "mask",
		"verbose":             "verbose",
		"login.timeout":       "timeout",
		"browser.type":        "browser",
		"cache.force_refresh": "force-refresh",
	}
	for key, name := range bindings {
		flag := pf.Lookup(name)
		if flag == nil {
			flag = f.Lookup(name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			panic(err)
		}
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WithCode(errors.ExitInvalidArguments, "", err)
	})
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Version = version
}

// loadConfig resolves flags, env and config file into the shared runner
func loadConfig(cmd *cobra.Command, args []string) error {
	workDir := flagWorkDir
	if workDir == "" {
		workDir = v.GetString("workdir")
	}
	if err := config.ReadConfigFile(v, flagConfig, workDir); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, "", err)
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, "invalid configuration", err)
	}

	r, err := newRunner(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	app = r
	return nil
}

// app is the runner built by loadConfig for the executing command
var app *runner

func runExtract(cmd *cobra.Command, args []string) error {
	return app.extract(cmd.Context())
}
