package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mazurov/brow-cli/internal/browser"
	"github.com/mazurov/brow-cli/internal/bruno"
	"github.com/mazurov/brow-cli/internal/cache"
	"github.com/mazurov/brow-cli/internal/config"
	"github.com/mazurov/brow-cli/internal/errors"
	"github.com/mazurov/brow-cli/internal/extract"
	"github.com/mazurov/brow-cli/internal/ide"
	"github.com/mazurov/brow-cli/internal/logging"
	"github.com/mazurov/brow-cli/internal/models"
	"github.com/mazurov/brow-cli/internal/output"
)

const debugValueWidth = 30

// runner carries everything a command needs once configuration is loaded
type runner struct {
	cfg     *config.Config
	printer *output.Printer
	logger  *logrus.Logger
	store   cache.Store
	open    browser.Opener
	in      io.Reader
	out     io.Writer
}

func newRunner(cfg *config.Config, in io.Reader, out, errOut io.Writer) (*runner, error) {
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, errOut)

	store, err := cache.New(cache.Options{
		Backend: cfg.Cache.Backend,
		Dir:     cfg.ResolvePath(cfg.Cache.Dir),
		Key:     cfg.Origin(),
		BaseURL: cfg.BrunoBaseURL(),
		TTL:     cfg.Cache.TTL,
	}, logger)
	if err != nil {
		return nil, errors.WithCode(errors.ExitInvalidArguments, "invalid cache configuration", err)
	}

	return &runner{
		cfg:     cfg,
		printer: output.NewPrinter(out, errOut),
		logger:  logger,
		store:   store,
		open:    browser.Open,
		in:      in,
		out:     out,
	}, nil
}

// extract serves credentials from the cache when fresh, otherwise runs the browser login
func (r *runner) extract(ctx context.Context) error {
	if !r.cfg.Cache.ForceRefresh {
		creds, err := r.store.Load()
		switch {
		case err == nil:
			return r.useCached(creds)
		case stderrors.Is(err, cache.ErrNotFound), stderrors.Is(err, cache.ErrExpired):
			r.logger.WithError(err).Debug("Cache miss")
		default:
			r.logger.WithError(err).Warn("Cache unavailable, continuing with browser login")
		}
	}

	creds, err := r.login(ctx)
	if err != nil {
		return err
	}

	if err := r.show("Extracted Tokens:", creds); err != nil {
		return err
	}
	if creds.Empty() {
		r.printer.PrintWarning("No tokens were extracted. Login may have failed.")
		return errors.Silent(errors.ExitGeneralError)
	}

	r.printer.Section("Generating Bruno environment files...")
	if err := r.publish(creds); err != nil {
		return err
	}
	return r.save(creds)
}

func (r *runner) useCached(creds models.Credentials) error {
	r.printer.CachedBanner()
	if err := r.show("Cached Tokens:", creds); err != nil {
		return err
	}
	r.printer.Section("Updating Bruno environment files from cache...")
	return r.publish(creds)
}

// login drives the browser until the session cookies appear or the timeout elapses
func (r *runner) login(ctx context.Context) (models.Credentials, error) {
	url := r.cfg.Login.URL
	r.printer.Println("Opening browser to: " + url)
	r.printer.Println(fmt.Sprintf("Please complete the login process. Waiting up to %d seconds...", r.cfg.Login.Timeout))

	session, err := r.open(ctx, browser.Options{
		Type:              r.cfg.Browser.Type,
		Bin:               r.cfg.Browser.Bin,
		UserDataDir:       r.cfg.Browser.UserDataDir,
		Headless:          r.cfg.Browser.Headless,
		NavigationTimeout: r.cfg.Timeout(),
		Reporter:          r.printer,
	}, r.logger)
	if err != nil {
		return models.Credentials{}, r.interrupted(ctx, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.WithError(err).Debug("Browser close failed")
		}
	}()

	waitOpts := browser.DefaultWaitOptions(r.cfg.Timeout())
	waitOpts.Interval = r.cfg.Login.PollInterval
	waitOpts.Settle = r.cfg.Login.Settle
	waitOpts.Reporter = r.printer

	cookies, err := browser.NavigateAndWait(ctx, session, url, waitOpts, r.logger)
	if err != nil {
		return models.Credentials{}, r.interrupted(ctx, err)
	}

	creds := extract.FromCookies(cookies)
	if r.cfg.Verbose {
		r.printCookies(cookies)
		r.printer.Println(fmt.Sprintf("Debug: Extracted tokens: jsessionid=%q token=%q", creds.JSESSIONID, creds.Token))
	}
	return creds, nil
}

// interrupted prefers the context error so Ctrl-C maps to the interrupt exit code
func (r *runner) interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (r *runner) printCookies(cookies []models.Cookie) {
	r.printer.Println(fmt.Sprintf("\nDebug: Found %d cookies", len(cookies)))
	for _, c := range cookies {
		r.printer.Println(fmt.Sprintf("  - %s: %s", c.Name, truncate(c.Value, debugValueWidth)))
	}
}

// truncate shortens value to width characters, marking the cut with "..."
func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width]) + "..."
}

// show prints credentials, masked when requested
func (r *runner) show(title string, creds models.Credentials) error {
	display := creds
	if r.cfg.Output.Mask {
		display = output.MaskCredentials(creds)
	}

	text, err := output.Format(display, r.cfg.Output.Format)
	if err != nil {
		return err
	}

	r.printer.Section(title)
	r.printer.Println(text)
	return nil
}

// publish writes the unmasked credentials into the Bruno and IDE files
func (r *runner) publish(creds models.Credentials) error {
	if r.cfg.Bruno.Enabled {
		written, err := bruno.WriteEnvFiles(r.cfg.WorkDir, bruno.Options{
			FolderMatch: r.cfg.Bruno.FolderMatch,
			EnvFile:     r.cfg.Bruno.EnvFile,
			BaseURL:     r.cfg.BrunoBaseURL(),
		}, creds)
		switch {
		case stderrors.Is(err, bruno.ErrIncomplete):
			r.printer.PrintWarning("Could not extract required tokens (JSESSIONID and token)")
		case err != nil:
			return fmt.Errorf("failed to write Bruno environment files: %w", err)
		case len(written) == 0:
			r.printer.Println(fmt.Sprintf("No folders with '%s' in name found in current directory.", r.cfg.Bruno.FolderMatch))
		default:
			for _, path := range written {
				r.printer.PrintSuccess("Created " + r.relative(path))
			}
		}
	}

	if r.cfg.IDE.Enabled {
		path := r.cfg.ResolvePath(r.cfg.IDE.SettingsPath)
		err := ide.UpdateSettings(path, creds)
		switch {
		case stderrors.Is(err, ide.ErrIncomplete):
			r.printer.PrintWarning("Could not extract required tokens for settings file")
		case err != nil:
			return fmt.Errorf("failed to update settings file: %w", err)
		default:
			r.printer.PrintSuccess("Updated " + r.relative(path))
		}
	}

	return nil
}

// save caches complete credentials; partial ones would poison the next run
func (r *runner) save(creds models.Credentials) error {
	if !creds.Complete() {
		r.logger.Debug("Skipping cache for incomplete credentials")
		return nil
	}
	if err := r.store.Save(creds); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	return nil
}

func (r *runner) relative(path string) string {
	rel, err := filepath.Rel(r.cfg.WorkDir, path)
	if err != nil {
		return path
	}
	return rel
}
