package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mazurov/brow-cli/internal/extract"
	"github.com/mazurov/brow-cli/internal/models"
)

// CookieSource reads the cookies currently held by a browser context
type CookieSource interface {
	Cookies(ctx context.Context) ([]models.Cookie, error)
}

// Navigator is a cookie source that can open a page
type Navigator interface {
	CookieSource
	Navigate(ctx context.Context, url string) error
}

// WaitOptions bounds the wait for authentication cookies
type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
	Settle   time.Duration // extra time for remaining cookies once the required ones appear
	Required []string
	Reporter Reporter // told when an existing session is reused; may be nil
}

// Reporter receives user-facing progress messages
type Reporter interface {
	Println(message string)
	PrintSuccess(message string)
	PrintWarning(message string)
}

type nopReporter struct{}

func (nopReporter) Println(string)      {}
func (nopReporter) PrintSuccess(string) {}
func (nopReporter) PrintWarning(string) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}

// DefaultWaitOptions returns the polling policy used for SSO logins
func DefaultWaitOptions(timeout time.Duration) WaitOptions {
	return WaitOptions{
		Timeout:  timeout,
		Interval: 500 * time.Millisecond,
		Settle:   2 * time.Second,
		Required: []string{models.CookieJSESSIONID, models.CookieToken},
	}
}

// NavigateAndWait opens url and polls until the required cookies exist or the
// timeout elapses. A session already holding them is returned without
// navigating. A timeout is not an error: whatever cookies exist are returned.
func NavigateAndWait(ctx context.Context, nav Navigator, url string, opts WaitOptions, logger logrus.FieldLogger) ([]models.Cookie, error) {
	existing, err := nav.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	if extract.HasAll(existing, opts.Required...) {
		logger.Debug("Required cookies already present")
		reporterOrNop(opts.Reporter).PrintSuccess("Found existing valid session. Using saved cookies.")
		return existing, nil
	}

	if err := nav.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}

	if err := waitForCookies(ctx, nav, opts, logger); err != nil {
		return nil, err
	}

	cookies, err := nav.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return cookies, nil
}

func waitForCookies(ctx context.Context, src CookieSource, opts WaitOptions, logger logrus.FieldLogger) error {
	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		cookies, err := src.Cookies(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cookies: %w", err)
		}

		if extract.HasAll(cookies, opts.Required...) {
			logger.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("Authentication cookies present")
			return sleep(ctx, opts.Settle)
		}
		logger.WithField("cookies", len(cookies)).Debug("Waiting for authentication cookies")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			logger.WithField("timeout", opts.Timeout).Warn("Timed out waiting for authentication cookies")
			return nil
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
