// Package browser drives a visible Chromium window through the DevTools
// protocol and watches its cookie jar for a completed SSO login.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/mazurov/brow-cli/internal/models"
)

// Browser types
const (
	TypeLight = "light" // rod-managed Chromium, downloaded on first use
	TypeFull  = "full"  // system Google Chrome
)

// Options configures the launched browser
type Options struct {
	Type              string
	Bin               string
	UserDataDir       string
	Headless          bool
	NavigationTimeout time.Duration
	Reporter          Reporter // receives the browser choice; may be nil
}

// Session is an open browser that can be navigated, read and closed
type Session interface {
	Navigator
	Close() error
}

// Opener starts a browser session
type Opener func(ctx context.Context, opts Options, logger logrus.FieldLogger) (Session, error)

// Open launches a browser and opens a blank page
func Open(ctx context.Context, opts Options, logger logrus.FieldLogger) (Session, error) {
	c := NewController(opts, logger)
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Controller owns the launched browser process and its single page
type Controller struct {
	opts     Options
	logger   logrus.FieldLogger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewController creates a controller; call Start to launch the browser
func NewController(opts Options, logger logrus.FieldLogger) *Controller {
	return &Controller{opts: opts, logger: logger}
}

// Start launches the browser, connects over DevTools and opens a page
func (c *Controller) Start(ctx context.Context) error {
	bin, err := c.resolveBin()
	if err != nil {
		return err
	}

	l := launcher.New().Context(ctx).Bin(bin).Headless(c.opts.Headless)
	if c.opts.UserDataDir != "" {
		l = l.UserDataDir(c.opts.UserDataDir)
	}

	// Cleanup waits for the process to exit, which never happens when it failed to start
	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("launch browser: %w", err)
	}
	c.launcher = l
	c.logger.WithField("control_url", controlURL).Debug("Browser launched")

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	c.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	c.page = page

	return nil
}

// resolveBin picks the browser executable for the configured type
func (c *Controller) resolveBin() (string, error) {
	if c.opts.Bin != "" {
		return c.opts.Bin, nil
	}

	report := reporterOrNop(c.opts.Reporter)
	if c.opts.Type == TypeFull {
		if path, ok := launcher.LookPath(); ok {
			c.logger.WithField("bin", path).Debug("Resolved system Chrome")
			report.Println("Using Google Chrome browser (full)")
			return path, nil
		}
		report.PrintWarning("Chrome not available, using Chromium")
	}

	report.Println("Using Chromium browser (light)")
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("install chromium: %w", err)
	}
	return path, nil
}

// Navigate opens url in the controlled page
func (c *Controller) Navigate(ctx context.Context, url string) error {
	if c.page == nil {
		return errors.New("browser not started")
	}

	page := c.page.Context(ctx)
	if c.opts.NavigationTimeout > 0 {
		page = page.Timeout(c.opts.NavigationTimeout)
	}
	return page.Navigate(url)
}

// Cookies returns every cookie held by the browser
func (c *Controller) Cookies(ctx context.Context) ([]models.Cookie, error) {
	if c.browser == nil {
		return nil, errors.New("browser not started")
	}

	raw, err := c.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, err
	}

	cookies := make([]models.Cookie, 0, len(raw))
	for _, rc := range raw {
		cookies = append(cookies, models.Cookie{
			Name:     rc.Name,
			Value:    rc.Value,
			Domain:   rc.Domain,
			Path:     rc.Path,
			Secure:   rc.Secure,
			HTTPOnly: rc.HTTPOnly,
		})
	}
	return cookies, nil
}

// Close shuts down the page and browser. A temporary profile is removed;
// a configured user data dir is kept for the next run.
func (c *Controller) Close() error {
	var err error
	if c.page != nil {
		_ = c.page.Close()
		c.page = nil
	}
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		if c.opts.UserDataDir == "" {
			c.launcher.Cleanup()
		} else {
			c.launcher.Kill()
		}
		c.launcher = nil
	}
	return err
}
