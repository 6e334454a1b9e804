package browser

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/brow-cli/internal/models"
)

// fakeNavigator serves a scripted sequence of cookie snapshots
type fakeNavigator struct {
	mu          sync.Mutex
	snapshots   [][]models.Cookie
	reads       int
	navigated   []string
	navigateErr error
	cookiesErr  error
}

func (f *fakeNavigator) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeNavigator) Cookies(ctx context.Context) ([]models.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cookiesErr != nil {
		return nil, f.cookiesErr
	}
	i := f.reads
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	f.reads++
	if i < 0 {
		return nil, nil
	}
	return f.snapshots[i], nil
}

var (
	noCookies   = []models.Cookie{{Name: "_ga", Value: "GA1"}}
	onlySession = []models.Cookie{{Name: "JSESSIONID", Value: "J1"}}
	loggedIn    = []models.Cookie{{Name: "JSESSIONID", Value: "J1"}, {Name: "token", Value: "T1"}}
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func fastOptions(timeout time.Duration) WaitOptions {
	opts := DefaultWaitOptions(timeout)
	opts.Interval = time.Millisecond
	opts.Settle = time.Millisecond
	return opts
}

func TestDefaultWaitOptions(t *testing.T) {
	opts := DefaultWaitOptions(300 * time.Second)
	assert.Equal(t, 300*time.Second, opts.Timeout)
	assert.Equal(t, 500*time.Millisecond, opts.Interval)
	assert.Equal(t, 2*time.Second, opts.Settle)
	assert.Equal(t, []string{"JSESSIONID", "token"}, opts.Required)
}

func TestNavigateAndWait_ExistingSession(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{loggedIn}}
	reporter := &recordingReporter{}
	opts := fastOptions(time.Second)
	opts.Reporter = reporter

	cookies, err := NavigateAndWait(context.Background(), nav, "https://example.com", opts, testLogger())
	require.NoError(t, err)
	assert.Equal(t, loggedIn, cookies)
	assert.Empty(t, nav.navigated)
	assert.Equal(t, []string{"Found existing valid session. Using saved cookies."}, reporter.success)
}

func TestNavigateAndWait_NilReporter(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{loggedIn}}

	_, err := NavigateAndWait(context.Background(), nav, "https://example.com", fastOptions(time.Second), testLogger())
	assert.NoError(t, err)
}

func TestNavigateAndWait_LoginCompletes(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{noCookies, noCookies, onlySession, loggedIn}}

	cookies, err := NavigateAndWait(context.Background(), nav, "https://example.com/p/hub", fastOptions(5*time.Second), testLogger())
	require.NoError(t, err)
	assert.Equal(t, loggedIn, cookies)
	assert.Equal(t, []string{"https://example.com/p/hub"}, nav.navigated)
}

func TestNavigateAndWait_TimeoutReturnsPartial(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{noCookies, onlySession}}

	start := time.Now()
	cookies, err := NavigateAndWait(context.Background(), nav, "https://example.com", fastOptions(50*time.Millisecond), testLogger())
	require.NoError(t, err)
	assert.Equal(t, onlySession, cookies)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestNavigateAndWait_Cancelled(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{noCookies}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NavigateAndWait(ctx, nav, "https://example.com", fastOptions(time.Minute), testLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigateAndWait_CancelledDuringSettle(t *testing.T) {
	nav := &fakeNavigator{snapshots: [][]models.Cookie{noCookies, loggedIn}}
	opts := fastOptions(time.Minute)
	opts.Settle = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NavigateAndWait(ctx, nav, "https://example.com", opts, testLogger())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNavigateAndWait_Errors(t *testing.T) {
	boom := errors.New("boom")

	nav := &fakeNavigator{snapshots: [][]models.Cookie{noCookies}, navigateErr: boom}
	_, err := NavigateAndWait(context.Background(), nav, "https://example.com", fastOptions(time.Second), testLogger())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to open https://example.com")

	nav = &fakeNavigator{cookiesErr: boom}
	_, err = NavigateAndWait(context.Background(), nav, "https://example.com", fastOptions(time.Second), testLogger())
	assert.ErrorIs(t, err, boom)
}

func TestController_NotStarted(t *testing.T) {
	c := NewController(Options{Type: TypeLight}, testLogger())

	_, err := c.Cookies(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.Navigate(context.Background(), "https://example.com"))
	assert.NoError(t, c.Close())
}
