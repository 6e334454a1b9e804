package commands

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/brow-cli/internal/browser"
	"github.com/mazurov/brow-cli/internal/cache"
	"github.com/mazurov/brow-cli/internal/config"
	"github.com/mazurov/brow-cli/internal/errors"
	"github.com/mazurov/brow-cli/internal/models"
)

const (
	testJSESSIONID = "595559A29079ABA6107BB64D2A4D945F"
	testToken      = "3c91836c35d446939dcab40519dcabde"
)

// fakeSession is a browser that already holds a fixed cookie jar
type fakeSession struct {
	cookies   []models.Cookie
	navigated []string
	closed    bool
	err       error
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeSession) Cookies(ctx context.Context) ([]models.Cookie, error) {
	return f.cookies, f.err
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

type testEnv struct {
	r       *runner
	workDir string
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	session *fakeSession
	opened  int
}

func newTestEnv(t *testing.T, cookies []models.Cookie) *testEnv {
	t.Helper()
	workDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(workDir, "Core API"), 0755))

	v := config.NewViper()
	v.Set("workdir", workDir)
	v.Set("login.timeout", 1)
	v.Set("login.poll_interval", time.Millisecond)
	v.Set("login.settle", time.Millisecond)
	cfg, err := config.LoadWithViper(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	env := &testEnv{
		workDir: workDir,
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		session: &fakeSession{cookies: cookies},
	}

	r, err := newRunner(cfg, strings.NewReader(""), env.out, env.errOut)
	require.NoError(t, err)
	r.logger.SetLevel(logrus.PanicLevel)
	r.open = func(ctx context.Context, opts browser.Options, logger logrus.FieldLogger) (browser.Session, error) {
		env.opened++
		assert.Equal(t, browser.TypeLight, opts.Type)
		return env.session, nil
	}
	env.r = r
	return env
}

func (e *testEnv) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.workDir, rel))
	require.NoError(t, err)
	return string(data)
}

var loggedInCookies = []models.Cookie{
	{Name: "JSESSIONID", Value: testJSESSIONID},
	{Name: "token", Value: testToken},
	{Name: "_ga", Value: "GA1.2.123456"},
}

func TestExtract_FreshLogin(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)

	require.NoError(t, env.r.extract(context.Background()))

	assert.Equal(t, 1, env.opened)
	assert.True(t, env.session.closed)
	out := env.out.String()
	assert.Contains(t, out, "Opening browser to: "+config.DefaultURL)
	assert.Contains(t, out, "Extracted Tokens:")
	assert.Contains(t, out, "JSESSIONID: "+testJSESSIONID)
	assert.Contains(t, out, "✓ Created "+filepath.Join("Core API", "environments", "cli-generated.bru"))
	assert.Contains(t, out, "✓ Updated "+filepath.Join(".vscode", "settings.json"))

	bru := env.read(t, filepath.Join("Core API", "environments", "cli-generated.bru"))
	assert.Contains(t, bru, "signavioId: "+testToken)
	assert.Contains(t, bru, "url: https://staging.signavio.com")
	assert.Contains(t, env.read(t, filepath.Join(".vscode", "settings.json")), "JSESSIONID="+testJSESSIONID+"; token="+testToken+";")

	cached := env.read(t, filepath.Join(".cache", "cli", "cli-generated.bru"))
	assert.Equal(t, bru, cached)
}

func TestExtract_UsesCache(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)
	require.NoError(t, env.r.store.Save(models.Credentials{JSESSIONID: testJSESSIONID, Token: testToken}))

	require.NoError(t, env.r.extract(context.Background()))

	assert.Equal(t, 0, env.opened)
	out := env.out.String()
	assert.Contains(t, out, "USING CACHED DATA")
	assert.Contains(t, out, "Cached Tokens:")
	assert.Contains(t, out, "Updating Bruno environment files from cache...")
	assert.Contains(t, env.read(t, filepath.Join("Core API", "environments", "cli-generated.bru")), "signavioId: "+testToken)
}

func TestExtract_ForceRefreshBypassesCache(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)
	require.NoError(t, env.r.store.Save(models.Credentials{JSESSIONID: "OLD", Token: "OLD"}))
	env.r.cfg.Cache.ForceRefresh = true

	require.NoError(t, env.r.extract(context.Background()))

	assert.Equal(t, 1, env.opened)
	creds, err := env.r.store.Load()
	require.NoError(t, err)
	assert.Equal(t, testToken, creds.Token)
}

func TestExtract_MaskedOutputKeepsFilesUnmasked(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)
	env.r.cfg.Output.Mask = true

	require.NoError(t, env.r.extract(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "JSESSIONID: 5955************************945F")
	assert.NotContains(t, out, testToken)
	assert.Contains(t, env.read(t, filepath.Join("Core API", "environments", "cli-generated.bru")), "signavioId: "+testToken)
}

func TestExtract_NoTokens(t *testing.T) {
	env := newTestEnv(t, []models.Cookie{{Name: "_ga", Value: "GA1"}})

	err := env.r.extract(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ExitGeneralError, errors.ExitCode(err))
	assert.Contains(t, env.out.String(), "No tokens extracted")
	assert.Contains(t, env.errOut.String(), "No tokens were extracted. Login may have failed.")

	_, statErr := os.Stat(filepath.Join(env.workDir, ".cache", "cli"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_PartialTokensNotCached(t *testing.T) {
	env := newTestEnv(t, []models.Cookie{{Name: "JSESSIONID", Value: testJSESSIONID}})

	require.NoError(t, env.r.extract(context.Background()))

	assert.Contains(t, env.errOut.String(), "Could not extract required tokens (JSESSIONID and token)")
	assert.Contains(t, env.errOut.String(), "Could not extract required tokens for settings file")
	_, err := env.r.store.Load()
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestExtract_NoAPIFolders(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)
	require.NoError(t, os.Remove(filepath.Join(env.workDir, "Core API")))

	require.NoError(t, env.r.extract(context.Background()))
	assert.Contains(t, env.out.String(), "No folders with 'API' in name found in current directory.")
}

func TestExtract_JSONOutput(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)
	env.r.cfg.Output.Format = "json"

	require.NoError(t, env.r.extract(context.Background()))
	assert.Contains(t, env.out.String(), `"x-signavio-id": "`+testToken+`"`)
}

func TestExtract_VerboseListsCookies(t *testing.T) {
	env := newTestEnv(t, []models.Cookie{
		{Name: "JSESSIONID", Value: testJSESSIONID},
		{Name: "token", Value: testToken},
		{Name: "long", Value: strings.Repeat("x", 40)},
	})
	env.r.cfg.Verbose = true

	require.NoError(t, env.r.extract(context.Background()))

	out := env.out.String()
	assert.Contains(t, out, "Debug: Found 3 cookies")
	assert.Contains(t, out, "  - long: "+strings.Repeat("x", 30)+"...")
	assert.Contains(t, out, "  - token: "+testToken)
}

func TestExtract_ReportsExistingSession(t *testing.T) {
	env := newTestEnv(t, loggedInCookies)

	require.NoError(t, env.r.extract(context.Background()))
	assert.Contains(t, env.out.String(), "✓ Found existing valid session. Using saved cookies.")
	assert.Empty(t, env.session.navigated)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "short", value: "abc", want: "abc"},
		{name: "exact width", value: strings.Repeat("x", 30), want: strings.Repeat("x", 30)},
		{name: "ascii", value: strings.Repeat("x", 31), want: strings.Repeat("x", 30) + "..."},
		{name: "multibyte", value: strings.Repeat("ä", 35), want: strings.Repeat("ä", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.value, 30))
		})
	}
}

func TestExtract_Cancelled(t *testing.T) {
	env := newTestEnv(t, nil)
	env.r.cfg.Login.Timeout = 60

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.r.extract(ctx)
	assert.Equal(t, errors.ExitInterrupted, errors.ExitCode(err))
	assert.True(t, env.session.closed)
}

func TestExtract_BrowserError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.session.err = stderrors.New("target closed")

	err := env.r.extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target closed")
	assert.Equal(t, errors.ExitGeneralError, errors.ExitCode(err))
}

func TestImportHeader(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, env.r.importHeader("JSESSIONID="+testJSESSIONID+"; token="+testToken+"; _ga=GA1"))

	assert.Equal(t, 0, env.opened)
	assert.Contains(t, env.out.String(), "Imported Tokens:")
	creds, err := env.r.store.Load()
	require.NoError(t, err)
	assert.Equal(t, testJSESSIONID, creds.JSESSIONID)

	err = env.r.importHeader("token=only")
	assert.Equal(t, errors.ExitInvalidArguments, errors.ExitCode(err))
}

func TestCacheStatusAndClear(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, env.r.cacheStatus())
	assert.Contains(t, env.out.String(), "Status:   empty")

	require.NoError(t, env.r.store.Save(models.Credentials{JSESSIONID: testJSESSIONID, Token: testToken}))
	env.out.Reset()
	require.NoError(t, env.r.cacheStatus())
	assert.Contains(t, env.out.String(), "Status:   valid")

	env.out.Reset()
	env.r.in = strings.NewReader("n\n")
	require.NoError(t, env.r.cacheClear(false))
	assert.Contains(t, env.out.String(), "Aborted")
	_, err := env.r.store.Load()
	assert.NoError(t, err)

	env.out.Reset()
	env.r.cfg.Output.Format = "json"
	require.NoError(t, env.r.cacheClear(true))
	assert.Contains(t, env.out.String(), `"cleared": true`)
	_, err = env.r.store.Load()
	assert.ErrorIs(t, err, cache.ErrNotFound)
}
