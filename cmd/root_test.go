package cmd

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"woof/internal/breedlist"
	"woof/internal/dogceo"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"WOOF_API_URL", "WOOF_IMAGE_COUNT", "WOOF_GRACE_PERIOD", "WOOF_DB", "WOOF_CONFIG", "WOOF_LOCALE", "WOOF_METRICS_ADDR", "WOOF_VERBOSE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return home
}

func writeConfig(t *testing.T, home, body string) string {
	t.Helper()
	path := filepath.Join(home, ".woof", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestParseArgsDefaults(t *testing.T) {
	home := setupHome(t)

	config, err := ParseArgs(nil, "test")
	require.NoError(t, err)
	require.Equal(t, dogceo.DefaultBaseURL, config.APIURL)
	require.Equal(t, 10, config.ImageCount)
	require.Equal(t, 5*time.Second, config.GracePeriod)
	require.Equal(t, 16, config.FetchConcurrency)
	require.Equal(t, 10*time.Second, config.HTTPTimeout)
	require.Equal(t, "en", config.Locale)
	require.Equal(t, filepath.Join(home, ".woof", "woof.db"), config.DBPath)
	require.Equal(t, filepath.Join(home, ".woof", "woof.log"), config.LogFile)
	require.Empty(t, config.MetricsAddr)

	info, err := os.Stat(filepath.Join(home, ".woof"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestParseArgsPrecedence(t *testing.T) {
	home := setupHome(t)
	writeConfig(t, home, `
api_url = "http://file.example/api/"
image_count = 4
grace_period = "30s"
locale = "tr"
`)

	config, err := ParseArgs([]string{"--image-count", "7"}, "test")
	require.NoError(t, err)
	require.Equal(t, "http://file.example/api/", config.APIURL)
	require.Equal(t, 7, config.ImageCount, "flag wins over file")
	require.Equal(t, 30*time.Second, config.GracePeriod)
	require.Equal(t, "tr", config.Locale)

	t.Setenv("WOOF_API_URL", "http://env.example/api/")
	config, err = ParseArgs(nil, "test")
	require.NoError(t, err)
	require.Equal(t, "http://env.example/api/", config.APIURL, "env wins over file")
	require.Equal(t, 4, config.ImageCount)
}

func TestParseArgsVerboseOverridesFile(t *testing.T) {
	home := setupHome(t)
	writeConfig(t, home, "verbose = true\n")

	config, err := ParseArgs(nil, "test")
	require.NoError(t, err)
	require.True(t, config.Verbose)

	config, err = ParseArgs([]string{"--verbose=false"}, "test")
	require.NoError(t, err)
	require.False(t, config.Verbose, "flag wins over file")

	t.Setenv("WOOF_VERBOSE", "false")
	config, err = ParseArgs(nil, "test")
	require.NoError(t, err)
	require.False(t, config.Verbose, "env wins over file")
}

func TestParseArgsConfigErrors(t *testing.T) {
	home := setupHome(t)

	_, err := ParseArgs([]string{"--config", filepath.Join(home, "missing.toml")}, "test")
	require.Error(t, err)

	writeConfig(t, home, `colour = "brown"`)
	_, err = ParseArgs(nil, "test")
	require.ErrorContains(t, err, "colour")
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "woof.log")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, closer, err := newLogger(path, true)
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
}

func TestBuildWiresBreedList(t *testing.T) {
	home := setupHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":{}}`))
	}))
	defer srv.Close()

	config := &Config{APIURL: srv.URL + "/api/"}
	config.applyDefaults(filepath.Join(home, ".woof"))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".woof"), 0700))

	app, err := Build(config, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer app.Close()

	require.Equal(t, 1, app.Breeds.SubscriberCount())
	require.Eventually(t, func() bool {
		_, ok := app.Breeds.State().(breedlist.Success)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	app.Model.Shutdown()
}
