package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"woof/internal/dogceo"
	"woof/internal/usecase"
)

const (
	defaultGracePeriod = 5 * time.Second
	defaultHTTPTimeout = 10 * time.Second
	defaultLocale      = "en"
)

// Config holds CLI configuration.
type Config struct {
	APIURL           string           `name:"api-url" env:"WOOF_API_URL" help:"Dog CEO API base URL (default: ${default_api})"`
	ImageCount       int              `name:"image-count" env:"WOOF_IMAGE_COUNT" help:"Images per gallery (default: 10)"`
	GracePeriod      time.Duration    `name:"grace-period" env:"WOOF_GRACE_PERIOD" help:"How long a screen stays active without viewers (default: 5s)"`
	FetchConcurrency int              `name:"fetch-concurrency" env:"WOOF_FETCH_CONCURRENCY" help:"Parallel thumbnail requests (default: 16)"`
	HTTPTimeout      time.Duration    `name:"http-timeout" env:"WOOF_HTTP_TIMEOUT" help:"HTTP request timeout (default: 10s)"`
	DBPath           string           `name:"db" env:"WOOF_DB" help:"Path to SQLite database file (default: ~/.woof/woof.db)"`
	ConfigFile       string           `name:"config" short:"c" env:"WOOF_CONFIG" help:"TOML configuration file (default: ~/.woof/config.toml)"`
	LogFile          string           `name:"log-file" env:"WOOF_LOG_FILE" help:"Log file (default: ~/.woof/woof.log)"`
	MetricsAddr      string           `name:"metrics-addr" env:"WOOF_METRICS_ADDR" help:"Serve Prometheus metrics on this address"`
	Locale           string           `name:"locale" env:"WOOF_LOCALE" help:"Locale for breed names (default: en)"`
	Verbose          bool             `short:"v" env:"WOOF_VERBOSE" help:"Enable debug logging"`
	Version          kong.VersionFlag `name:"version" help:"Show version and exit"`
}

// fileConfig is the TOML form of Config. Zero values mean unset.
type fileConfig struct {
	APIURL           string        `toml:"api_url"`
	ImageCount       int           `toml:"image_count"`
	GracePeriod      time.Duration `toml:"grace_period"`
	FetchConcurrency int           `toml:"fetch_concurrency"`
	HTTPTimeout      time.Duration `toml:"http_timeout"`
	DBPath           string        `toml:"db"`
	LogFile          string        `toml:"log_file"`
	MetricsAddr      string        `toml:"metrics_addr"`
	Locale           string        `toml:"locale"`
	Verbose          *bool         `toml:"verbose"`
}

// ParseArgs parses command-line flags and returns configuration.
// Flags and env vars win over the config file, which wins over defaults.
func ParseArgs(args []string, version string) (*Config, error) {
	// Load .env files first so env-based flags pick them up. Existing env wins.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	config := &Config{}
	parser, err := kong.New(config,
		kong.Name("woof"),
		kong.Description("Browse dog breeds and their pictures from the terminal."),
		kong.Vars{"version": version, "default_api": dogceo.DefaultBaseURL},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build flag parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(home, ".woof")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	explicit := config.ConfigFile != ""
	if !explicit {
		config.ConfigFile = filepath.Join(configDir, "config.toml")
	}
	file, err := loadConfigFile(config.ConfigFile, explicit)
	if err != nil {
		return nil, err
	}
	config.merge(file, verboseExplicit(args))
	config.applyDefaults(configDir)

	return config, nil
}

// loadConfigFile reads path. A missing file is an error only when the user
// named it.
func loadConfigFile(path string, required bool) (fileConfig, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return fc, nil
}

// verboseExplicit reports whether --verbose/-v or WOOF_VERBOSE was given, so
// that "--verbose=false" can override the config file.
func verboseExplicit(args []string) bool {
	if v, ok := os.LookupEnv("WOOF_VERBOSE"); ok && v != "" {
		return true
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "-v" || arg == "--verbose" || strings.HasPrefix(arg, "--verbose=") {
			return true
		}
	}
	return false
}

func (c *Config) merge(f fileConfig, verboseSet bool) {
	if c.APIURL == "" {
		c.APIURL = f.APIURL
	}
	if c.ImageCount == 0 {
		c.ImageCount = f.ImageCount
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = f.GracePeriod
	}
	if c.FetchConcurrency == 0 {
		c.FetchConcurrency = f.FetchConcurrency
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = f.HTTPTimeout
	}
	if c.DBPath == "" {
		c.DBPath = f.DBPath
	}
	if c.LogFile == "" {
		c.LogFile = f.LogFile
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = f.MetricsAddr
	}
	if c.Locale == "" {
		c.Locale = f.Locale
	}
	if !verboseSet && f.Verbose != nil {
		c.Verbose = *f.Verbose
	}
}

func (c *Config) applyDefaults(configDir string) {
	if c.APIURL == "" {
		c.APIURL = dogceo.DefaultBaseURL
	}
	if c.ImageCount <= 0 {
		c.ImageCount = dogceo.DefaultImageCount
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = defaultGracePeriod
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = usecase.DefaultConcurrency
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(configDir, "woof.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(configDir, "woof.log")
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
}
