package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultSourceRepo   = "anthropics/skills"
	DefaultSearchMarker = "SKILL.md"
	DefaultOutputPath   = "data/skills.json"
	DefaultLimit        = 50
	DefaultModel        = "gpt-3.5-turbo"
)

type Config struct{ v *viper.Viper }

func New() *Config {
	vv := viper.New()
	vv.AutomaticEnv()
	return &Config{v: vv}
}

// GetDsn resolves the final DSN using env vars
func (c *Config) GetDsn() (*url.URL, error) {
	source := c.v.GetString("DSN")
	if source == "" {
		user := c.v.GetString("PGUSER")
		if user == "" {
			user = c.v.GetString("USER")
		}
		if user == "" {
			user = "postgres"
		}

		dbName := c.v.GetString("PGDATABASE")
		if dbName == "" {
			dbName = "postgres"
		}

		host := c.v.GetString("PGHOST")
		if host == "" {
			host = "localhost"
		}

		port := c.v.GetString("PGPORT")
		hasPortEnv := port != ""
		if !hasPortEnv {
			port = "5432"
		}

		if strings.HasPrefix(host, "/") {
			socketDir := host

			// If PGHOST points to a file, derive directory and only infer port when PGPORT isn't set.
			if fi, err := os.Stat(host); err == nil && !fi.IsDir() {
				socketDir = filepath.Dir(host)
				if !hasPortEnv {
					base := filepath.Base(host)
					// Expected filename pattern: ".s.PGSQL.<port>"
					if inferred, ok := strings.CutPrefix(base, ".s.PGSQL."); ok && inferred != "" {
						if _, err := strconv.Atoi(inferred); err == nil {
							port = inferred
						}
					}
				}
			}

			q := url.Values{}
			q.Set("host", socketDir)
			q.Set("port", port)
			q.Set("sslmode", "disable")
			source = "postgres://" + user + "@/" + dbName + "?" + q.Encode()
		} else {
			source = "postgres://" + user + "@" + host + ":" + port + "/" + dbName + "?sslmode=disable"
		}
	}

	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return nil, errors.New("invalid DSN: must be in format driver://dataSourceName")
	}
	return u, nil
}

// DatabaseEnabled reports whether a PostgreSQL sink was configured through
// DSN, PGHOST or PGDATABASE. The JSON file is always written regardless.
func (c *Config) DatabaseEnabled() bool {
	return c.v.GetString("DSN") != "" ||
		c.v.GetString("PGHOST") != "" ||
		c.v.GetString("PGDATABASE") != ""
}

func (c *Config) GetGitHubToken() string {
	if t := c.v.GetString("GITHUB_TOKEN"); t != "" {
		return t
	}
	return c.v.GetString("GH_TOKEN")
}

// GetGitHubBaseURL returns GITHUB_API_URL, used to point the client at a
// GitHub Enterprise instance. Empty means api.github.com.
func (c *Config) GetGitHubBaseURL() string { return c.v.GetString("GITHUB_API_URL") }

func (c *Config) GetAddr() string {
	port := c.v.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	host := c.v.GetString("HOST")
	if host == "" {
		host = "localhost"
	}
	return host + ":" + port
}

// GetOpenAIBaseURL returns the OpenAI API base URL from env var OPENAI_BASE_URL.
// Empty means the SDK default.
func (c *Config) GetOpenAIBaseURL() string { return c.v.GetString("OPENAI_BASE_URL") }

// GetOpenAIAPIKey returns the OpenAI API key from env var OPENAI_API_KEY.
func (c *Config) GetOpenAIAPIKey() string { return c.v.GetString("OPENAI_API_KEY") }

// GetTranslationModel returns the chat model used by the openai translation
// method. Reads TRANSLATION_MODEL; defaults to gpt-3.5-turbo.
func (c *Config) GetTranslationModel() string {
	if m := c.v.GetString("TRANSLATION_MODEL"); m != "" {
		return m
	}
	return DefaultModel
}

// GetTranslationMethod returns TRANSLATION_METHOD as given. Parsing and the
// default live in the translate package.
func (c *Config) GetTranslationMethod() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString("TRANSLATION_METHOD")))
}

// GetDiscoveryStrategy returns DISCOVERY_STRATEGY (directory or search).
func (c *Config) GetDiscoveryStrategy() string {
	if s := strings.ToLower(c.v.GetString("DISCOVERY_STRATEGY")); s != "" {
		return s
	}
	return "directory"
}

// GetSourceRepo returns the owner/repo listed by the directory strategy.
func (c *Config) GetSourceRepo() string {
	if r := c.v.GetString("SOURCE_REPO"); r != "" {
		return r
	}
	return DefaultSourceRepo
}

// GetSearchMarker returns the descriptor filename searched for and fetched.
func (c *Config) GetSearchMarker() string {
	if m := c.v.GetString("SEARCH_MARKER"); m != "" {
		return m
	}
	return DefaultSearchMarker
}

func (c *Config) GetOutputPath() string {
	if p := c.v.GetString("OUTPUT_PATH"); p != "" {
		return p
	}
	return DefaultOutputPath
}

// GetLimit returns the maximum number of candidates processed; defaults to 50.
func (c *Config) GetLimit() int {
	if n := c.v.GetInt("DISCOVERY_LIMIT"); n > 0 {
		return n
	}
	return DefaultLimit
}

func (c *Config) GetFetchStats() bool       { return c.v.GetBool("FETCH_STATS") }
func (c *Config) GetFetchCommitDates() bool { return c.v.GetBool("FETCH_COMMIT_DATES") }
func (c *Config) GetCronSecret() string     { return c.v.GetString("CRON_SECRET") }
func (c *Config) GetOTLPEndpoint() string   { return c.v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT") }
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// GetServiceName returns OTEL_SERVICE_NAME; defaults to skillscatalog.
func (c *Config) GetServiceName() string {
	if s := c.v.GetString("OTEL_SERVICE_NAME"); s != "" {
		return s
	}
	return "skillscatalog"
}

// GetLogLevel returns the log level from env var LOG_LEVEL mapped to slog.Level.
// Recognized values: debug, info (default), warn|warning, error.
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.v.GetString("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogFormat returns LOG_FORMAT: "json" or "text" (default).
func (c *Config) GetLogFormat() string {
	if strings.EqualFold(c.v.GetString("LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// OnLogLevelChange calls fn with the slog.Level whenever it changes.
// The initial call is made immediately.
func (c *Config) OnLogLevelChange(fn func(slog.Level)) {
	apply := func() { fn(c.GetLogLevel()) }
	apply()
	c.v.OnConfigChange(func(e fsnotify.Event) { apply() })
}

// LoadFile reads an optional config file (any format viper understands) and
// watches it, so LOG_LEVEL edits apply without a restart. Environment
// variables still take precedence.
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return err
	}
	c.v.WatchConfig()
	return nil
}
