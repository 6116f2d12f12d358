package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// Index backends.
const (
	BackendElasticsearch = "elasticsearch"
	BackendBleve         = "bleve"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultBackend      = BackendElasticsearch
	DefaultIndexName    = "text-files-index"
	DefaultPageSize     = 10
	DefaultWorkers      = 4
	DefaultRetries      = 2
	DefaultRetryBackoff = time.Second
	DefaultFetchTimeout = 30 * time.Second
	DefaultIndexTimeout = 30 * time.Second
	DefaultURLBase      = "https://www.dropbox.com/s"
	DefaultURLSuffix    = "?dl=0"
	DefaultServerAddr   = "127.0.0.1:8080"
)

// Environment variables. They override the config file.
const (
	EnvDropboxToken        = "DROPBOX_TOKEN"
	EnvDropboxRefreshToken = "DROPBOX_REFRESH_TOKEN"
	EnvDropboxAppKey       = "DROPBOX_APP_KEY"
	EnvDropboxAppSecret    = "DROPBOX_APP_SECRET"
	EnvClusterEndpoint     = "CLUSTER_ENDPOINT"
	EnvESAPIKey            = "ES_API_KEY"
	EnvIndexBackend        = "DOCSEARCH_INDEX_BACKEND"
	EnvIndexName           = "DOCSEARCH_INDEX_NAME"
	EnvBlevePath           = "DOCSEARCH_BLEVE_PATH"
	EnvDataDir             = "DOCSEARCH_DATA_DIR"
)

// Config is the resolved process configuration.
type Config struct {
	Dropbox DropboxConfig
	Index   IndexConfig
	Ingest  IngestConfig
	URL     URLConfig
	Server  ServerConfig

	// DataDir holds the run history database. Empty means ~/.docsearch/data.
	DataDir string

	// Path is the config file the values were read from.
	Path string
}

// DropboxConfig holds remote storage credentials and listing defaults.
type DropboxConfig struct {
	AccessToken    string
	RefreshToken   string
	AppKey         string
	AppSecret      string
	Root           string
	Recursive      bool
	MaxContentSize int64
}

// IndexConfig selects and configures the search engine.
type IndexConfig struct {
	Backend   string
	Addresses []string
	APIKey    string
	Name      string
	BlevePath string
	PageSize  int
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	Workers      int
	Retries      int
	RetryBackoff time.Duration
	FetchTimeout time.Duration
	IndexTimeout time.Duration
	RunTimeout   time.Duration
}

// URLConfig shapes result download URLs.
type URLConfig struct {
	Base   string
	Suffix string
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string
}

// Options controls where configuration is read from.
type Options struct {
	// Path is the TOML file. Empty means DefaultPath().
	Path string
	// DotEnv is the .env file. Empty means ".env" in the working directory.
	// A missing .env file is not an error.
	DotEnv string
}

// Load resolves configuration from the TOML file, the .env file and the
// environment, in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	store, err := NewStore(opts.Path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Path = store.Path()
	if err := cfg.applyStore(store); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Backend:  DefaultBackend,
			Name:     DefaultIndexName,
			PageSize: DefaultPageSize,
		},
		Ingest: IngestConfig{
			Workers:      DefaultWorkers,
			Retries:      DefaultRetries,
			RetryBackoff: DefaultRetryBackoff,
			FetchTimeout: DefaultFetchTimeout,
			IndexTimeout: DefaultIndexTimeout,
		},
		URL: URLConfig{
			Base:   DefaultURLBase,
			Suffix: DefaultURLSuffix,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// godotenv never overrides variables already set in the environment.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyStore(s *Store) error {
	setString(&c.Dropbox.AccessToken, s.GetString("dropbox.access_token"))
	setString(&c.Dropbox.RefreshToken, s.GetString("dropbox.refresh_token"))
	setString(&c.Dropbox.AppKey, s.GetString("dropbox.app_key"))
	setString(&c.Dropbox.AppSecret, s.GetString("dropbox.app_secret"))
	setString(&c.Dropbox.Root, s.GetString("dropbox.root"))
	if v, ok := s.GetBool("dropbox.recursive"); ok {
		c.Dropbox.Recursive = v
	}
	if v, ok := s.GetInt("dropbox.max_content_size"); ok {
		c.Dropbox.MaxContentSize = int64(v)
	}

	setString(&c.Index.Backend, s.GetString("index.backend"))
	if v := s.GetStringSlice("index.addresses"); len(v) > 0 {
		c.Index.Addresses = v
	}
	setString(&c.Index.APIKey, s.GetString("index.api_key"))
	setString(&c.Index.Name, s.GetString("index.name"))
	setString(&c.Index.BlevePath, s.GetString("index.bleve_path"))
	if v, ok := s.GetInt("index.page_size"); ok {
		c.Index.PageSize = v
	}

	if v, ok := s.GetInt("ingest.workers"); ok {
		c.Ingest.Workers = v
	}
	if v, ok := s.GetInt("ingest.retries"); ok {
		c.Ingest.Retries = v
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"ingest.retry_backoff", &c.Ingest.RetryBackoff},
		{"ingest.fetch_timeout", &c.Ingest.FetchTimeout},
		{"ingest.index_timeout", &c.Ingest.IndexTimeout},
		{"ingest.run_timeout", &c.Ingest.RunTimeout},
	}
	for _, d := range durations {
		v, ok, err := s.GetDuration(d.key)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if ok {
			*d.dst = v
		}
	}

	setString(&c.URL.Base, s.GetString("url.base"))
	// An explicit empty suffix is allowed.
	if _, ok := s.Get("url.suffix"); ok {
		c.URL.Suffix = s.GetString("url.suffix")
	}
	setString(&c.Server.Addr, s.GetString("server.addr"))
	setString(&c.DataDir, s.GetString("data_dir"))
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	setString(&c.Dropbox.AccessToken, env(EnvDropboxToken))
	setString(&c.Dropbox.RefreshToken, env(EnvDropboxRefreshToken))
	setString(&c.Dropbox.AppKey, env(EnvDropboxAppKey))
	setString(&c.Dropbox.AppSecret, env(EnvDropboxAppSecret))

	if v := env(EnvClusterEndpoint); v != "" {
		c.Index.Addresses = splitList(v)
	}
	setString(&c.Index.APIKey, env(EnvESAPIKey))
	setString(&c.Index.Backend, strings.ToLower(env(EnvIndexBackend)))
	setString(&c.Index.Name, env(EnvIndexName))
	setString(&c.Index.BlevePath, env(EnvBlevePath))
	setString(&c.DataDir, env(EnvDataDir))
}

// Validate reports every problem that prevents ingestion: index settings
// and remote storage credentials.
func (c *Config) Validate() error {
	return errors.Join(c.ValidateIndex(), c.ValidateSource())
}

// ValidateIndex reports problems with the search engine settings, which
// are all the query surfaces need.
func (c *Config) ValidateIndex() error {
	var errs []error
	switch c.Index.Backend {
	case BackendElasticsearch:
		if len(c.Index.Addresses) == 0 {
			errs = append(errs, missing("index.addresses", EnvClusterEndpoint))
		}
	case BackendBleve:
	default:
		errs = append(errs, fmt.Errorf("%w: index backend %q (want %s or %s)",
			domain.ErrInvalidInput, c.Index.Backend, BackendElasticsearch, BackendBleve))
	}
	if c.Index.Name == "" {
		errs = append(errs, missing("index.name", EnvIndexName))
	}
	if c.Index.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: index.page_size must be positive", domain.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// ValidateSource reports missing remote storage credentials.
func (c *Config) ValidateSource() error {
	d := c.Dropbox
	var errs []error
	switch {
	case d.RefreshToken != "":
		if d.AppKey == "" {
			errs = append(errs, missing("dropbox.app_key", EnvDropboxAppKey))
		}
		if d.AppSecret == "" {
			errs = append(errs, missing("dropbox.app_secret", EnvDropboxAppSecret))
		}
	case d.AccessToken == "":
		errs = append(errs, missing("dropbox.access_token", EnvDropboxToken))
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: ingest.workers must be positive", domain.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

func missing(key, env string) error {
	return fmt.Errorf("%w: %s (or %s)", domain.ErrConfigMissing, key, env)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Dropbox.AccessToken = mask(c.Dropbox.AccessToken)
	c.Dropbox.RefreshToken = mask(c.Dropbox.RefreshToken)
	c.Dropbox.AppSecret = mask(c.Dropbox.AppSecret)
	c.Index.APIKey = mask(c.Index.APIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

// ParseValue converts a command-line value to the TOML type it most
// likely denotes: integer, boolean, or string.
func ParseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
