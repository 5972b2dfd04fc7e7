package pipeline

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ramkansal/leadfang/internal/record"
	"github.com/ramkansal/leadfang/internal/search"
	"github.com/ramkansal/leadfang/internal/translate"
)

// ErrMissingCredentials is returned by Validate when the selected search
// provider or the translator has no API key.
var ErrMissingCredentials = eris.New("missing credentials")

// Environment variables read by ApplyEnv.
const (
	EnvGoogleAPIKey   = "GOOGLE_API_KEY"
	EnvGoogleEngineID = "GOOGLE_SEARCH_ENGINE_ID"
	EnvBraveAPIKey    = "BRAVE_SEARCH_API_KEY"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiModel    = "GEMINI_MODEL"
)

// Config holds all configuration for one run.
type Config struct {
	// Query
	Keywords   string `yaml:"keywords"`
	Location   string `yaml:"location"`
	MaxResults int    `yaml:"max_results"`

	// Search provider; credentials come from the environment only
	Provider       Provider      `yaml:"provider"`
	GoogleAPIKey   string        `yaml:"-"`
	GoogleEngineID string        `yaml:"-"`
	BraveAPIKey    string        `yaml:"-"`
	SearchDelay    time.Duration `yaml:"search_delay"`

	// Request options
	FetcherMode     FetcherMode   `yaml:"fetcher"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxResponseSize int           `yaml:"max_response_size"`
	Proxy           string        `yaml:"proxy"`
	CustomHeaders   []string      `yaml:"headers"`
	PageDelay       time.Duration `yaml:"page_delay"`
	BrowserTimeout  time.Duration `yaml:"browser_timeout"`
	PageTimeout     time.Duration `yaml:"page_timeout"`

	// Extraction
	RepairJSONLD bool     `yaml:"repair_json_ld"`
	Translate    bool     `yaml:"translate"`
	GeminiAPIKey string   `yaml:"-"`
	GeminiModel  string   `yaml:"gemini_model"`
	Blocklist    []string `yaml:"blocklist"`

	// Output
	OutputPath string `yaml:"output"`
	// Format is a report format name; empty means derive it from OutputPath.
	Format  string `yaml:"format"`
	Silent  bool   `yaml:"-"`
	Verbose bool   `yaml:"-"`
	NoColor bool   `yaml:"-"`
}

// Provider selects the search API.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderBrave  Provider = "brave"
)

// FetcherMode controls which fetcher to use.
type FetcherMode string

const (
	FetcherHTTP    FetcherMode = "http"
	FetcherBrowser FetcherMode = "browser"
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxResults:      10,
		Provider:        ProviderGoogle,
		SearchDelay:     search.DefaultPageDelay,
		FetcherMode:     FetcherHTTP,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Timeout:         10 * time.Second,
		MaxResponseSize: 4194304, // 4MB
		PageDelay:       record.DefaultPageDelay,
		BrowserTimeout:  30 * time.Second,
		PageTimeout:     15 * time.Second,
		GeminiModel:     translate.DefaultGeminiModel,
	}
}

// LoadConfigFile overlays the YAML file at path onto c. Keys absent from
// the file keep their current values.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return eris.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return eris.Wrapf(err, "load %s", f)
		}
	}
	return nil
}

// ApplyEnv fills credentials and the Gemini model from lookup, usually
// os.LookupEnv. Empty variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.GoogleAPIKey, EnvGoogleAPIKey)
	set(&c.GoogleEngineID, EnvGoogleEngineID)
	set(&c.BraveAPIKey, EnvBraveAPIKey)
	set(&c.GeminiAPIKey, EnvGeminiAPIKey)
	set(&c.GeminiModel, EnvGeminiModel)
}

// Validate checks the inputs a run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Keywords) == "" {
		return eris.New("keywords are required")
	}
	if c.MaxResults <= 0 {
		return eris.Errorf("max results must be positive, got %d", c.MaxResults)
	}

	switch c.Provider {
	case ProviderGoogle:
		if c.GoogleAPIKey == "" || c.GoogleEngineID == "" {
			return eris.Wrapf(ErrMissingCredentials, "google search needs %s and %s", EnvGoogleAPIKey, EnvGoogleEngineID)
		}
	case ProviderBrave:
		if c.BraveAPIKey == "" {
			return eris.Wrapf(ErrMissingCredentials, "brave search needs %s", EnvBraveAPIKey)
		}
	default:
		return eris.Errorf("unknown search provider %q (want google or brave)", c.Provider)
	}

	switch c.FetcherMode {
	case FetcherHTTP, FetcherBrowser:
	default:
		return eris.Errorf("unknown fetcher %q (want http or browser)", c.FetcherMode)
	}

	if c.Proxy != "" {
		if u, err := url.Parse(c.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			return eris.Errorf("invalid proxy %q (want scheme://host:port)", c.Proxy)
		}
	}

	if c.Translate && c.GeminiAPIKey == "" {
		return eris.Wrapf(ErrMissingCredentials, "translation needs %s", EnvGeminiAPIKey)
	}
	return nil
}
