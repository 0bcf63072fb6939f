// Package config loads the bot's on-disk configuration. Every tunable the
// cycle controller consumes (sleep duration, cycle limit, quota ceiling,
// message length) lives here rather than on the command line; a failure to
// load is fatal at process start, before any collaborator is constructed.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the reference deployment: hourly cycles bounded to a
// working day, and the public is.gd ceiling of 200 requests per hour.
const (
	DefaultSleepInterval  = time.Hour
	DefaultMaxCycles      = 8
	DefaultQuotaCeiling   = 200
	DefaultMaxStatusLen   = 280
	DefaultStatusLabel    = "Bill"
	DefaultHTTPTimeout    = 5 * time.Second
	DefaultShortenURL     = "https://is.gd/create.php"
	DefaultDiscoveryRoot  = "https://www.govinfo.gov/bulkdata/BILLSTATUS"
	DefaultCongressNumber = 115
)

// DefaultKeywords is the conservative relevance list applied when the config
// file does not override it. Greedy substring matching makes overly broad
// terms expensive, so keep entries specific.
var DefaultKeywords = []string{
	"cyber",
	"cybersecurity",
	"data breach",
	"data security",
	"information security",
	"computer fraud",
	"encryption",
	"critical infrastructure",
	"ransomware",
}

// Duration wraps time.Duration so config files can say "1h" or "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// StorageConfig holds the record store connection parameters.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite3"
	DSN    string `yaml:"dsn"`
}

// ShortenerConfig holds the link shortening service parameters.
type ShortenerConfig struct {
	Endpoint     string   `yaml:"endpoint"`
	QuotaCeiling int      `yaml:"quota_ceiling"`
	Timeout      Duration `yaml:"timeout"`
}

// PublisherConfig holds the status feed API parameters.
type PublisherConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
}

// DiscoveryConfig holds the bulk-data document discovery parameters.
type DiscoveryConfig struct {
	IndexURLs []string `yaml:"index_urls"`
	RootURL   string   `yaml:"root_url"`
	Congress  int      `yaml:"congress"`
	Timeout   Duration `yaml:"timeout"`
}

// billTypeSegments are the per-type listing directories under a BILLSTATUS
// bulk-data root.
var billTypeSegments = []string{"s", "hr", "hjres", "sjres", "hres", "sres", "hconres", "sconres"}

// ResolveIndexURLs returns the index pages to scrape. An explicit index_urls
// list wins; otherwise the standard per-type listings are derived from
// root_url and congress.
func (d DiscoveryConfig) ResolveIndexURLs() []string {
	if len(d.IndexURLs) > 0 {
		return d.IndexURLs
	}
	if d.RootURL == "" {
		return nil
	}

	root := strings.TrimRight(d.RootURL, "/")
	urls := make([]string, 0, len(billTypeSegments))
	for _, segment := range billTypeSegments {
		urls = append(urls, fmt.Sprintf("%s/%d/%s", root, d.Congress, segment))
	}
	return urls
}

// EngineConfig holds the cycle controller tuning.
type EngineConfig struct {
	SleepInterval   Duration `yaml:"sleep_interval"`
	MaxCycles       int      `yaml:"max_cycles"`
	DiscoverOnStart bool     `yaml:"discover_on_start"`

	// ShortenContinueOnError switches the shortening phase from the
	// reference whole-phase abort to per-row skip-and-continue. The quota
	// pin on a service-reported error applies either way.
	ShortenContinueOnError bool `yaml:"shorten_continue_on_error"`
}

// RenderConfig holds the status message bounds.
type RenderConfig struct {
	MaxLength int    `yaml:"max_length"`
	Label     string `yaml:"label"`
}

// Config is the root of the on-disk configuration.
type Config struct {
	Storage     StorageConfig   `yaml:"storage"`
	Shortener   ShortenerConfig `yaml:"shortener"`
	Publisher   PublisherConfig `yaml:"publisher"`
	Discovery   DiscoveryConfig `yaml:"discovery"`
	Engine      EngineConfig    `yaml:"engine"`
	Render      RenderConfig    `yaml:"render"`
	Keywords    []string        `yaml:"keywords"`
	HandlesFile string          `yaml:"handles_file"`
	LogLevel    string          `yaml:"log_level"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns a configuration populated with every default. The storage
// section has no sensible default and must come from the file.
func Default() *Config {
	return &Config{
		Shortener: ShortenerConfig{
			Endpoint:     DefaultShortenURL,
			QuotaCeiling: DefaultQuotaCeiling,
			Timeout:      Duration(DefaultHTTPTimeout),
		},
		Publisher: PublisherConfig{
			Timeout: Duration(DefaultHTTPTimeout),
		},
		Discovery: DiscoveryConfig{
			RootURL:  DefaultDiscoveryRoot,
			Congress: DefaultCongressNumber,
			Timeout:  Duration(DefaultHTTPTimeout),
		},
		Engine: EngineConfig{
			SleepInterval:   Duration(DefaultSleepInterval),
			MaxCycles:       DefaultMaxCycles,
			DiscoverOnStart: true,
		},
		Render: RenderConfig{
			MaxLength: DefaultMaxStatusLen,
			Label:     DefaultStatusLabel,
		},
		Keywords: DefaultKeywords,
		LogLevel: "info",
	}
}

func (c *Config) applyDefaults() {
	if c.Shortener.Endpoint == "" {
		c.Shortener.Endpoint = DefaultShortenURL
	}
	if c.Shortener.QuotaCeiling == 0 {
		c.Shortener.QuotaCeiling = DefaultQuotaCeiling
	}
	if c.Shortener.Timeout == 0 {
		c.Shortener.Timeout = Duration(DefaultHTTPTimeout)
	}
	if c.Publisher.Timeout == 0 {
		c.Publisher.Timeout = Duration(DefaultHTTPTimeout)
	}
	if c.Discovery.RootURL == "" {
		c.Discovery.RootURL = DefaultDiscoveryRoot
	}
	if c.Discovery.Congress == 0 {
		c.Discovery.Congress = DefaultCongressNumber
	}
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = Duration(DefaultHTTPTimeout)
	}
	if c.Engine.SleepInterval == 0 {
		c.Engine.SleepInterval = Duration(DefaultSleepInterval)
	}
	if c.Engine.MaxCycles == 0 {
		c.Engine.MaxCycles = DefaultMaxCycles
	}
	if c.Render.MaxLength == 0 {
		c.Render.MaxLength = DefaultMaxStatusLen
	}
	if c.Render.Label == "" {
		c.Render.Label = DefaultStatusLabel
	}
	if len(c.Keywords) == 0 {
		c.Keywords = DefaultKeywords
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite3":
	case "":
		return fmt.Errorf("storage.driver is required")
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Shortener.QuotaCeiling < 1 {
		return fmt.Errorf("shortener.quota_ceiling must be positive, got %d", c.Shortener.QuotaCeiling)
	}
	if c.Engine.MaxCycles < 1 {
		return fmt.Errorf("engine.max_cycles must be positive, got %d", c.Engine.MaxCycles)
	}
	if c.Engine.SleepInterval.Std() <= 0 {
		return fmt.Errorf("engine.sleep_interval must be positive")
	}
	if c.Render.MaxLength < 1 {
		return fmt.Errorf("render.max_length must be positive, got %d", c.Render.MaxLength)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	return nil
}
