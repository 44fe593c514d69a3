package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"option-live/internal/logging"
	"option-live/internal/model"
	"option-live/internal/page"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServiceURL = "http://localhost:5000/api/calculate"
	DefaultTimeout    = 10 * time.Second
	DefaultDebounce   = 300 * time.Millisecond
	DefaultCacheTTL   = time.Hour
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Service  ServiceConfig          `yaml:"service"`
	Debounce time.Duration          `yaml:"debounce"`
	Elements page.IDs               `yaml:"elements"`
	Defaults map[model.Field]string `yaml:"defaults"`
	Log      logging.Config         `yaml:"log"`
}

type ServiceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Cache   CacheConfig   `yaml:"cache"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration: the local pricing service,
// a 300ms debounce, the standard element ids and the form's initial values.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			URL:     DefaultServiceURL,
			Timeout: DefaultTimeout,
			Cache:   CacheConfig{TTL: DefaultCacheTTL},
		},
		Debounce: DefaultDebounce,
		Elements: page.DefaultIDs(),
		Defaults: map[model.Field]string{
			model.StockPrice:   "100",
			model.StrikePrice:  "100",
			model.InterestRate: "0.05",
			model.Maturity:     "1.0",
			model.Volatility:   "0.2",
		},
		Log: logging.Config{Level: "info", Format: "text", Output: "stderr"},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked overlays the file at path (if any) and the environment onto
// Default, but does not validate the result. An empty path skips the file.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var file Config
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		c = Merge(c, &file)
	}
	c.ApplyEnv()
	return c, nil
}

// ApplyEnv applies PRICING_SERVICE_URL and ENABLE_PRICING_CACHE. The cache
// is always disabled when API_ENV is production.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PRICING_SERVICE_URL"); v != "" {
		c.Service.URL = v
	}
	if v := os.Getenv("ENABLE_PRICING_CACHE"); v != "" {
		c.Service.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if os.Getenv("API_ENV") == "production" {
		c.Service.Cache.Enabled = false
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	u, err := url.Parse(c.Service.URL)
	if err != nil {
		return fmt.Errorf("service.url invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service.url must be an absolute http(s) URL, got %q", c.Service.URL)
	}
	if c.Service.Timeout <= 0 {
		return errors.New("service.timeout must be > 0")
	}
	if c.Service.Cache.Enabled && c.Service.Cache.TTL <= 0 {
		return errors.New("service.cache.ttl must be > 0 when the cache is enabled")
	}
	if c.Debounce <= 0 {
		return errors.New("debounce must be > 0")
	}
	for _, f := range model.Fields {
		if c.Elements.Inputs[f] == "" {
			return fmt.Errorf("elements.inputs.%s is required", f)
		}
	}
	if c.Elements.CallPrice == "" {
		return errors.New("elements.call_price is required")
	}
	if c.Elements.PutPrice == "" {
		return errors.New("elements.put_price is required")
	}
	for f := range c.Defaults {
		if !isField(f) {
			return fmt.Errorf("defaults: unknown field %q", f)
		}
	}
	return nil
}

// Merge overlays the non-zero fields of override onto base.
func Merge(base, override *Config) *Config {
	out := *base
	if override.Service.URL != "" {
		out.Service.URL = override.Service.URL
	}
	if override.Service.Timeout != 0 {
		out.Service.Timeout = override.Service.Timeout
	}
	if override.Service.Cache.Enabled {
		out.Service.Cache.Enabled = true
	}
	if override.Service.Cache.TTL != 0 {
		out.Service.Cache.TTL = override.Service.Cache.TTL
	}
	if override.Debounce != 0 {
		out.Debounce = override.Debounce
	}
	out.Elements = MergeElements(base.Elements, override.Elements)

	out.Defaults = make(map[model.Field]string, len(base.Defaults))
	for f, v := range base.Defaults {
		out.Defaults[f] = v
	}
	for f, v := range override.Defaults {
		out.Defaults[f] = v
	}

	if override.Log.Level != "" {
		out.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		out.Log.Format = override.Log.Format
	}
	if override.Log.Output != "" {
		out.Log.Output = override.Log.Output
	}
	if override.Log.FilePath != "" {
		out.Log.FilePath = override.Log.FilePath
	}
	if override.Log.MaxSizeMB != 0 {
		out.Log.MaxSizeMB = override.Log.MaxSizeMB
	}
	if override.Log.MaxBackups != 0 {
		out.Log.MaxBackups = override.Log.MaxBackups
	}
	if override.Log.MaxAgeDays != 0 {
		out.Log.MaxAgeDays = override.Log.MaxAgeDays
	}
	if override.Log.Compress {
		out.Log.Compress = true
	}
	return &out
}

// MergeElements overlays non-empty ids from override onto base.
// An explicit "-" in a Greek id removes that output.
func MergeElements(base, override page.IDs) page.IDs {
	out := page.IDs{
		Inputs:    make(map[model.Field]string, len(model.Fields)),
		CallPrice: base.CallPrice,
		PutPrice:  base.PutPrice,
		Greeks:    make(map[model.Greek]string, len(model.GreekNames)),
	}
	for f, id := range base.Inputs {
		out.Inputs[f] = id
	}
	for f, id := range override.Inputs {
		if id != "" {
			out.Inputs[f] = id
		}
	}
	if override.CallPrice != "" {
		out.CallPrice = override.CallPrice
	}
	if override.PutPrice != "" {
		out.PutPrice = override.PutPrice
	}
	for g, id := range base.Greeks {
		out.Greeks[g] = id
	}
	for g, id := range override.Greeks {
		switch id {
		case "":
		case "-":
			delete(out.Greeks, g)
		default:
			out.Greeks[g] = id
		}
	}
	return out
}

func isField(f model.Field) bool {
	for _, k := range model.Fields {
		if k == f {
			return true
		}
	}
	return false
}
