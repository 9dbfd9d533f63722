// Package config loads and validates the redirgen configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRedirectField is the frontmatter key read for legacy URLs.
const DefaultRedirectField = "redirect_from"

// DefaultTemplate is the redirect template looked up next to the config file
// when none is configured.
const DefaultTemplate = "redirect.html"

// Config represents the application configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Output    OutputConfig    `yaml:"output"`
	Redirects RedirectsConfig `yaml:"redirects"`
	History   HistoryConfig   `yaml:"history"`
	Notify    *NotifyConfig   `yaml:"notify,omitempty"`
	Watch     WatchConfig     `yaml:"watch"`

	// dir is the directory holding the loaded config file; relative
	// template paths resolve against it.
	dir string
}

// TemplatePath resolves the redirect template location. Relative paths are
// looked up next to the configuration file.
func (c *Config) TemplatePath() string {
	p := c.Redirects.TemplatePath()
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// SiteConfig carries site-wide URL settings.
type SiteConfig struct {
	Title   string `yaml:"title,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	// BasePath is prefixed onto every URL written into artifacts
	// (e.g. "/docs/" when the site is served under a sub-path).
	BasePath string `yaml:"base_path,omitempty"`
}

// ContentConfig locates the content tree and the redirect declarations in it.
type ContentConfig struct {
	Directory     string `yaml:"directory"`
	RedirectField string `yaml:"redirect_field,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// RedirectsConfig controls which artifacts are emitted.
type RedirectsConfig struct {
	// Template is the redirect page template path. nil means the default
	// (redirect.html, falling back to the built-in template); an explicit
	// empty string disables redirect page emission.
	Template *string `yaml:"template,omitempty"`
	// MapFile enables nginx map emission when non-empty. The path is
	// interpreted relative to the output directory.
	MapFile string `yaml:"map_file,omitempty"`
}

// PagesEnabled reports whether redirect pages should be emitted.
func (r *RedirectsConfig) PagesEnabled() bool {
	return r.Template == nil || *r.Template != ""
}

// TemplatePath returns the configured template path, or the default.
func (r *RedirectsConfig) TemplatePath() string {
	if r.Template == nil {
		return DefaultTemplate
	}
	return *r.Template
}

// MapEnabled reports whether the nginx map file should be emitted.
func (r *RedirectsConfig) MapEnabled() bool { return r.MapFile != "" }

// HistoryConfig controls the build history store.
type HistoryConfig struct {
	// Database is the sqlite file path; empty disables history recording.
	Database string `yaml:"database,omitempty"`
}

// NotifyConfig configures NATS map-change notifications.
type NotifyConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig tunes the watch/preview mode. Durations are Go duration
// strings ("400ms", "5m"); they are validated at load time.
type WatchConfig struct {
	Port           int    `yaml:"port,omitempty"`
	Debounce       string `yaml:"debounce,omitempty"`
	RescanInterval string `yaml:"rescan_interval,omitempty"`
}

// DebounceDuration returns the parsed debounce interval.
func (w *WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 400 * time.Millisecond
	}
	return d
}

// RescanDuration returns the parsed rescan interval, or zero when periodic
// rescans are disabled.
func (w *WatchConfig) RescanDuration() time.Duration {
	if w.RescanInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(w.RescanInterval)
	if err != nil {
		return 0
	}
	return d
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// A .env next to the process is optional; existing env wins.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.dir = filepath.Dir(configPath)
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Content.Directory == "" {
		c.Content.Directory = "./content"
	}
	if c.Content.RedirectField == "" {
		c.Content.RedirectField = DefaultRedirectField
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Site.BasePath == "" {
		c.Site.BasePath = "/"
	}
	if c.Notify != nil && c.Notify.Subject == "" {
		c.Notify.Subject = "redirgen.map"
	}
	if c.Watch.Port == 0 {
		c.Watch.Port = 8080
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "400ms"
	}
}

// Validate rejects configurations that cannot produce a meaningful build.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Site.BasePath, "/") {
		return fmt.Errorf("site.base_path must start with '/': %q", c.Site.BasePath)
	}
	if !c.Redirects.PagesEnabled() && !c.Redirects.MapEnabled() {
		return fmt.Errorf("both redirect pages and map emission are disabled; nothing to do")
	}
	if c.Notify != nil && c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required when notify is configured")
	}
	if c.Watch.Port < 0 || c.Watch.Port > 65535 {
		return fmt.Errorf("watch.port out of range: %d", c.Watch.Port)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("watch.debounce is not a valid duration: %q", c.Watch.Debounce)
	}
	if c.Watch.RescanInterval != "" {
		if _, err := time.ParseDuration(c.Watch.RescanInterval); err != nil {
			return fmt.Errorf("watch.rescan_interval is not a valid duration: %q", c.Watch.RescanInterval)
		}
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:    "My Site",
			BaseURL:  "https://example.com",
			BasePath: "/",
		},
		Content: ContentConfig{
			Directory:     "./content",
			RedirectField: DefaultRedirectField,
		},
		Output: OutputConfig{
			Directory: "./site",
		},
		Redirects: RedirectsConfig{
			MapFile: "redirects.map",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil { // #nosec G306 -- user-editable config file
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
