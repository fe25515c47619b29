package main

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSettingsPath = "release-feed.yaml"
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 10 << 20
	defaultUserAgent    = "release-feed/1.0"
)

// Embedded configuration files
//
//go:embed config/release-feed.yaml
var defaultSettings string

//go:embed config/feed.html.tmpl
var defaultHTMLTemplate string

// ConfigOverrides allows overriding settings from the command line
type ConfigOverrides struct {
	OutputDirectory  *string
	Timeout          *time.Duration
	Concurrency      *int
	HTMLTemplatePath *string
}

// AuthorSettings names the feed author
type AuthorSettings struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// FeedSettings is the metadata of the generated feed
type FeedSettings struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Link        string         `yaml:"link"`
	SelfLink    string         `yaml:"self_link"`
	Author      AuthorSettings `yaml:"author"`
}

// OutputSettings controls where rendered feeds are written
type OutputSettings struct {
	Directory        string `yaml:"directory"`
	RSSFile          string `yaml:"rss_file"`
	AtomFile         string `yaml:"atom_file"`
	HTMLFile         string `yaml:"html_file"`
	MarkdownFile     string `yaml:"markdown_file"`
	HTMLTemplatePath string `yaml:"html_template_path"`
}

// FetchSettings controls how sources are downloaded
type FetchSettings struct {
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"`
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	Feed    FeedSettings   `yaml:"feed"`
	Output  OutputSettings `yaml:"output"`
	Fetch   FetchSettings  `yaml:"fetch"`
	Sources []Source       `yaml:"sources"`
}

// loadSettings loads settings from YAML file with fallback to the embedded defaults
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if errors.Is(err, os.ErrNotExist) {
		debugLog("%s not found, using embedded settings", settingsPath)
		return parseSettings([]byte(defaultSettings))
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}
	return parseSettings(data)
}

// loadSettingsRequired loads settings from YAML file, failing if file doesn't exist
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}
	return parseSettings(data)
}

func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	settings.applyDefaults()
	return &settings, nil
}

func (s *Settings) applyDefaults() {
	if s.Fetch.Timeout <= 0 {
		s.Fetch.Timeout = defaultTimeout
	}
	if s.Fetch.Concurrency <= 0 {
		s.Fetch.Concurrency = 1
	}
	if s.Fetch.UserAgent == "" {
		s.Fetch.UserAgent = defaultUserAgent
	}
	if s.Fetch.MaxBodyBytes <= 0 {
		s.Fetch.MaxBodyBytes = defaultMaxBodyBytes
	}
	if s.Output.Directory == "" {
		s.Output.Directory = "."
	}
	if s.Output.RSSFile == "" {
		s.Output.RSSFile = "release_feed.xml"
	}
	if s.Output.AtomFile == "" {
		s.Output.AtomFile = "release_feed.atom"
	}
	if s.Output.HTMLFile == "" {
		s.Output.HTMLFile = "release_feed.html"
	}
	if s.Output.MarkdownFile == "" {
		s.Output.MarkdownFile = "release_feed.md"
	}
	if s.Feed.Title == "" {
		s.Feed.Title = "Unified Release Notes"
	}
	if s.Feed.SelfLink == "" {
		s.Feed.SelfLink = s.Feed.Link
	}
}

// Apply copies every set override onto settings
func (o *ConfigOverrides) Apply(s *Settings) {
	if o == nil {
		return
	}
	if o.OutputDirectory != nil {
		s.Output.Directory = *o.OutputDirectory
	}
	if o.Timeout != nil && *o.Timeout > 0 {
		s.Fetch.Timeout = *o.Timeout
	}
	if o.Concurrency != nil && *o.Concurrency > 0 {
		s.Fetch.Concurrency = *o.Concurrency
	}
	if o.HTMLTemplatePath != nil {
		s.Output.HTMLTemplatePath = *o.HTMLTemplatePath
	}
}

// Validate reports the first configuration problem found
func (s *Settings) Validate() error {
	if s.Feed.Link == "" {
		return fmt.Errorf("feed.link is required")
	}
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if src.Kind != SourceHTML && src.Kind != SourceAtom {
			return fmt.Errorf("sources[%d] %s: unknown kind %q (want %q or %q)", i, src.Name, src.Kind, SourceHTML, SourceAtom)
		}
		if err := validateSourceURL(src.URL); err != nil {
			return fmt.Errorf("sources[%d] %s: %w", i, src.Name, err)
		}
	}
	return nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL format: %s (must be an absolute http:// or https:// URL)", raw)
	}
	return nil
}

// HTMLTemplate returns the HTML page template (from override file or embedded)
func (s *Settings) HTMLTemplate() (string, error) {
	if s.Output.HTMLTemplatePath == "" {
		return defaultHTMLTemplate, nil
	}
	content, err := os.ReadFile(s.Output.HTMLTemplatePath)
	if err != nil {
		return "", fmt.Errorf("reading HTML template %s: %w", s.Output.HTMLTemplatePath, err)
	}
	return string(content), nil
}
