package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettingsYAML = `feed:
  title: Test Release Notes
  link: https://docs.example.com/
output:
  directory: out
fetch:
  timeout: 3s
  concurrency: 2
  requests_per_second: 1.5
sources:
  - name: Docs
    url: https://docs.example.com/release-notes
    kind: html
  - name: Feed
    url: https://github.com/example/repo/releases.atom
    kind: atom
`

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "release-feed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettingsRequired(t *testing.T) {
	settings, err := loadSettingsRequired(writeSettingsFile(t, testSettingsYAML))
	require.NoError(t, err)

	assert.Equal(t, "Test Release Notes", settings.Feed.Title)
	assert.Equal(t, "https://docs.example.com/", settings.Feed.SelfLink, "self link defaults to feed link")
	assert.Equal(t, "out", settings.Output.Directory)
	assert.Equal(t, "release_feed.xml", settings.Output.RSSFile)
	assert.Equal(t, "release_feed.atom", settings.Output.AtomFile)
	assert.Equal(t, "release_feed.html", settings.Output.HTMLFile)
	assert.Equal(t, "release_feed.md", settings.Output.MarkdownFile)
	assert.Equal(t, 3*time.Second, settings.Fetch.Timeout)
	assert.Equal(t, 2, settings.Fetch.Concurrency)
	assert.Equal(t, 1.5, settings.Fetch.RequestsPerSecond)
	assert.Equal(t, defaultUserAgent, settings.Fetch.UserAgent)
	assert.Equal(t, int64(defaultMaxBodyBytes), settings.Fetch.MaxBodyBytes)

	require.Len(t, settings.Sources, 2)
	assert.Equal(t, Source{Name: "Docs", URL: "https://docs.example.com/release-notes", Kind: SourceHTML}, settings.Sources[0])
	assert.Equal(t, SourceAtom, settings.Sources[1].Kind)
	assert.NoError(t, settings.Validate())
}

func TestLoadSettingsRequiredMissingFile(t *testing.T) {
	_, err := loadSettingsRequired(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSettingsFallsBackToEmbedded(t *testing.T) {
	settings, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Mend.io Unified Release Notes", settings.Feed.Title)
	assert.Equal(t, defaultTimeout, settings.Fetch.Timeout)
	require.Len(t, settings.Sources, 13)
	assert.Equal(t, SourceAtom, settings.Sources[12].Kind)
	assert.NoError(t, settings.Validate())
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	_, err := loadSettings(writeSettingsFile(t, "sources: [unterminated"))
	assert.Error(t, err)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{"valid html", Source{Name: "a", URL: "https://x.io/notes", Kind: SourceHTML}, false},
		{"valid atom over http", Source{Name: "a", URL: "http://x.io/f.atom", Kind: SourceAtom}, false},
		{"missing name", Source{URL: "https://x.io", Kind: SourceHTML}, true},
		{"unknown kind", Source{Name: "a", URL: "https://x.io", Kind: "rss"}, true},
		{"relative url", Source{Name: "a", URL: "/notes", Kind: SourceHTML}, true},
		{"ftp url", Source{Name: "a", URL: "ftp://x.io/notes", Kind: SourceHTML}, true},
		{"empty url", Source{Name: "a", Kind: SourceHTML}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &Settings{
				Feed:    FeedSettings{Link: "https://docs.example.com/"},
				Sources: []Source{tt.source},
			}
			err := settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsValidateRequiresFeedLink(t *testing.T) {
	settings := &Settings{}
	assert.Error(t, settings.Validate())
}

func TestConfigOverridesApply(t *testing.T) {
	settings, err := parseSettings([]byte(testSettingsYAML))
	require.NoError(t, err)

	dir := "public"
	timeout := 30 * time.Second
	workers := 8
	tmpl := "custom.tmpl"
	overrides := &ConfigOverrides{
		OutputDirectory:  &dir,
		Timeout:          &timeout,
		Concurrency:      &workers,
		HTMLTemplatePath: &tmpl,
	}
	overrides.Apply(settings)

	assert.Equal(t, "public", settings.Output.Directory)
	assert.Equal(t, 30*time.Second, settings.Fetch.Timeout)
	assert.Equal(t, 8, settings.Fetch.Concurrency)
	assert.Equal(t, "custom.tmpl", settings.Output.HTMLTemplatePath)

	var none *ConfigOverrides
	none.Apply(settings)
	assert.Equal(t, "public", settings.Output.Directory)
}

func TestHTMLTemplate(t *testing.T) {
	settings := &Settings{}
	tmpl, err := settings.HTMLTemplate()
	require.NoError(t, err)
	assert.Equal(t, defaultHTMLTemplate, tmpl)

	path := filepath.Join(t.TempDir(), "page.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("<ul>{{range .Entries}}<li>{{.Title}}</li>{{end}}</ul>"), 0644))
	settings.Output.HTMLTemplatePath = path
	tmpl, err = settings.HTMLTemplate()
	require.NoError(t, err)
	assert.Contains(t, tmpl, "<li>{{.Title}}</li>")

	settings.Output.HTMLTemplatePath = filepath.Join(t.TempDir(), "missing.tmpl")
	_, err = settings.HTMLTemplate()
	assert.Error(t, err)
}
