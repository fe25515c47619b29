package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Unified Release Notes</title>
  <id>https://docs.example.com/</id>
  <updated>2025-06-05T10:11:12Z</updated>
  <entry>
    <title>Mend SCA: Version 2.1</title>
    <id>https://docs.example.com/sca</id>
    <link href="https://docs.example.com/sca"/>
    <updated>2024-03-03T00:00:00Z</updated>
  </entry>
</feed>`

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Unified Release Notes</title>
    <link>https://docs.example.com/</link>
    <description>Latest releases</description>
    <item>
      <title>Mend SCA: Version 2.1</title>
      <link>https://docs.example.com/sca</link>
    </item>
    <item>
      <title>Broken: Release</title>
      <link>/docs/broken</link>
    </item>
  </channel>
</rss>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFeedFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		feedType string
		items    int
	}{
		{"atom", "feed.atom", atomFeed, "atom", 1},
		{"rss", "feed.xml", rssFeed, "rss", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := parseFeedFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.feedType, feed.FeedType)
			assert.Equal(t, "Unified Release Notes", feed.Title)
			assert.Len(t, feed.Items, tt.items)
		})
	}
}

func TestParseFeedFileErrors(t *testing.T) {
	_, err := parseFeedFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)

	_, err = parseFeedFile(writeFile(t, "page.html", "<p>not a feed</p>"))
	assert.Error(t, err)
}

func TestRelativeLinkItems(t *testing.T) {
	feed, err := parseFeedFile(writeFile(t, "feed.xml", rssFeed))
	require.NoError(t, err)

	bad := relativeLinkItems(feed)
	require.Len(t, bad, 1)
	assert.Equal(t, "Broken: Release", bad[0].Title)

	atom, err := parseFeedFile(writeFile(t, "feed.atom", atomFeed))
	require.NoError(t, err)
	assert.Empty(t, relativeLinkItems(atom))
}

func TestCheckCounts(t *testing.T) {
	good := writeFile(t, "feed.atom", atomFeed)
	rss := writeFile(t, "feed.xml", rssFeed)
	broken := writeFile(t, "page.html", "<p>not a feed</p>")

	assert.Equal(t, 0, checkFiles([]string{good, rss}))
	assert.Equal(t, 1, checkFiles([]string{good, broken}))
	assert.Equal(t, 1, checkLinks([]string{good, rss}))
	assert.Equal(t, 2, checkLinks([]string{rss, broken}))
}
