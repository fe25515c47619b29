package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gorilla/feeds"
)

// FeedWriter renders entries as RSS, Atom, HTML and Markdown
type FeedWriter struct {
	feed      FeedSettings
	output    OutputSettings
	page      *template.Template
	converter *md.Converter
}

// NewFeedWriter parses the HTML page template and prepares the Markdown converter
func NewFeedWriter(feed FeedSettings, output OutputSettings, htmlTemplate string) (*FeedWriter, error) {
	page, err := template.New("feed").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML template: %w", err)
	}
	return &FeedWriter{
		feed:      feed,
		output:    output,
		page:      page,
		converter: md.NewConverter("", true, nil),
	}, nil
}

func (w *FeedWriter) buildFeed(entries []FeedEntry, updated time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       w.feed.Title,
		Link:        &feeds.Link{Href: w.feed.Link},
		Description: w.feed.Description,
		Author:      &feeds.Author{Name: w.feed.Author.Name, Email: w.feed.Author.Email},
		Id:          w.feed.SelfLink,
		Updated:     updated,
	}
	for _, e := range entries {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:      e.Link,
			Title:   e.Title,
			Link:    &feeds.Link{Href: e.Link},
			Author:  &feeds.Author{Name: w.feed.Author.Name},
			Content: e.Body,
			Created: e.PublishedAt,
			Updated: e.PublishedAt,
		})
	}
	return feed
}

// RenderRSS serializes entries as RSS 2.0
func (w *FeedWriter) RenderRSS(entries []FeedEntry, updated time.Time) (string, error) {
	return w.buildFeed(entries, updated).ToRss()
}

// RenderAtom serializes entries as Atom 1.0
func (w *FeedWriter) RenderAtom(entries []FeedEntry, updated time.Time) (string, error) {
	return w.buildFeed(entries, updated).ToAtom()
}

type pageEntry struct {
	Title     string
	Link      string
	Published string
	Body      template.HTML
}

// RenderHTML renders a page with one section per entry. Bodies are inserted as-is.
func (w *FeedWriter) RenderHTML(entries []FeedEntry) (string, error) {
	data := struct {
		Title   string
		Entries []pageEntry
	}{Title: w.feed.Title}
	for _, e := range entries {
		data.Entries = append(data.Entries, pageEntry{
			Title:     e.Title,
			Link:      e.Link,
			Published: e.PublishedAt.Format(time.RFC3339),
			Body:      template.HTML(e.Body),
		})
	}

	var buf bytes.Buffer
	if err := w.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing HTML template: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown renders a Markdown digest of the entries
func (w *FeedWriter) RenderMarkdown(entries []FeedEntry) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", w.feed.Title)
	for _, e := range entries {
		body, err := w.converter.ConvertString(e.Body)
		if err != nil {
			return "", fmt.Errorf("converting %q to markdown: %w", e.Title, err)
		}
		fmt.Fprintf(&b, "\n## [%s](%s)\n\n", e.Title, e.Link)
		fmt.Fprintf(&b, "_Published: %s_\n", e.PublishedAt.Format(time.RFC3339))
		if body = strings.TrimSpace(body); body != "" {
			fmt.Fprintf(&b, "\n%s\n", body)
		}
	}
	return b.String(), nil
}

// WriteAll renders every format into the output directory and returns the written paths
func (w *FeedWriter) WriteAll(entries []FeedEntry, now func() time.Time) ([]string, error) {
	if err := os.MkdirAll(w.output.Directory, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	updated := FeedUpdated(entries, now)
	outputs := []struct {
		name   string
		render func() (string, error)
	}{
		{w.output.RSSFile, func() (string, error) { return w.RenderRSS(entries, updated) }},
		{w.output.AtomFile, func() (string, error) { return w.RenderAtom(entries, updated) }},
		{w.output.HTMLFile, func() (string, error) { return w.RenderHTML(entries) }},
		{w.output.MarkdownFile, func() (string, error) { return w.RenderMarkdown(entries) }},
	}

	var written []string
	for _, out := range outputs {
		content, err := out.render()
		if err != nil {
			return written, fmt.Errorf("rendering %s: %w", out.name, err)
		}
		path := filepath.Join(w.output.Directory, out.name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("✓ Generated: %s", path)
		written = append(written, path)
	}
	return written, nil
}
