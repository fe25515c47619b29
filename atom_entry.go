package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
)

const atomSummaryPlaceholder = "See GitHub release for details."

// ErrNoEntry is returned when an Atom document is well formed but has no entries
var ErrNoEntry = errors.New("atom document has no entry")

// Layouts accepted for an entry's updated field after RFC 3339
var atomTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// AtomEntryDraft is the latest entry of an Atom feed before the source name is applied
type AtomEntryDraft struct {
	Title       string
	Link        string
	Body        string
	PublishedAt time.Time
}

// extractLatestAtomEntry reads the first entry of an Atom document. Feeds list
// newest first, so no sorting happens here.
func extractLatestAtomEntry(r io.Reader, fallbackURL string, now func() time.Time) (*AtomEntryDraft, error) {
	parser := &atom.Parser{}
	feed, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing atom feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, ErrNoEntry
	}

	entry := feed.Entries[0]

	link := firstLinkHref(entry.Links)
	if link == "" {
		link = fallbackURL
	}

	summary := entry.Summary
	if strings.TrimSpace(summary) == "" {
		summary = atomSummaryPlaceholder
	}

	return &AtomEntryDraft{
		Title:       entry.Title,
		Link:        link,
		Body:        fmt.Sprintf("<p>%s</p>", normalizeText(summary)),
		PublishedAt: parseAtomTimestamp(entry.Updated, now),
	}, nil
}

func firstLinkHref(links []*atom.Link) string {
	for _, l := range links {
		if l != nil && strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

// parseAtomTimestamp parses an ISO-8601 updated value. A trailing Z is UTC,
// values without a zone are taken as UTC, anything else falls back to now().
func parseAtomTimestamp(value string, now func() time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now().UTC()
	}
	for _, layout := range atomTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t
		}
	}
	debugLog("unparseable atom timestamp %q, using current time", value)
	return now().UTC()
}
