package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const errorFetchingLabel = "Error fetching content"

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// SourceHandler turns a fetched document into a feed entry for one kind of source
type SourceHandler interface {
	CanHandle(source Source) bool
	Handle(source Source, doc *FetchedDocument) (*FeedEntry, error)
	// Recover decides what a failed fetch or parse contributes. A nil entry
	// means the source is skipped.
	Recover(source Source, err error) (*FeedEntry, error)
}

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// HTMLSourceHandler extracts the latest version section of a documentation page
type HTMLSourceHandler struct {
	now func() time.Time
}

func (h *HTMLSourceHandler) CanHandle(source Source) bool {
	return source.Kind == SourceHTML
}

func (h *HTMLSourceHandler) Handle(source Source, doc *FetchedDocument) (*FeedEntry, error) {
	reader, err := charset.NewReader(bytes.NewReader(doc.Body), doc.ContentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	page, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	label, body, err := extractLatestVersion(page, source.URL)
	if err != nil {
		return nil, err
	}
	debugLog("%s: latest section %q (%d bytes)", source.Name, label, len(body))

	return h.entry(source, label, body), nil
}

// Recover always yields a placeholder entry so every page shows up in the feed.
func (h *HTMLSourceHandler) Recover(source Source, err error) (*FeedEntry, error) {
	body := normalizeText(fmt.Sprintf("<p>%v</p>", err))
	return h.entry(source, errorFetchingLabel, body), err
}

func (h *HTMLSourceHandler) entry(source Source, label, body string) *FeedEntry {
	return &FeedEntry{
		Title:       fmt.Sprintf("%s: %s", source.Name, label),
		Link:        source.URL,
		Body:        body,
		PublishedAt: inferDate(label, h.now),
	}
}

// AtomSourceHandler takes the newest entry of an Atom feed
type AtomSourceHandler struct {
	now func() time.Time
}

func (h *AtomSourceHandler) CanHandle(source Source) bool {
	return source.Kind == SourceAtom
}

func (h *AtomSourceHandler) Handle(source Source, doc *FetchedDocument) (*FeedEntry, error) {
	draft, err := extractLatestAtomEntry(bytes.NewReader(doc.Body), source.URL, h.now)
	if err != nil {
		return nil, err
	}

	return &FeedEntry{
		Title:       fmt.Sprintf("%s: %s", source.Name, draft.Title),
		Link:        draft.Link,
		Body:        draft.Body,
		PublishedAt: draft.PublishedAt,
	}, nil
}

// Recover never produces an entry: a broken or empty feed is skipped.
func (h *AtomSourceHandler) Recover(source Source, err error) (*FeedEntry, error) {
	if errors.Is(err, ErrNoEntry) {
		debugLog("%s: feed has no entries", source.Name)
	}
	return nil, err
}
