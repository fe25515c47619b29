package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrBodyTooLarge is returned when a response exceeds fetch.max_body_bytes
var ErrBodyTooLarge = errors.New("response body too large")

// FetchedDocument is the raw response of a source URL
type FetchedDocument struct {
	URL         string
	ContentType string
	Body        []byte
}

// ContentFetcher handles fetching sources and dispatching them to handlers
type ContentFetcher struct {
	handlers     []SourceHandler
	client       *http.Client
	limiter      *rate.Limiter
	userAgent    string
	maxBodyBytes int64
}

// NewContentFetcher creates a new content fetcher with default handlers
func NewContentFetcher(settings FetchSettings, now func() time.Time) *ContentFetcher {
	f := &ContentFetcher{
		client:       &http.Client{Timeout: settings.Timeout},
		userAgent:    settings.UserAgent,
		maxBodyBytes: settings.MaxBodyBytes,
	}
	if settings.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), 1)
	}

	f.AddHandler(&HTMLSourceHandler{now: now})
	f.AddHandler(&AtomSourceHandler{now: now})

	return f
}

// AddHandler adds a source handler to the chain
func (f *ContentFetcher) AddHandler(handler SourceHandler) {
	f.handlers = append(f.handlers, handler)
}

// Fetch downloads url, failing on transport errors and non-2xx statuses
func (f *ContentFetcher) Fetch(ctx context.Context, url string) (*FetchedDocument, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting to fetch %s: %w", url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	var body io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBodyBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response body of %s: %w", url, err)
	}
	if f.maxBodyBytes > 0 && int64(len(data)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", url, ErrBodyTooLarge, f.maxBodyBytes)
	}
	debugLog("fetched %s: status=%d bytes=%d", url, resp.StatusCode, len(data))

	return &FetchedDocument{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// FetchEntry fetches a source and converts it using the first matching handler.
// Failures go through the handler's Recover, so the entry may be a placeholder
// returned together with the error, or nil when the source is skipped.
func (f *ContentFetcher) FetchEntry(ctx context.Context, source Source) (*FeedEntry, error) {
	handler := f.handlerFor(source)
	if handler == nil {
		return nil, fmt.Errorf("no handler found for %s source %s", source.Kind, source.Name)
	}

	doc, err := f.Fetch(ctx, source.URL)
	if err != nil {
		return handler.Recover(source, err)
	}

	entry, err := handler.Handle(source, doc)
	if err != nil {
		return handler.Recover(source, err)
	}
	return entry, nil
}

func (f *ContentFetcher) handlerFor(source Source) SourceHandler {
	for _, handler := range f.handlers {
		if handler.CanHandle(source) {
			return handler
		}
	}
	return nil
}
