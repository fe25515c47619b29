package main

import "time"

// SourceKind tells the fetcher which handler processes a source
type SourceKind string

const (
	SourceHTML SourceKind = "html"
	SourceAtom SourceKind = "atom"
)

// Source describes one documentation page or feed to pull release notes from
type Source struct {
	Name string     `yaml:"name"`
	URL  string     `yaml:"url"`
	Kind SourceKind `yaml:"kind"`
}

// FeedEntry is the format-agnostic record handed to the output stage
type FeedEntry struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
}

// ProcessingStatus represents the outcome status of processing a source
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusSkipped ProcessingStatus = "skipped"
	StatusError   ProcessingStatus = "error"
)

// ProcessingResult tracks the outcome of processing each source
type ProcessingResult struct {
	Source Source
	Status ProcessingStatus
	Error  error
}
