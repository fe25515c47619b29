package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// EntryAssembler runs every configured source through the fetcher and
// collects the resulting feed entries in source order
type EntryAssembler struct {
	fetcher     *ContentFetcher
	concurrency int
}

// NewEntryAssembler creates an assembler. Concurrency below 2 processes sources one at a time.
func NewEntryAssembler(fetcher *ContentFetcher, concurrency int) *EntryAssembler {
	return &EntryAssembler{fetcher: fetcher, concurrency: concurrency}
}

type sourceOutcome struct {
	entry  *FeedEntry
	result ProcessingResult
}

// BuildEntries processes sources and returns their entries in declaration
// order, along with one result per source. Failures never stop the run.
func (a *EntryAssembler) BuildEntries(ctx context.Context, sources []Source) ([]FeedEntry, []ProcessingResult) {
	outcomes := make([]sourceOutcome, len(sources))

	log.Printf("Processing %d sources...", len(sources))

	if a.concurrency <= 1 {
		for i, src := range sources {
			outcomes[i] = a.processSource(ctx, i, len(sources), src)
		}
	} else {
		a.processConcurrently(ctx, sources, outcomes)
	}

	entries := make([]FeedEntry, 0, len(sources))
	results := make([]ProcessingResult, 0, len(sources))
	for _, o := range outcomes {
		if o.entry != nil {
			entries = append(entries, *o.entry)
		}
		results = append(results, o.result)
	}
	return entries, results
}

func (a *EntryAssembler) processConcurrently(ctx context.Context, sources []Source, outcomes []sourceOutcome) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := a.concurrency
	if workers > len(sources) {
		workers = len(sources)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = a.processSource(ctx, i, len(sources), sources[i])
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (a *EntryAssembler) processSource(ctx context.Context, i, total int, src Source) sourceOutcome {
	log.Printf("[%d/%d] Processing: %s", i+1, total, src.Name)

	entry, err := a.fetcher.FetchEntry(ctx, src)
	switch {
	case err == nil && entry != nil:
		log.Printf("✓ %s", entry.Title)
		return sourceOutcome{entry: entry, result: ProcessingResult{Source: src, Status: StatusSuccess}}
	case entry != nil:
		log.Printf("✗ %s: %v (placeholder entry added)", src.Name, err)
		return sourceOutcome{entry: entry, result: ProcessingResult{Source: src, Status: StatusError, Error: err}}
	case errors.Is(err, ErrNoEntry):
		log.Printf("- Skipping %s: no entries", src.Name)
		return sourceOutcome{result: ProcessingResult{Source: src, Status: StatusSkipped}}
	default:
		log.Printf("Warning: skipping %s: %v", src.Name, err)
		return sourceOutcome{result: ProcessingResult{Source: src, Status: StatusSkipped, Error: err}}
	}
}

// FeedUpdated is the newest entry timestamp, or now in UTC when there are no entries
func FeedUpdated(entries []FeedEntry, now func() time.Time) time.Time {
	if len(entries) == 0 {
		return now().UTC()
	}
	latest := entries[0].PublishedAt
	for _, e := range entries[1:] {
		if e.PublishedAt.After(latest) {
			latest = e.PublishedAt
		}
	}
	return latest
}

// summarizeResults counts results per status
func summarizeResults(results []ProcessingResult) map[ProcessingStatus]int {
	counts := make(map[ProcessingStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
