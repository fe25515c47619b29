package main

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/mmcdole/gofeed"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: feedcheck <check|links> <feed-file>...")
	}

	command := os.Args[1]
	files := os.Args[2:]

	var failed int
	switch command {
	case "check":
		failed = checkFiles(files)
	case "links":
		failed = checkLinks(files)
	default:
		log.Fatalf("Unknown command %q", command)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// parseFeedFile parses an RSS or Atom file
func parseFeedFile(path string) (*gofeed.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return feed, nil
}

func checkFiles(files []string) int {
	failed := 0
	for _, path := range files {
		feed, err := parseFeedFile(path)
		if err != nil {
			log.Printf("✗ %v", err)
			failed++
			continue
		}
		fmt.Printf("✓ %s: %s %s %q, %d entries\n", path, feed.FeedType, feed.FeedVersion, feed.Title, len(feed.Items))
	}
	return failed
}

func checkLinks(files []string) int {
	failed := 0
	for _, path := range files {
		feed, err := parseFeedFile(path)
		if err != nil {
			log.Printf("✗ %v", err)
			failed++
			continue
		}
		for _, item := range relativeLinkItems(feed) {
			fmt.Printf("  RELATIVE: %s (%q)\n", item.Title, item.Link)
			failed++
		}
	}
	return failed
}

// relativeLinkItems returns items whose link is not an absolute http(s) URL
func relativeLinkItems(feed *gofeed.Feed) []*gofeed.Item {
	var bad []*gofeed.Item
	for _, item := range feed.Items {
		u, err := url.Parse(item.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			bad = append(bad, item)
		}
	}
	return bad
}
