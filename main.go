package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var (
	outputDir        string
	htmlTemplatePath string
	fetchTimeout     time.Duration
	concurrency      int
	debugMode        bool
)

var rootCmd = &cobra.Command{
	Use:   "release-feed [config-file]",
	Short: "Unified release-notes feed from vendor documentation pages",
	Long: `Fetches the latest release section of each configured documentation page
and the newest entry of each Atom feed, then writes one combined feed as
RSS, Atom, HTML and Markdown.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if debugMode {
			SetDebugMode(true)
		}

		settings, err := settingsFromArgs(cmd, args)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := run(ctx, settings, time.Now); err != nil {
			log.Fatalf("Generating feeds failed: %v", err)
		}
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources [config-file]",
	Short: "List configured sources",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := settingsFromArgs(cmd, args)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		for _, src := range settings.Sources {
			fmt.Fprintf(cmd.OutOrStdout(), "%-5s %-30s %s\n", src.Kind, src.Name, src.URL)
		}
	},
}

// settingsFromArgs loads the config file (embedded defaults when none is
// given and release-feed.yaml is missing), applies flags and validates.
func settingsFromArgs(cmd *cobra.Command, args []string) (*Settings, error) {
	var (
		settings *Settings
		err      error
	)
	if len(args) > 0 {
		settings, err = loadSettingsRequired(args[0])
	} else {
		settings, err = loadSettings(defaultSettingsPath)
	}
	if err != nil {
		return nil, err
	}

	overrides := &ConfigOverrides{}
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		overrides.OutputDirectory = &outputDir
	}
	if flags.Changed("timeout") {
		overrides.Timeout = &fetchTimeout
	}
	if flags.Changed("concurrency") {
		overrides.Concurrency = &concurrency
	}
	if flags.Changed("html-template") {
		overrides.HTMLTemplatePath = &htmlTemplatePath
	}
	overrides.Apply(settings)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// run builds entries for every source and writes all output formats.
// Per-source failures are logged and never fail the run.
func run(ctx context.Context, settings *Settings, now func() time.Time) error {
	tmpl, err := settings.HTMLTemplate()
	if err != nil {
		return err
	}
	writer, err := NewFeedWriter(settings.Feed, settings.Output, tmpl)
	if err != nil {
		return err
	}

	fetcher := NewContentFetcher(settings.Fetch, now)
	assembler := NewEntryAssembler(fetcher, settings.Fetch.Concurrency)

	entries, results := assembler.BuildEntries(ctx, settings.Sources)
	counts := summarizeResults(results)
	log.Printf("Built %d entries from %d sources (%d ok, %d placeholders, %d skipped)",
		len(entries), len(results), counts[StatusSuccess], counts[StatusError], counts[StatusSkipped])

	_, err = writer.WriteAll(entries, now)
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to write feed files to")
	rootCmd.Flags().StringVar(&htmlTemplatePath, "html-template", "", "Path to custom HTML page template")
	rootCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "Per-source fetch timeout (default from config, 10s)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of sources fetched in parallel")
	rootCmd.AddCommand(sourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
