package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/feed"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the feed once and summarize it",
	Long: `Perform a single feed load and print the snapshot summary:
fingerprint, default route, and the article list. Useful for validating a
feed before serving it.

Examples:
  driftline fetch --feed-url https://example.com/feed.json
  driftline fetch --feed-url ./feed.json --force`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("feed-url", "", "Feed URL (http(s) endpoint or local file path)")
	fetchCmd.Flags().Bool("force", false, "Use a per-call cache key instead of the poll-window key")

	viper.BindPFlag("feed.url", fetchCmd.Flags().Lookup("feed-url"))
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	force, _ := cmd.Flags().GetBool("force")

	synchronizer, err := feed.NewSynchronizer(feed.Options{
		URL:          cfg.Feed.URL,
		PollInterval: cfg.Feed.PollInterval(),
		Logger:       newLogger(),
	})
	if err != nil {
		return err
	}

	snap, err := synchronizer.Load(cmd.Context(), force)
	if err != nil {
		return fmt.Errorf("feed load failed: %w", err)
	}

	fmt.Printf("Feed:          %s\n", cfg.Feed.URL)
	fmt.Printf("Fingerprint:   %s\n", snap.Fingerprint)
	fmt.Printf("Default route: %s\n", snap.Meta.DefaultRoute)
	fmt.Printf("Articles:      %d\n", len(snap.Articles))
	for _, a := range snap.Articles {
		fmt.Printf("  %-24s %s (%d min, %d blocks, %d widgets)\n",
			a.ID, a.Title, a.ReadingMinutes, len(a.Blocks), len(a.Widgets))
	}
	return nil
}
