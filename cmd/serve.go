package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and keep it synchronized with the feed",
	Long: `Start the driftline host: performs the initial feed load, arms the
poll timer (or a file watch for local feeds), and serves the rendered site
with live WebSocket updates.

Examples:
  driftline serve --feed-url https://example.com/feed.json
  driftline serve --feed-url ./testdata/feed.json --port 3000
  driftline serve --no-transitions`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("feed-url", "", "Feed URL (http(s) endpoint or local file path)")
	serveCmd.Flags().Int("poll-interval", 7500, "Feed poll interval in milliseconds")
	serveCmd.Flags().Bool("no-transitions", false, "Disable animated view transitions in clients")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("feed.url", serveCmd.Flags().Lookup("feed-url"))
	viper.BindPFlag("feed.poll_interval_ms", serveCmd.Flags().Lookup("poll-interval"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if noTransitions, _ := cmd.Flags().GetBool("no-transitions"); noTransitions {
		cfg.Render.ViewTransitions = false
	}

	logger := newLogger()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info(ctx, "shutting down")
		if shutdownErr := srv.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "error during shutdown")
		}
		cancel()
	}()

	fmt.Printf("Starting driftline at http://%s:%d (feed: %s)\n",
		cfg.Server.Host, cfg.Server.Port, cfg.Feed.URL)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newLogger() logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(viper.GetString("log_level")),
		Format: viper.GetString("log_format"),
		Output: os.Stderr,
	})
}
