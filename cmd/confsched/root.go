package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"confsched/config"
	"confsched/internal/adapters/feed"
	"confsched/internal/repository/sqlite"
	"confsched/internal/services"
	"confsched/internal/ui"
)

var exit = os.Exit

var feedURLFlag string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "confsched",
	Short: "Terminal conference schedule viewer",
	Long: `confsched fetches a conference session feed and renders it as a
day-by-day schedule grid in the terminal. Favorite sessions with a keystroke;
favorites persist locally and can be used to filter the grid.`,
	SilenceErrors: true,
	RunE:          runViewer,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&feedURLFlag, "feed", "", "session feed URL (overrides FEED_URL)")
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if feedURLFlag != "" {
		cfg.FeedURL = feedURLFlag
	}

	// The TUI owns stdout, so logs go to a file when configured and are
	// discarded otherwise.
	var logW io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.LogFile, err)
		} else {
			defer f.Close()
			logW = f
		}
	}
	logger := config.NewLogger(logW)

	fetcher := feed.NewHTTPFetcher(nil, cfg.FeedURL)
	scheduleSvc := services.NewScheduleService(fetcher, cfg.FetchTimeout)

	// Favoriting stays usable in memory even when the local store cannot
	// be opened.
	var favoritesSvc = services.NewFavoritesService(nil, logger)
	db, err := sqlite.Open(cfg.FavoritesDB)
	if err != nil {
		logger.Warn("open favorites store failed, favorites will not persist", "path", cfg.FavoritesDB, "err", err)
	} else {
		defer db.Close()
		favoritesSvc = services.NewFavoritesService(sqlite.NewFavoritesRepository(db), logger)
	}

	model := ui.NewScheduleModel(scheduleSvc, favoritesSvc)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
