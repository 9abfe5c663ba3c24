// cmd/reviewdesk/main.go
//
// Entry point for the reviewdesk console.
//
// Flow:
// 1. Load ~/.reviewdesk/config.yaml (created with defaults on first run)
// 2. Apply any command line overrides
// 3. Launch the TUI against the configured review service

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/reviewdesk/internal/config"
	"github.com/kingrea/reviewdesk/internal/logbook"
	"github.com/kingrea/reviewdesk/internal/reviewapi"
	"github.com/kingrea/reviewdesk/internal/tui"
)

func main() {
	serverFlag := flag.String("server", "", "review service base URL (overrides config)")
	reviewerFlag := flag.String("reviewer", "", "reviewer id recorded on decisions (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}
	if *reviewerFlag != "" {
		cfg.ReviewerID = *reviewerFlag
	}

	lb, err := logbook.New(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logbook: %v\n", err)
		os.Exit(1)
	}

	client := reviewapi.New(cfg.ServerURL)

	p := tea.NewProgram(
		tui.NewApp(client, cfg, lb),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
