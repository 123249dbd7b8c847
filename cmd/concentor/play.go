package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/calvinwijaya/concentor/internal/game"
	"github.com/calvinwijaya/concentor/internal/logging"
	"github.com/calvinwijaya/concentor/internal/tui"
)

var playLogFile string

// playCmd runs the game in the terminal
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Match Cards in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The board owns the screen, so logs only go to a file when asked.
		log := zerolog.Nop()
		if playLogFile != "" {
			f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			log = logging.New(f, cfg.LogLevel, false)
		}

		round, err := game.NewRound(game.Catalog, roundOptions(cfg)...)
		if err != nil {
			return err
		}

		model := tui.NewModel(round, cfg.Timing(), log)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("terminal error: %w", err)
		}
		return nil
	},
}

func init() {
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "write logs to this file")
	rootCmd.AddCommand(playCmd)
}
