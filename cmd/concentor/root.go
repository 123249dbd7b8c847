package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvinwijaya/concentor/internal/assets"
	"github.com/calvinwijaya/concentor/internal/config"
	"github.com/calvinwijaya/concentor/internal/game"
	"github.com/calvinwijaya/concentor/internal/logging"
)

var (
	envFile string
	cfg     config.Config
	images  *assets.Set
)

var rootCmd = &cobra.Command{
	Use:           "concentor",
	Short:         "Match Cards, a memory matching game",
	Long:          "Concentor deals ten pairs of playing cards face-down on a 4x5 grid.\nFlip two at a time and match every pair in as few errors as possible.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &loaded); err != nil {
			return err
		}
		cfg = loaded

		// The images are checked even in the terminal so a broken build fails early.
		set, err := assets.Load(game.Catalog)
		if err != nil {
			return fmt.Errorf("failed to load card images: %w", err)
		}
		images = set
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&envFile, "env-file", ".env", "env file with CONCENTOR_* settings")
	f.Duration("preview-delay", 0, "how long the cards are shown when a round starts")
	f.Duration("hide-delay", 0, "how long a mismatched pair stays face-up")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.Int64("seed", 0, "fixed shuffle seed, 0 for random")
}

// applyFlags overrides the loaded config with flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	var err error
	if f.Changed("preview-delay") {
		if c.PreviewDelay, err = f.GetDuration("preview-delay"); err != nil {
			return err
		}
	}
	if f.Changed("hide-delay") {
		if c.HideDelay, err = f.GetDuration("hide-delay"); err != nil {
			return err
		}
	}
	if f.Changed("log-level") {
		if c.LogLevel, err = f.GetString("log-level"); err != nil {
			return err
		}
	}
	if f.Changed("seed") {
		if c.Seed, err = f.GetInt64("seed"); err != nil {
			return err
		}
	}
	if f.Lookup("port") != nil && f.Changed("port") {
		if c.Port, err = f.GetString("port"); err != nil {
			return err
		}
	}
	if f.Lookup("frontend") != nil && f.Changed("frontend") {
		if c.FrontendURL, err = f.GetString("frontend"); err != nil {
			return err
		}
	}
	return c.Validate()
}

// roundOptions seeds the shuffle when a fixed seed is configured.
func roundOptions(c config.Config) []game.Option {
	if c.Seed == 0 {
		return nil
	}
	return []game.Option{game.WithRand(rand.New(rand.NewSource(c.Seed)))}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logging.New(os.Stderr, "error", true)
		log.Error().Err(err).Msg("concentor failed")
		os.Exit(1)
	}
}
