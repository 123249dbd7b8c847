package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/calvinwijaya/concentor/internal/api"
	"github.com/calvinwijaya/concentor/internal/game"
	"github.com/calvinwijaya/concentor/internal/logging"
	"github.com/calvinwijaya/concentor/internal/session"
	"github.com/calvinwijaya/concentor/internal/store"
)

// serveCmd serves the browser version of the game
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Match Cards over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(os.Stderr, cfg.LogLevel, true)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		clk := clock.New()
		timing := cfg.Timing()

		sessionStore := store.NewMemoryStore()
		log.Info().Msg("In-memory session store initialized")

		allowed := cfg.FrontendURL
		hub := api.NewHub(func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowed || origin == "http://"+r.Host
		}, log)
		go hub.Run(ctx)
		log.Info().Msg("WebSocket hub started")

		factory := func(id string, notify session.Notifier) (*session.Session, error) {
			round, err := game.NewRound(game.Catalog, roundOptions(cfg)...)
			if err != nil {
				return nil, err
			}
			return session.New(id, round, clk, timing, notify, log), nil
		}

		handlers := api.NewHandlers(sessionStore, hub, images, factory, log)
		go handlers.RunReaper(ctx, clk, cfg.SessionTTL, time.Minute)

		r := mux.NewRouter()
		handlers.RegisterRoutes(r)
		r.Use(api.RequestLogger(log))

		c := cors.New(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		})

		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      c.Handler(r),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Msg("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		// Stop the timers of sessions that are still open.
		sessions, _ := sessionStore.AllSessions()
		for _, sess := range sessions {
			sess.Close()
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "server port")
	serveCmd.Flags().String("frontend", "", "frontend URL allowed by CORS")
	rootCmd.AddCommand(serveCmd)
}
