// Command server runs the club league tracker: an HTTP API plus WebSocket
// push over a single in-memory aggregate, persisted as one JSON document.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edevrim/pingpong/internal/api"
	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/edevrim/pingpong/internal/persist"
	"github.com/edevrim/pingpong/internal/scheduler"
	"github.com/edevrim/pingpong/internal/ws"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := newLogger(cfg)
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Persistence ───────────────────────────────────────────────────────────
	backend, err := persist.New(cfg.Storage)
	if err != nil {
		log.Error("storage init failed", "err", err)
		os.Exit(1)
	}

	store := league.NewStore(cfg.League, clock)
	snap, err := persist.LoadInto(ctx, backend, store)
	if err != nil {
		log.Error("snapshot load failed", "backend", cfg.Storage.Backend, "err", err)
		os.Exit(1)
	}
	if snap != nil {
		log.Info("snapshot restored",
			"backend", cfg.Storage.Backend,
			"players", len(snap.Players),
			"matches", len(snap.Matches),
			"bets", len(snap.Bets),
			"last_saved", snap.LastSaved,
		)
	} else {
		log.Info("no snapshot found, starting empty", "backend", cfg.Storage.Backend)
	}

	saver := persist.NewSaver(backend, cfg.Storage.SaveInterval, clock, log)
	go saver.Run(ctx)

	// ── WebSocket hub ─────────────────────────────────────────────────────────
	hub := ws.NewHub(cfg.Server.AllowedOrigins, log)
	go hub.Run(ctx)

	// Every applied action persists the aggregate and pushes it to clients.
	store.OnChange(saver.Notify)
	store.OnChange(func(st league.State) {
		msg := ws.StateMessage{Players: st.Players, Matches: st.Matches, Bets: st.Bets}
		if m, ok := st.CurrentMatch(); ok {
			msg.CurrentMatch = &m
		}
		hub.BroadcastState(msg)
	})

	// ── Background loops ──────────────────────────────────────────────────────
	sched := scheduler.New(store, hub, saver, cfg.Storage.SaveInterval, clock, log)
	sched.Start(ctx)

	// ── HTTP server ───────────────────────────────────────────────────────────
	router := api.NewRouter(api.RouterDeps{
		Cfg:   cfg,
		Store: store,
		Hub:   hub,
		Clock: clock,
		Log:   log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}

	// The saver's Run loop flushed once on ctx cancellation; one more flush
	// catches anything staged during the drain.
	if err := saver.Flush(shutdownCtx); err != nil {
		log.Error("final snapshot flush failed", "err", err)
	}

	log.Info("bye")
}

// newLogger builds the process logger: JSON in production, text elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler
	if cfg.IsProd() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
