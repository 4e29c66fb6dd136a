package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/openpool/pool-engine/internal/config"
	"github.com/openpool/pool-engine/internal/engine"
	"github.com/openpool/pool-engine/internal/host"
	"github.com/openpool/pool-engine/internal/metrics"
	"github.com/openpool/pool-engine/internal/oracle"
	"github.com/openpool/pool-engine/internal/rng"
	"github.com/openpool/pool-engine/internal/service"
	"github.com/openpool/pool-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.RedisURL != "" {
			opt, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Wallet ---
	// In-memory bank with a faucet endpoint. A production deployment
	// replaces this with the real ledger environment.
	bank := host.NewBank()

	// --- Oracle clients ---
	deps := engine.Deps{
		Wallet:       bank,
		ReissueDelay: cfg.ReissueDelay,
	}
	if cfg.OraclePushURL != "" {
		deps.Push = oracle.NewHTTPPushClient(cfg.OraclePushURL)
		slog.Info("push oracle configured", "url", cfg.OraclePushURL)
	}
	if cfg.OraclePullURL != "" {
		deps.Pull = oracle.NewHTTPPullClient(cfg.OraclePullURL)
		slog.Info("pull oracle configured", "url", cfg.OraclePullURL)
	}

	// --- Randomness provider ---
	// The service is constructed after the provider, but the local
	// provider delivers callbacks through it; the closure bridges the gap.
	var svc *service.Service
	if cfg.RandomnessURL != "" {
		deps.Random = rng.NewHTTPProvider(cfg.RandomnessProvider, cfg.RandomnessURL, cfg.RandomnessCallback)
		slog.Info("randomness provider configured", "url", cfg.RandomnessURL)
	} else {
		slog.Warn("RANDOMNESS_URL not set, using deterministic local provider (development only)")
		deps.Random = rng.NewLocalProvider(cfg.RandomnessProvider, cfg.RandomnessFee, time.Second,
			func(ctx context.Context, seq uint64, provider string, value uint64) error {
				return svc.DeliverRandomness(ctx, seq, provider, value)
			})
	}

	// --- WebSocket hub ---
	wsHub := service.NewWSHub()
	go wsHub.Run()

	// --- Pool service ---
	svc = service.NewService(st, deps, wsHub)
	if err := svc.Rehydrate(context.Background()); err != nil {
		slog.Error("failed to rehydrate pools", "err", err)
		os.Exit(1)
	}

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"pool-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time pool events.
		r.Get("/ws", wsHub.HandleWS)

		// Development faucet for the in-memory bank.
		r.Post("/faucet", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Account string          `json:"account"`
				Amount  decimal.Decimal `json:"amount"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Account == "" || !body.Amount.IsPositive() {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			bank.Credit(body.Account, body.Amount)
			w.WriteHeader(http.StatusNoContent)
		})

		// Pool management.
		r.Post("/pools", svc.CreatePool)
		r.Get("/pools/{poolID}", svc.GetPool)
		r.Get("/pools/{poolID}/probabilities", svc.GetProbabilities)
		r.Get("/pools/{poolID}/bets", svc.GetBets)
		r.Post("/pools/{poolID}/outcomes", svc.AddOutcome)
		r.Delete("/pools/{poolID}/outcomes/{index}", svc.RemoveOutcome)
		r.Post("/pools/{poolID}/close", svc.CloseBetting)
		r.Post("/pools/{poolID}/extend", svc.ExtendDeadline)
		r.Post("/pools/{poolID}/pause", svc.TogglePause)

		// Betting and settlement.
		r.Post("/pools/{poolID}/bets", svc.PlaceBet)
		r.Post("/pools/{poolID}/withdrawals", svc.WithdrawBet)
		r.Post("/pools/{poolID}/resolve", svc.Resolve)
		r.Post("/pools/{poolID}/randomness", svc.OnRandomness)
		r.Post("/pools/{poolID}/randomness/reissue", svc.ReissueRandomness)
		r.Post("/pools/{poolID}/claims", svc.ClaimWinnings)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("pool-engine listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down pool-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("pool-engine stopped")
}
