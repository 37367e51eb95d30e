// Package main runs the PumpSwap screener daemon:
// - Scheduled full pool scans with price derivation and signal generation
// - Scheduled transaction volume sampling over the top pools
// - Optional WebSocket push updates for new and changed pools
// - HTTP endpoints for health, Prometheus metrics and current state
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xbxaxd26/pump-swap-screen/internal/config"
	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/observability"
	"github.com/xbxaxd26/pump-swap-screen/internal/pricing"
	"github.com/xbxaxd26/pump-swap-screen/internal/scan"
	"github.com/xbxaxd26/pump-swap-screen/internal/scheduler"
	sig "github.com/xbxaxd26/pump-swap-screen/internal/signal"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
	chstore "github.com/xbxaxd26/pump-swap-screen/internal/storage/clickhouse"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage/jsonfile"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage/migrations"
	pgstore "github.com/xbxaxd26/pump-swap-screen/internal/storage/postgres"
	"github.com/xbxaxd26/pump-swap-screen/internal/volume"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	runOnStart := flag.Bool("run-on-start", true, "Run a full scan immediately on startup")
	flag.Parse()

	logger := log.New(os.Stdout, "[screener] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Core state
	pools := market.NewPoolStore()
	registry := market.NewTokenRegistry()
	signals := sig.NewBook()
	stats := market.NewStatsAggregator()

	// Persistence
	persister, cleanup, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to set up storage: %v", err)
	}
	defer cleanup()

	restoreState(ctx, persister.State, pools, registry, logger)

	// Solana clients
	rpc := solana.NewHTTPClient(cfg.RPC.HTTPURL)
	deriver := pricing.NewDeriver(rpc,
		pricing.WithReferenceMint(cfg.Pricing.ReferenceMint),
		pricing.WithFetchDelay(cfg.Pricing.FetchDelay.Std()),
		pricing.WithLogger(logger),
	)

	monitor := volume.NewMonitor(rpc, pools,
		volume.WithSignatureLimit(cfg.Volume.SignatureLimit),
		volume.WithThreshold(cfg.Volume.SignificanceThreshold),
		volume.WithTopPools(cfg.Volume.TopPools),
		volume.WithNotifier(volume.NewLogNotifier(logger)),
		volume.WithLogger(logger),
	)

	runner := scan.NewRunner(scan.RunnerOptions{
		RPC:          rpc,
		Deriver:      deriver,
		Pools:        pools,
		Registry:     registry,
		Signals:      signals,
		Engine:       sig.NewEngine(),
		Stats:        stats,
		Monitor:      monitor,
		TargetMint:   cfg.Scan.TargetMint,
		MinLiquidity: cfg.Scan.MinLiquidity,
		PoolDelay:    cfg.Scan.PoolDelay.Std(),
		Hooks: scan.Hooks{
			OnSignalComputed: func(sig domain.TradingSignal) {
				observability.RecordSignal(string(sig.Signal))
				if err := persister.LogSignal(ctx, sig); err != nil {
					logger.Printf("[ERROR] log signal for %s: %v", sig.Mint, err)
				}
			},
		},
		Logger: logger,
	})

	// Scheduler
	sched := scheduler.NewScheduler(ctx, runner, monitor, &scanPersister{persister}, logger)
	if err := sched.RegisterAll(cfg.Scan.Cron, cfg.Volume.Cron); err != nil {
		logger.Fatalf("Failed to register tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional push updates
	if cfg.Scan.Subscribe {
		go runSubscription(ctx, cfg.RPC.WSURL, runner, logger)
	}

	// HTTP server
	srv := startHTTPServer(cfg.Server.Addr, runner, logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("[ERROR] HTTP shutdown: %v", err)
		}
	}()

	if *runOnStart {
		go sched.RunScanNow()
	}

	<-ctx.Done()
	logger.Println("Shutting down...")
}

// scanPersister adapts the storage fan-out to the scheduler hook.
type scanPersister struct {
	persister *storage.Persister
}

func (p *scanPersister) Persist(ctx context.Context, snap scan.Snapshot) error {
	observability.UpdateTrackedCounts(len(snap.Pools), len(snap.Tokens))
	observability.UpdateActiveSignals(len(snap.Signals))
	observability.RecordSuccessfulScan(time.Now().Unix())
	return p.persister.PersistState(ctx, snap.Pools, snap.Tokens)
}

// setupStorage builds the persistence fan-out from the configured
// backends. The JSON state file is always on; Postgres and ClickHouse
// join when their DSNs are set.
func setupStorage(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.Persister, func(), error) {
	stateStore, err := jsonfile.NewStateStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("create state store: %w", err)
	}

	persister := &storage.Persister{State: stateStore}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		persister.Pools = pgstore.NewPoolStore(pool)
		persister.Signals = pgstore.NewSignalStore(pool)
		logger.Println("Postgres storage enabled")
	}

	if cfg.Storage.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		persister.History = chstore.NewHistoryStore(conn)
		logger.Println("ClickHouse archive enabled")
	}

	return persister, cleanup, nil
}

// restoreState reloads the last saved pools and tokens, if any.
func restoreState(ctx context.Context, store storage.StateStore, pools *market.PoolStore, registry *market.TokenRegistry, logger *log.Logger) {
	state, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Println("No saved state, starting fresh")
		return
	}
	if err != nil {
		logger.Printf("[ERROR] load state: %v", err)
		return
	}

	pools.Restore(state.Pools)
	registry.Restore(state.Tokens)
	logger.Printf("Restored %d pools and %d tokens (saved %s)",
		len(state.Pools), len(state.Tokens), time.UnixMilli(state.SavedAt).Format(time.RFC3339))
}

// runSubscription keeps a WebSocket subscription alive until shutdown.
func runSubscription(ctx context.Context, wsURL string, runner *scan.Runner, logger *log.Logger) {
	for ctx.Err() == nil {
		ws, err := solana.NewWSClient(ctx, wsURL, nil)
		if err != nil {
			logger.Printf("[ERROR] connect websocket: %v", err)
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		if err := runner.RunSubscription(ctx, ws); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("[ERROR] subscription: %v", err)
		}
		ws.Close()

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

// startHTTPServer serves health, metrics and state endpoints.
func startHTTPServer(addr string, runner *scan.Runner, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())

	started := time.Now()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		snap := runner.Snapshot()
		resp := struct {
			Status  string             `json:"status"`
			Uptime  string             `json:"uptime"`
			Pools   int                `json:"pools"`
			Tokens  int                `json:"tokens"`
			Signals int                `json:"signals"`
			Stats   domain.MarketStats `json:"stats"`
		}{
			Status:  "running",
			Uptime:  time.Since(started).String(),
			Pools:   len(snap.Pools),
			Tokens:  len(snap.Tokens),
			Signals: len(snap.Signals),
			Stats:   snap.Stats,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runner.Snapshot())
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Printf("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("[ERROR] HTTP server: %v", err)
		}
	}()
	return srv
}
