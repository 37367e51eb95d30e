// Package main runs a one-shot scan of the PumpSwap pools for a target
// token and prints the derived prices, liquidity and signals.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/pricing"
	"github.com/xbxaxd26/pump-swap-screen/internal/report"
	"github.com/xbxaxd26/pump-swap-screen/internal/scan"
	"github.com/xbxaxd26/pump-swap-screen/internal/signal"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	mint := flag.String("mint", "", "Target token mint address (empty scans all pools)")
	rpcURL := flag.String("rpc-endpoint", envOr("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"), "Solana RPC HTTP endpoint")
	minLiquidity := flag.Float64("min-liquidity", 1.0, "Minimum pool liquidity in SOL for signals and stats")
	poolDelay := flag.Duration("pool-delay", 200*time.Millisecond, "Delay between per-pool balance fetches")
	output := flag.String("output", "", "Write a Markdown report to this path")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall scan timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pools := market.NewPoolStore()
	stats := market.NewStatsAggregator()
	rpc := solana.NewHTTPClient(*rpcURL)

	runner := scan.NewRunner(scan.RunnerOptions{
		RPC:          rpc,
		Deriver:      pricing.NewDeriver(rpc, pricing.WithFetchDelay(*poolDelay), pricing.WithLogger(logger)),
		Pools:        pools,
		Registry:     market.NewTokenRegistry(),
		Signals:      signal.NewBook(),
		Engine:       signal.NewEngine(),
		Stats:        stats,
		TargetMint:   *mint,
		MinLiquidity: *minLiquidity,
		PoolDelay:    *poolDelay,
		Logger:       logger,
	})

	result, err := runner.Scan(ctx)
	if err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}
	logger.Printf("Scanned %d accounts in %s (%d decode failures)",
		result.AccountsSeen, result.Duration, result.DecodeFailures)

	snap := runner.Snapshot()
	fmt.Print(report.RenderConsole(snap))

	if *output != "" {
		if err := os.WriteFile(*output, []byte(report.RenderMarkdown(snap)), 0o644); err != nil {
			logger.Fatalf("Write report: %v", err)
		}
		logger.Printf("Report written to %s", *output)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
