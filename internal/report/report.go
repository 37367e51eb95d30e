// Package report renders screener snapshots for humans.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/scan"
)

// RenderConsole renders a snapshot as plain text for terminal output.
// Pools are listed by liquidity, deepest first.
func RenderConsole(snap scan.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Pools: %d | Tokens: %d | New (24h): %d\n",
		snap.Stats.TotalPools, len(snap.Tokens), snap.Stats.NewPools24h))
	sb.WriteString(fmt.Sprintf("Liquidity: total %s SOL, avg %s, median %s, min %s, max %s\n",
		humanize.CommafWithDigits(snap.Stats.TotalLiquidity, 2),
		humanize.CommafWithDigits(snap.Stats.AverageLiquidity, 2),
		humanize.CommafWithDigits(snap.Stats.MedianLiquidity, 2),
		humanize.CommafWithDigits(snap.Stats.MinLiquidity, 2),
		humanize.CommafWithDigits(snap.Stats.MaxLiquidity, 2)))
	if snap.Stats.UpdatedAt > 0 {
		sb.WriteString(fmt.Sprintf("Stats updated %s\n", humanize.Time(time.UnixMilli(snap.Stats.UpdatedAt))))
	}
	sb.WriteString("\n")

	pools := sortedByLiquidity(snap.Pools)
	for _, p := range pools {
		sb.WriteString(fmt.Sprintf("%s  token %s  price %.12f SOL  liquidity %s SOL\n",
			p.Address, p.TokenMint(), p.Price, humanize.CommafWithDigits(p.Reserves.Native, 4)))
	}

	if len(snap.Signals) > 0 {
		sb.WriteString("\nSignals:\n")
		for _, s := range snap.Signals {
			sb.WriteString(fmt.Sprintf("  %-11s %3.0f%%  %s\n", s.Signal, s.Confidence, s.Mint))
			for _, reason := range s.Reasons {
				sb.WriteString(fmt.Sprintf("      - %s\n", reason))
			}
		}
	}

	return sb.String()
}

// RenderMarkdown renders a snapshot as Markdown.
func RenderMarkdown(snap scan.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# PumpSwap Market Report\n\n")
	if snap.Stats.UpdatedAt > 0 {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.UnixMilli(snap.Stats.UpdatedAt).UTC().Format(time.RFC3339)))
	}

	sb.WriteString("## Market Stats\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Pools | %d |\n", snap.Stats.TotalPools))
	sb.WriteString(fmt.Sprintf("| Tracked Tokens | %d |\n", len(snap.Tokens)))
	sb.WriteString(fmt.Sprintf("| New Pools (24h) | %d |\n", snap.Stats.NewPools24h))
	sb.WriteString(fmt.Sprintf("| Total Liquidity | %s SOL |\n", humanize.CommafWithDigits(snap.Stats.TotalLiquidity, 2)))
	sb.WriteString(fmt.Sprintf("| Average Liquidity | %s SOL |\n", humanize.CommafWithDigits(snap.Stats.AverageLiquidity, 2)))
	sb.WriteString(fmt.Sprintf("| Median Liquidity | %s SOL |\n", humanize.CommafWithDigits(snap.Stats.MedianLiquidity, 2)))
	sb.WriteString("\n")

	sb.WriteString("## Pools\n\n")
	if len(snap.Pools) > 0 {
		sb.WriteString("| Pool | Token | Price (SOL) | Liquidity (SOL) |\n")
		sb.WriteString("|------|-------|-------------|------------------|\n")
		for _, p := range sortedByLiquidity(snap.Pools) {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.12f | %s |\n",
				p.Address, p.TokenMint(), p.Price, humanize.CommafWithDigits(p.Reserves.Native, 4)))
		}
	} else {
		sb.WriteString("No pools tracked.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Signals\n\n")
	if len(snap.Signals) > 0 {
		sb.WriteString("| Mint | Signal | Confidence | Reasons |\n")
		sb.WriteString("|------|--------|------------|--------|\n")
		for _, s := range snap.Signals {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | %s |\n",
				s.Mint, s.Signal, s.Confidence, strings.Join(s.Reasons, "; ")))
		}
	} else {
		sb.WriteString("No active signals.\n")
	}

	return sb.String()
}

func sortedByLiquidity(pools []*domain.PoolRecord) []*domain.PoolRecord {
	out := make([]*domain.PoolRecord, len(pools))
	copy(out, pools)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reserves.Native != out[j].Reserves.Native {
			return out[i].Reserves.Native > out[j].Reserves.Native
		}
		return out[i].Address < out[j].Address
	})
	return out
}
