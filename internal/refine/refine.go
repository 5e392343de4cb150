package refine

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"poolscope/internal/model"
)

const addressLength = 42

var volumePrinter = message.NewPrinter(language.English)

// Refine joins pool tickers with resolved token metadata and derives the
// display and quality fields. Pure and deterministic: identical inputs always
// produce identical outputs.
func Refine(pools []model.PoolTicker, tokens []model.TokenMetadata) []model.RefinedPool {
	symbols := make(map[string]string, len(tokens))
	for _, token := range tokens {
		if token.Symbol == nil || *token.Symbol == "" {
			continue
		}
		symbols[strings.ToLower(token.Address)] = *token.Symbol
	}

	// Single pass over the whole table; every row is scored against the same
	// denominator.
	maxVolume := 0.0
	for _, p := range pools {
		if p.VolumeUSD > maxVolume {
			maxVolume = p.VolumeUSD
		}
	}

	refined := make([]model.RefinedPool, 0, len(pools))
	for _, p := range pools {
		baseSymbol := resolveSymbol(p.Base, symbols)
		targetSymbol := resolveSymbol(p.Target, symbols)
		score := liquidityScore(p.VolumeUSD, maxVolume)

		refined = append(refined, model.RefinedPool{
			PoolTicker:      p,
			BaseSymbol:      baseSymbol,
			TargetSymbol:    targetSymbol,
			TradingPair:     baseSymbol + "/" + targetSymbol,
			VolumeFormatted: FormatVolume(p.VolumeUSD),
			LiquidityScore:  score,
			TrustGrade:      TrustGrade(score),
		})
	}
	return refined
}

// resolveSymbol maps an address-shaped value to its resolved symbol, falling
// back to a truncated address when unresolved. Values that are not
// address-shaped are already symbols and pass through unchanged.
func resolveSymbol(value string, symbols map[string]string) string {
	trimmed := strings.TrimSpace(value)
	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "0x") || len(lowered) != addressLength {
		return value
	}
	if symbol, ok := symbols[lowered]; ok {
		return symbol
	}
	return trimmed[:8] + "..."
}

func liquidityScore(volume, maxVolume float64) float64 {
	if maxVolume <= 0 {
		return 0
	}
	return math.Round(volume/maxVolume*100*100) / 100
}

// TrustGrade buckets a 0-100 liquidity score into the four-tier grade.
func TrustGrade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 50:
		return "B"
	case score >= 20:
		return "C"
	default:
		return "D"
	}
}

// FormatVolume renders a USD volume for display, thousands-separated with no
// decimals, e.g. "$1,234,567".
func FormatVolume(volume float64) string {
	return volumePrinter.Sprintf("$%.0f", volume)
}

// TopByVolume returns the n highest-volume rows, sorted descending. The sort
// is stable so rows with equal volume keep their original order.
func TopByVolume(pools []model.RefinedPool, n int) []model.RefinedPool {
	top := make([]model.RefinedPool, len(pools))
	copy(top, pools)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].VolumeUSD > top[j].VolumeUSD
	})
	if n < len(top) {
		top = top[:n]
	}
	return top
}
