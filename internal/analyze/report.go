package analyze

import (
	"go.uber.org/zap"
)

// earlyPageLimit caps the per-page breakdown to the earliest pages; the
// point of the report is how front-loaded the high-value pools are.
const earlyPageLimit = 10

// Log writes the distribution report through the logger.
func (d Distribution) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if d.Total == 0 {
		logger.Info("no pools above threshold", zap.Float64("threshold", d.Threshold))
		return
	}

	logger.Info("high volume distribution",
		zap.Float64("threshold", d.Threshold),
		zap.Int("total", d.Total),
		zap.Int("pages_with_hits", d.PageCount),
		zap.Int("first_page", d.FirstPage),
		zap.Int("last_page", d.LastPage),
		zap.Int("max_page", d.MaxPage),
	)

	limit := len(d.PerPage)
	if limit > earlyPageLimit {
		limit = earlyPageLimit
	}
	for _, pc := range d.PerPage[:limit] {
		logger.Info("page breakdown",
			zap.Float64("threshold", d.Threshold),
			zap.Int("page", pc.Page),
			zap.Int("count", pc.Count),
			zap.Float64("percent", pc.Percent),
		)
	}
	if rest := len(d.PerPage) - limit; rest > 0 {
		remaining := 0
		for _, pc := range d.PerPage[limit:] {
			remaining += pc.Count
		}
		logger.Info("later pages",
			zap.Float64("threshold", d.Threshold),
			zap.Int("pages", rest),
			zap.Int("count", remaining),
			zap.Float64("percent", float64(remaining)/float64(d.Total)*100),
		)
	}
}

// Log writes the cutoff recommendation through the logger.
func (c Cutoff) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if c.Total == 0 {
		logger.Info("no pools above threshold", zap.Float64("threshold", c.Threshold))
		return
	}
	if !c.Found {
		logger.Info("target not reachable",
			zap.Float64("threshold", c.Threshold),
			zap.Float64("target_pct", c.TargetPct),
		)
		return
	}

	logger.Info("optimal cutoff",
		zap.Float64("threshold", c.Threshold),
		zap.Float64("target_pct", c.TargetPct),
		zap.Int("target_count", c.TargetCount),
		zap.Int("total", c.Total),
		zap.Int("cutoff_page", c.Page),
		zap.Int("captured", c.Captured),
		zap.Float64("captured_pct", c.CapturedPct),
		zap.Float64("skipped_pct", c.SkippedPct),
	)
}
