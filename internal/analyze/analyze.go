package analyze

import (
	"sort"

	"poolscope/internal/model"
)

// PageCount is the number of above-threshold pools on one fetch page.
type PageCount struct {
	Page    int
	Count   int
	Percent float64
}

// Distribution describes how pools above a volume threshold spread across
// fetch pages.
type Distribution struct {
	Threshold float64
	Total     int
	PageCount int
	FirstPage int
	LastPage  int
	MaxPage   int
	PerPage   []PageCount
}

// Cutoff recommends the earliest page at which the cumulative count of
// above-threshold pools reaches the target percentage of the total.
type Cutoff struct {
	Threshold   float64
	TargetPct   float64
	Total       int
	TargetCount int
	Page        int
	Captured    int
	CapturedPct float64
	SkippedPct  float64
	Found       bool
}

// DistributionByPage reports, for each threshold, how front-loaded the
// high-volume pools are in the fetch sequence.
func DistributionByPage(pools []model.PoolTicker, thresholds []float64) []Distribution {
	maxPage := maxPageOf(pools)

	out := make([]Distribution, 0, len(thresholds))
	for _, threshold := range thresholds {
		counts, pages := countByPage(pools, threshold)
		d := Distribution{Threshold: threshold, MaxPage: maxPage}
		for _, page := range pages {
			d.Total += counts[page]
		}
		if len(pages) > 0 {
			d.PageCount = len(pages)
			d.FirstPage = pages[0]
			d.LastPage = pages[len(pages)-1]
			for _, page := range pages {
				d.PerPage = append(d.PerPage, PageCount{
					Page:    page,
					Count:   counts[page],
					Percent: float64(counts[page]) / float64(d.Total) * 100,
				})
			}
		}
		out = append(out, d)
	}
	return out
}

// OptimalCutoff finds, for each threshold, the smallest page whose cumulative
// above-threshold count reaches targetPct percent of the total.
func OptimalCutoff(pools []model.PoolTicker, thresholds []float64, targetPct float64) []Cutoff {
	maxPage := maxPageOf(pools)

	out := make([]Cutoff, 0, len(thresholds))
	for _, threshold := range thresholds {
		counts, pages := countByPage(pools, threshold)
		c := Cutoff{Threshold: threshold, TargetPct: targetPct}
		for _, page := range pages {
			c.Total += counts[page]
		}
		if c.Total == 0 {
			out = append(out, c)
			continue
		}

		c.TargetCount = int(float64(c.Total) * targetPct / 100)
		cumulative := 0
		for _, page := range pages {
			cumulative += counts[page]
			if cumulative >= c.TargetCount {
				c.Page = page
				c.Captured = cumulative
				c.Found = true
				break
			}
		}
		if c.Found {
			c.CapturedPct = float64(c.Captured) / float64(c.Total) * 100
			if maxPage > 0 {
				c.SkippedPct = float64(maxPage-c.Page) / float64(maxPage) * 100
			}
		}
		out = append(out, c)
	}
	return out
}

// countByPage groups above-threshold rows by page; pages come back sorted
// ascending.
func countByPage(pools []model.PoolTicker, threshold float64) (map[int]int, []int) {
	counts := make(map[int]int)
	for _, p := range pools {
		if p.VolumeUSD > threshold {
			counts[p.Page]++
		}
	}
	pages := make([]int, 0, len(counts))
	for page := range counts {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return counts, pages
}

func maxPageOf(pools []model.PoolTicker) int {
	maxPage := 0
	for _, p := range pools {
		if p.Page > maxPage {
			maxPage = p.Page
		}
	}
	return maxPage
}
