package models

import (
	"math"
	"time"
)

type AnalyticsRecord struct {
	Impressions int       `json:"impressions"`
	Clicks      int       `json:"clicks"`
	Dismissals  int       `json:"dismissals"`
	FirstSeen   time.Time `json:"first_seen"`
	LastUpdated time.Time `json:"last_updated"`
}

func NewAnalyticsRecord(now time.Time) *AnalyticsRecord {
	return &AnalyticsRecord{FirstSeen: now, LastUpdated: now}
}

// CTR is clicks per impression as a percentage rounded to two decimals.
func (r *AnalyticsRecord) CTR() float64 {
	if r.Impressions <= 0 {
		return 0
	}
	return math.Round(float64(r.Clicks)/float64(r.Impressions)*100*100) / 100
}

// AnalyticsView is the read-side shape of a record; CTR is never stored.
type AnalyticsView struct {
	BannerType  string    `json:"banner_type"`
	Impressions int       `json:"impressions"`
	Clicks      int       `json:"clicks"`
	Dismissals  int       `json:"dismissals"`
	CTR         float64   `json:"ctr"`
	FirstSeen   time.Time `json:"first_seen"`
	LastUpdated time.Time `json:"last_updated"`
}

func (r *AnalyticsRecord) View(bannerType string) AnalyticsView {
	return AnalyticsView{
		BannerType:  bannerType,
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		Dismissals:  r.Dismissals,
		CTR:         r.CTR(),
		FirstSeen:   r.FirstSeen,
		LastUpdated: r.LastUpdated,
	}
}

// AnalyticsReport answers an "all" query: one view per profile plus a
// totals row whose CTR is computed over the summed counters.
type AnalyticsReport struct {
	Banners map[string]AnalyticsView `json:"banners"`
	Totals  AnalyticsView            `json:"totals"`
}
