package services

import (
	"fmt"
	"time"

	"signalkit/internal/models"
)

const AnalyticsOptionKey = "signalkit_analytics"

type analyticsEvent int

const (
	eventImpression analyticsEvent = iota
	eventClick
	eventDismissal
)

type AnalyticsServiceInterface interface {
	TrackImpression(t models.BannerType) error
	TrackClick(t models.BannerType) error
	TrackDismissal(t models.BannerType) error
	Get(t models.BannerType) models.AnalyticsView
	GetAll() models.AnalyticsReport
	Reset(selector string) error
}

// AnalyticsService keeps per-banner counters in the options store. Each
// track call is a read-modify-write of the whole record without locking, so
// concurrent requests may lose increments; counts are an approximation.
type AnalyticsService struct {
	store models.OptionStoreInterface
	now   func() time.Time
}

func NewAnalyticsService(store models.OptionStoreInterface) AnalyticsServiceInterface {
	return &AnalyticsService{
		store: store,
		now:   time.Now,
	}
}

func (as *AnalyticsService) TrackImpression(t models.BannerType) error {
	return as.track(t, eventImpression)
}

func (as *AnalyticsService) TrackClick(t models.BannerType) error {
	return as.track(t, eventClick)
}

func (as *AnalyticsService) TrackDismissal(t models.BannerType) error {
	return as.track(t, eventDismissal)
}

func (as *AnalyticsService) track(t models.BannerType, event analyticsEvent) error {
	if _, ok := models.ParseBannerType(string(t)); !ok {
		return fmt.Errorf("unknown banner type %q", t)
	}

	now := as.now()
	records := as.load()
	rec, ok := records[string(t)]
	if !ok || rec == nil {
		rec = models.NewAnalyticsRecord(now)
		records[string(t)] = rec
	}

	switch event {
	case eventImpression:
		rec.Impressions++
	case eventClick:
		rec.Clicks++
	case eventDismissal:
		rec.Dismissals++
	}
	rec.LastUpdated = now

	return models.SetOption(as.store, AnalyticsOptionKey, records)
}

func (as *AnalyticsService) Get(t models.BannerType) models.AnalyticsView {
	rec, ok := as.load()[string(t)]
	if !ok || rec == nil {
		rec = &models.AnalyticsRecord{}
	}
	return rec.View(string(t))
}

func (as *AnalyticsService) GetAll() models.AnalyticsReport {
	records := as.load()
	report := models.AnalyticsReport{
		Banners: make(map[string]models.AnalyticsView, len(models.BannerTypes)),
	}

	totals := &models.AnalyticsRecord{}
	for _, t := range models.BannerTypes {
		rec, ok := records[string(t)]
		if !ok || rec == nil {
			rec = &models.AnalyticsRecord{}
		}
		report.Banners[string(t)] = rec.View(string(t))

		totals.Impressions += rec.Impressions
		totals.Clicks += rec.Clicks
		totals.Dismissals += rec.Dismissals
		if !rec.FirstSeen.IsZero() && (totals.FirstSeen.IsZero() || rec.FirstSeen.Before(totals.FirstSeen)) {
			totals.FirstSeen = rec.FirstSeen
		}
		if rec.LastUpdated.After(totals.LastUpdated) {
			totals.LastUpdated = rec.LastUpdated
		}
	}
	report.Totals = totals.View(models.BannerAll)
	return report
}

// Reset zeroes one profile or, with "all", every profile. Each reset
// profile gets its own fresh timestamps.
func (as *AnalyticsService) Reset(selector string) error {
	var targets []models.BannerType
	if selector == models.BannerAll {
		targets = models.BannerTypes
	} else {
		t, ok := models.ParseBannerType(selector)
		if !ok {
			return fmt.Errorf("unknown banner type %q", selector)
		}
		targets = []models.BannerType{t}
	}

	records := as.load()
	for _, t := range targets {
		records[string(t)] = models.NewAnalyticsRecord(as.now())
	}
	return models.SetOption(as.store, AnalyticsOptionKey, records)
}

// load returns the stored records; a missing or unreadable option yields an
// empty map that track calls fill lazily.
func (as *AnalyticsService) load() map[string]*models.AnalyticsRecord {
	records := make(map[string]*models.AnalyticsRecord)
	if !models.GetOption(as.store, AnalyticsOptionKey, &records) || records == nil {
		return make(map[string]*models.AnalyticsRecord)
	}
	for k, rec := range records {
		if rec == nil {
			delete(records, k)
			continue
		}
		rec.Impressions = max(rec.Impressions, 0)
		rec.Clicks = max(rec.Clicks, 0)
		rec.Dismissals = max(rec.Dismissals, 0)
	}
	return records
}
