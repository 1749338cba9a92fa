package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalkit/internal/models"
)

func newAnalytics(now time.Time) (*AnalyticsService, models.OptionStoreInterface) {
	store := models.NewOptionStore()
	as := NewAnalyticsService(store).(*AnalyticsService)
	as.now = func() time.Time { return now }
	return as, store
}

func TestAnalytics_GetEmpty(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	v := as.Get(models.BannerFollow)
	assert.Equal(t, "follow", v.BannerType)
	assert.Zero(t, v.Impressions)
	assert.Zero(t, v.CTR)
}

func TestAnalytics_TrackIncrementsOneCounter(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	as, _ := newAnalytics(now)

	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackClick(models.BannerFollow))
	require.NoError(t, as.TrackDismissal(models.BannerPreferred))

	f := as.Get(models.BannerFollow)
	assert.Equal(t, 3, f.Impressions)
	assert.Equal(t, 1, f.Clicks)
	assert.Equal(t, 0, f.Dismissals)
	assert.Equal(t, 33.33, f.CTR)
	assert.True(t, f.LastUpdated.Equal(now))
	assert.True(t, f.FirstSeen.Equal(now))

	p := as.Get(models.BannerPreferred)
	assert.Equal(t, 0, p.Impressions)
	assert.Equal(t, 1, p.Dismissals)
	assert.Zero(t, p.CTR)
}

func TestAnalytics_TrackUnknownBanner(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	assert.Error(t, as.TrackClick(models.BannerType("sidebar")))
}

func TestAnalytics_CTRRounding(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	for i := 0; i < 7; i++ {
		require.NoError(t, as.TrackImpression(models.BannerFollow))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, as.TrackClick(models.BannerFollow))
	}
	v := as.Get(models.BannerFollow)
	assert.Equal(t, math.Round(2.0/7.0*100*100)/100, v.CTR)
	assert.Equal(t, 28.57, v.CTR)
}

func TestAnalytics_CTRNeverStored(t *testing.T) {
	as, store := newAnalytics(time.Now())
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	raw, ok := store.Get(AnalyticsOptionKey)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "ctr")
}

func TestAnalytics_ClicksWithoutImpressions(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	require.NoError(t, as.TrackClick(models.BannerPreferred))
	assert.Zero(t, as.Get(models.BannerPreferred).CTR)
}

func TestAnalytics_GetAll(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackImpression(models.BannerPreferred))
	require.NoError(t, as.TrackImpression(models.BannerPreferred))
	require.NoError(t, as.TrackImpression(models.BannerPreferred))
	require.NoError(t, as.TrackClick(models.BannerFollow))

	r := as.GetAll()
	require.Len(t, r.Banners, 2)
	assert.Equal(t, 100.0, r.Banners["follow"].CTR)
	assert.Equal(t, 3, r.Banners["preferred"].Impressions)
	assert.Equal(t, 4, r.Totals.Impressions)
	assert.Equal(t, 1, r.Totals.Clicks)
	assert.Equal(t, 25.0, r.Totals.CTR)
	assert.Equal(t, "all", r.Totals.BannerType)
}

func TestAnalytics_ResetOne(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackImpression(models.BannerPreferred))

	require.NoError(t, as.Reset("follow"))
	assert.Zero(t, as.Get(models.BannerFollow).Impressions)
	assert.Equal(t, 1, as.Get(models.BannerPreferred).Impressions)
}

func TestAnalytics_ResetAll(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	as, _ := newAnalytics(start)
	require.NoError(t, as.TrackImpression(models.BannerFollow))
	require.NoError(t, as.TrackClick(models.BannerFollow))
	require.NoError(t, as.TrackDismissal(models.BannerPreferred))

	tick := start
	as.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	require.NoError(t, as.Reset("all"))

	for _, bt := range models.BannerTypes {
		v := as.Get(bt)
		assert.Zero(t, v.Impressions, bt)
		assert.Zero(t, v.Clicks, bt)
		assert.Zero(t, v.Dismissals, bt)
		assert.True(t, v.FirstSeen.After(start), bt)
		assert.True(t, v.LastUpdated.Equal(v.FirstSeen), bt)
	}
	assert.False(t, as.Get(models.BannerFollow).FirstSeen.Equal(as.Get(models.BannerPreferred).FirstSeen))
}

func TestAnalytics_ResetUnknown(t *testing.T) {
	as, _ := newAnalytics(time.Now())
	assert.Error(t, as.Reset("sidebar"))
}

func TestAnalytics_CorruptRecordIsReinitialized(t *testing.T) {
	as, store := newAnalytics(time.Now())
	store.Set(AnalyticsOptionKey, []byte("not json"))

	require.NoError(t, as.TrackImpression(models.BannerFollow))
	assert.Equal(t, 1, as.Get(models.BannerFollow).Impressions)
}
