package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Process-wide counters for the bridge. Registered on the default
// registry; Handler exposes them for scraping.
var (
	PollTicks = promauto.NewCounter(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "poll_ticks_total",
		Help:      "State poll ticks attempted against the player",
	})
	PollFailures = promauto.NewCounter(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "poll_failures_total",
		Help:      "Poll ticks skipped because the player could not be queried",
	})
	EventsEmitted = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "events_emitted_total",
		Help:      "State change events handed to the fan-out, by type",
	}, []string{"type"})
	Subscribers = promauto.NewGauge(prom.GaugeOpts{
		Namespace: "cortlandcast",
		Name:      "subscribers",
		Help:      "Currently connected live subscribers",
	})
	ArtworkCacheHits = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "artwork_cache_hits_total",
		Help:      "Artwork requests answered from the disk cache, by category",
	}, []string{"category"})
	ArtworkCacheMisses = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "artwork_cache_misses_total",
		Help:      "Artwork requests that ran the resolution chain, by category",
	}, []string{"category"})
	ArtworkFallbacks = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "cortlandcast",
		Name:      "artwork_fallbacks_total",
		Help:      "Artwork resolutions by terminal outcome (official, collage, profile, placeholder)",
	}, []string{"outcome"})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
