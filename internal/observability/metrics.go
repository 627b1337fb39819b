package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestsTotal  *prometheus.CounterVec
	latencySeconds *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec

	pointsAwardedTotal          *prometheus.CounterVec
	beltUpgradesTotal           *prometheus.CounterVec
	badgesAwardedTotal          *prometheus.CounterVec
	skillsUnlockedTotal         *prometheus.CounterVec
	purchasesTotal              *prometheus.CounterVec
	notificationsEmittedTotal   *prometheus.CounterVec
	notificationFailuresTotal   *prometheus.CounterVec
	concurrentRetriesTotal      *prometheus.CounterVec
	rankingCacheLookupsTotal    *prometheus.CounterVec
	rankingRefreshSecondsLatest prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors of the progression API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_requests_total",
			Help: "Total number of progression API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "progression_latency_seconds",
			Help:    "Latency distribution for progression API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_errors_total",
			Help: "Total number of error responses returned by progression endpoints.",
		}, []string{"method", "route", "status"})

		pointsAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_points_awarded_total",
			Help: "Points credited to the ledger by activity type.",
		}, []string{"activity_type"})

		beltUpgradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_belt_upgrades_total",
			Help: "Belt upgrades by the belt reached.",
		}, []string{"belt"})

		badgesAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_badges_awarded_total",
			Help: "Badge award attempts by badge code and outcome.",
		}, []string{"badge", "outcome"})

		skillsUnlockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_skills_unlocked_total",
			Help: "Skills unlocked by specialization.",
		}, []string{"specialization"})

		purchasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_shop_purchases_total",
			Help: "Shop purchase attempts by outcome.",
		}, []string{"outcome"})

		notificationsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_notifications_emitted_total",
			Help: "Gamification notifications stored by type.",
		}, []string{"type"})

		notificationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_notification_failures_total",
			Help: "Notification writes or publishes that failed and were swallowed.",
		}, []string{"type", "stage"})

		concurrentRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_concurrent_retries_total",
			Help: "Transactions retried after a guarded write lost a race.",
		}, []string{"operation"})

		rankingCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progression_ranking_cache_lookups_total",
			Help: "Ranking cache lookups by result.",
		}, []string{"result"})

		rankingRefreshSecondsLatest = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progression_ranking_refresh_duration_seconds",
			Help: "Duration of the most recent ranking cache refresh.",
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			pointsAwardedTotal,
			beltUpgradesTotal,
			badgesAwardedTotal,
			skillsUnlockedTotal,
			purchasesTotal,
			notificationsEmittedTotal,
			notificationFailuresTotal,
			concurrentRetriesTotal,
			rankingCacheLookupsTotal,
			rankingRefreshSecondsLatest,
		)
	})
}

// Requests exposes the counter for progression API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for progression API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for progression API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// PointsAwarded exposes the ledger credit counter.
func PointsAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return pointsAwardedTotal
}

// BeltUpgrades exposes the belt upgrade counter.
func BeltUpgrades() *prometheus.CounterVec {
	RegisterMetrics()
	return beltUpgradesTotal
}

// BadgesAwarded exposes the badge award counter.
func BadgesAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return badgesAwardedTotal
}

// SkillsUnlocked exposes the skill unlock counter.
func SkillsUnlocked() *prometheus.CounterVec {
	RegisterMetrics()
	return skillsUnlockedTotal
}

// Purchases exposes the shop purchase counter.
func Purchases() *prometheus.CounterVec {
	RegisterMetrics()
	return purchasesTotal
}

// NotificationsEmitted exposes the stored notification counter.
func NotificationsEmitted() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsEmittedTotal
}

// NotificationFailures exposes the swallowed notification failure counter.
func NotificationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationFailuresTotal
}

// ConcurrentRetries exposes the retry counter for guarded writes.
func ConcurrentRetries() *prometheus.CounterVec {
	RegisterMetrics()
	return concurrentRetriesTotal
}

// RankingCacheLookups exposes the ranking cache hit/miss counter.
func RankingCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return rankingCacheLookupsTotal
}

// RankingRefreshDuration exposes the gauge updated by the ranking refresh job.
func RankingRefreshDuration() prometheus.Gauge {
	RegisterMetrics()
	return rankingRefreshSecondsLatest
}
