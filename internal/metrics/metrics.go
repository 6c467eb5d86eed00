// Package metrics declares the Prometheus counters of the engagement service.
// They register on the default registry and are served at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// PointsCredited sums credited points per action kind.
	PointsCredited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_points_credited_total",
			Help: "Total number of points credited, by action.",
		},
		[]string{"action"},
	)

	CreditFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_credit_failures_total",
			Help: "Total number of credits rolled back by a storage failure.",
		},
	)

	AchievementsUnlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_achievements_unlocked_total",
			Help: "Total number of achievements unlocked.",
		},
	)

	// EvaluationFailures counts evaluations that failed after a committed credit.
	EvaluationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_evaluation_failures_total",
			Help: "Total number of achievement evaluations that failed after a credit.",
		},
	)

	ProfilesRecomputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_profiles_recomputed_total",
			Help: "Total number of researcher profiles recomputed.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PointsCredited,
		CreditFailures,
		AchievementsUnlocked,
		EvaluationFailures,
		ProfilesRecomputed,
	)
}
