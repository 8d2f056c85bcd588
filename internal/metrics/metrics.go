// internal/metrics/metrics.go

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravelmatch_api_requests_total",
			Help: "Total number of API calls made by the client",
		},
		[]string{"method", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gravelmatch_api_request_duration_seconds",
			Help:    "Latency of API calls made by the client",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravelmatch_swipes_total",
			Help: "Total number of swipe decisions by outcome",
		},
		[]string{"action", "outcome"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gravelmatch_matches_total",
			Help: "Total number of match events raised by swipes",
		},
	)

	candidatesLoaded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gravelmatch_discovery_batch_size",
			Help:    "Number of candidates per discovery batch",
			Buckets: prometheus.LinearBuckets(0, 5, 6),
		},
	)

	notificationPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravelmatch_notification_polls_total",
			Help: "Total number of unread-count polls",
		},
		[]string{"result"},
	)

	unreadCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gravelmatch_notifications_unread",
			Help: "Last known unread notification count",
		},
	)

	chatSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravelmatch_chat_sends_total",
			Help: "Total number of chat send attempts by result",
		},
		[]string{"result"},
	)
)

// ObserveRequest records one API call. status is 0 when the call never
// got an answer.
func ObserveRequest(method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status/100) + "xx"
	}
	apiRequestsTotal.WithLabelValues(method, label).Inc()
	apiRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SwipeResolved records a resolved swipe. outcome is advanced, matched or failed.
func SwipeResolved(action, outcome string) {
	swipesTotal.WithLabelValues(action, outcome).Inc()
	if outcome == "matched" {
		matchesTotal.Inc()
	}
}

func BatchLoaded(size int) {
	candidatesLoaded.Observe(float64(size))
}

func PollCompleted(ok bool, unread int) {
	if !ok {
		notificationPolls.WithLabelValues("error").Inc()
		return
	}
	notificationPolls.WithLabelValues("ok").Inc()
	unreadCount.Set(float64(unread))
}

func UnreadChanged(unread int) {
	unreadCount.Set(float64(unread))
}

// ChatSend records a send attempt. result is sent, failed, rejected or suppressed.
func ChatSend(result string) {
	chatSends.WithLabelValues(result).Inc()
}
