// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordSessionStarted()
	RecordSessionStopped(duration time.Duration)
	RecordSessionDeleted()
	RecordRejected(operation, kind string)
	RecordStatsQuery(window string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sessionsStarted prometheus.Counter
	sessionsStopped prometheus.Counter
	sessionsDeleted prometheus.Counter
	sessionDuration prometheus.Histogram
	rejected        *prometheus.CounterVec
	statsLatency    *prometheus.HistogramVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studytracker_sessions_started_total",
			Help: "開始された学習セッションの合計数",
		}),
		sessionsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studytracker_sessions_stopped_total",
			Help: "終了した学習セッションの合計数",
		}),
		sessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studytracker_sessions_deleted_total",
			Help: "削除された学習セッションの合計数",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "studytracker_session_duration_seconds",
			Help: "終了した学習セッションの長さ（秒）",
			// 5分〜8時間
			Buckets: []float64{300, 900, 1800, 3600, 7200, 14400, 28800},
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studytracker_lifecycle_rejected_total",
			Help: "操作別・エラー種別ごとの拒否されたライフサイクル操作数",
		}, []string{"operation", "kind"}),
		statsLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studytracker_stats_query_seconds",
			Help:    "統計集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"window"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studytracker_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.sessionsStarted,
		c.sessionsStopped,
		c.sessionsDeleted,
		c.sessionDuration,
		c.rejected,
		c.statsLatency,
		c.httpStatus,
	)

	return c
}

// RecordSessionStarted はセッション開始を記録する。
func (c *Collector) RecordSessionStarted() {
	c.sessionsStarted.Inc()
}

// RecordSessionStopped はセッション終了とその長さを記録する。
func (c *Collector) RecordSessionStopped(duration time.Duration) {
	c.sessionsStopped.Inc()
	c.sessionDuration.Observe(duration.Seconds())
}

// RecordSessionDeleted はセッション削除を記録する。
func (c *Collector) RecordSessionDeleted() {
	c.sessionsDeleted.Inc()
}

// RecordRejected はNotFound・Conflict・Validationで拒否された操作を記録する。
func (c *Collector) RecordRejected(operation, kind string) {
	c.rejected.WithLabelValues(operation, kind).Inc()
}

// RecordStatsQuery は統計集計のレイテンシを記録する。windowは "daily" または "weekly"。
func (c *Collector) RecordStatsQuery(window string, duration time.Duration) {
	c.statsLatency.WithLabelValues(window).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector実装。
// メトリクスを使わないテストや構成で使用する。
type Nop struct{}

func (Nop) RecordSessionStarted() {}
func (Nop) RecordSessionStopped(time.Duration) {}
func (Nop) RecordSessionDeleted() {}
func (Nop) RecordRejected(string, string) {}
func (Nop) RecordStatsQuery(string, time.Duration) {}
func (Nop) RecordHTTPStatus(int) {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
