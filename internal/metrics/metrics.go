// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// ストアアダプタとアカウントサービスから利用する。
type Collector struct {
	storeLoads     prometheus.Counter
	storeSaves     prometheus.Counter
	storeFaults    *prometheus.CounterVec
	storeLatency   prometheus.Histogram
	cacheHits      prometheus.Counter
	registrations  prometheus.Counter
	logins         *prometheus.CounterVec
	friendRequests *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_store_loads_total",
			Help: "共有ストアの全件読み出しの合計数",
		}),
		storeSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_store_saves_total",
			Help: "共有ストアの全件書き換えの合計数",
		}),
		storeFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetman_store_faults_total",
			Help: "共有ストア通信失敗の合計数",
		}, []string{"op"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetman_store_latency_seconds",
			Help:    "共有ストア操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_store_cache_hits_total",
			Help: "読み取りキャッシュヒットの合計数",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetman_registrations_total",
			Help: "アカウント登録成功の合計数",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetman_logins_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		friendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetman_friend_requests_total",
			Help: "友達申請操作の合計数（結果別）",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.storeLoads,
		c.storeSaves,
		c.storeFaults,
		c.storeLatency,
		c.cacheHits,
		c.registrations,
		c.logins,
		c.friendRequests,
	)

	return c
}

// RecordStoreLoad はストアの全件読み出しを記録する。
func (c *Collector) RecordStoreLoad(duration time.Duration) {
	c.storeLoads.Inc()
	c.storeLatency.Observe(duration.Seconds())
}

// RecordStoreSave はストアの全件書き換えを記録する。
func (c *Collector) RecordStoreSave(duration time.Duration) {
	c.storeSaves.Inc()
	c.storeLatency.Observe(duration.Seconds())
}

// RecordStoreFault はストア通信の失敗を操作種別ごとに記録する。
func (c *Collector) RecordStoreFault(op string) {
	c.storeFaults.WithLabelValues(op).Inc()
}

// RecordCacheHit は読み取りキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordRegistration はアカウント登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordFriendRequest は友達申請操作の結果を記録する。
func (c *Collector) RecordFriendRequest(outcome string) {
	c.friendRequests.WithLabelValues(outcome).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
