// 包 metrics：Prometheus 指标定义与 /metrics 处理器
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_queries_total",
		Help: "Area engine queries by operation and outcome",
	}, []string{"op", "result"})
	QueryDurationUs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "area_query_duration_us",
		Help:    "Area engine query duration in microseconds (lock held + lookup)",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000, 20000},
	}, []string{"op"})
	ReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_reloads_total",
		Help: "Index (re)builds by index and outcome",
	}, []string{"index", "result"})
	ReloadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "area_reload_duration_ms",
		Help:    "Index rebuild duration in milliseconds (source read + build, off-lock)",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000, 60000},
	}, []string{"index"})
	SwapDurationUs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "area_swap_duration_us",
		Help:    "Time the exclusive lock was held to install a snapshot, in microseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 10000},
	})
	Generation = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "area_generation",
		Help: "Current snapshot generation",
	})
	IndexSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "area_index_size",
		Help: "Nodes in the code index / points in the geo index",
	}, []string{"index"})
	GeoCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_geo_cache_total",
		Help: "Geo result cache lookups by layer and outcome",
	}, []string{"layer", "result"})
	PersistTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "area_persisted_index_total",
		Help: "Persisted index usage by index and outcome (hit, miss, write, skip)",
	}, []string{"index", "result"})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDurationUs)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(ReloadDurationMs)
	prometheus.MustRegister(SwapDurationUs)
	prometheus.MustRegister(Generation)
	prometheus.MustRegister(IndexSize)
	prometheus.MustRegister(GeoCacheTotal)
	prometheus.MustRegister(PersistTotal)
}

// Handler 暴露已注册指标，供 Prometheus 抓取
func Handler() http.Handler { return promhttp.Handler() }
