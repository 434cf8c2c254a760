package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// requestDurationBuckets はリクエスト処理時間のヒストグラムのバケット（秒）。
var requestDurationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics はHTTPリクエストのPrometheusメトリクス。
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics はHTTPリクエストのメトリクスを生成し、regに登録する。
// 同じレジストリに2回登録するとエラーになるため、サーバーごとにレジストリを分ける。
func NewMetrics(reg prometheus.Registerer, service string) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "arcade",
			Name:        "http_requests_total",
			Help:        "処理したHTTPリクエスト数",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "arcade",
			Name:        "http_request_duration_seconds",
			Help:        "HTTPリクエストの処理時間",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     requestDurationBuckets,
		}, []string{"method", "route", "status"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("メトリクスの登録に失敗: %w", err)
		}
	}
	return m, nil
}

// Handler はリクエスト数と処理時間を記録するGinミドルウェアを返す。
// ルートはパターン（/highscores/:game）で集計し、未登録パスは "unmatched" にまとめる。
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.requests.With(labels).Inc()
		m.duration.With(labels).Observe(time.Since(start).Seconds())
	}
}
