package sslclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yly97/sslclient/pkg/arena"
	"github.com/yly97/sslclient/pkg/ssl"
)

const metricsNamespace = "sslclient"

// Metrics 握手耗时、握手错误和内存池使用情况
type Metrics struct {
	Latency  *prometheus.HistogramVec // 按result区分的握手耗时
	Errors   *prometheus.CounterVec   // 按ErrorCode区分的握手错误
	Exchange *prometheus.CounterVec   // 按result区分的HTTP交换次数
	PoolUsed *prometheus.GaugeVec     // 当前占用字节数
	PoolPeak *prometheus.GaugeVec     // 峰值占用字节数
}

// NewMetrics 创建并注册到reg，reg为nil时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "handshake_duration_seconds",
			Help:      "Time spent in the TLS handshake.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"result"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "handshake_errors_total",
			Help:      "Failed TLS handshakes by error code.",
		}, []string{"code", "reason"}),
		Exchange: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchanges_total",
			Help:      "HTTP exchanges run over an established session.",
		}, []string{"result"}),
		PoolUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pool_used_bytes",
			Help:      "Bytes currently allocated from a static pool.",
		}, []string{"pool"}),
		PoolPeak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pool_peak_bytes",
			Help:      "Peak bytes allocated from a static pool.",
		}, []string{"pool"}),
	}
	if reg != nil {
		reg.MustRegister(m.Latency, m.Errors, m.Exchange, m.PoolUsed, m.PoolPeak)
	}
	return m
}

func (m *Metrics) observeHandshake(start time.Time, ret int, code ssl.ErrorCode) {
	if m == nil {
		return
	}
	result := "success"
	if ret != ssl.Success {
		result = "failure"
		m.Errors.WithLabelValues(strconv.Itoa(int(code)), code.String()).Inc()
	}
	m.Latency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeExchange(ret int) {
	if m == nil {
		return
	}
	result := "success"
	if ret != ExitSuccess {
		result = "failure"
	}
	m.Exchange.WithLabelValues(result).Inc()
}

func (m *Metrics) observePool(name string, a *arena.Arena) {
	if m == nil || a == nil {
		return
	}
	s := a.Stats()
	m.PoolUsed.WithLabelValues(name).Set(float64(a.InUse()))
	m.PoolPeak.WithLabelValues(name).Set(float64(s.PeakBytes))
}
