package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-netstatus/internal/core/connectivity"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// Namespace 指标名前缀
const Namespace = "netstatus"

// ConnectivityMetrics 状态流桥接指标
type ConnectivityMetrics struct {
	// Counters
	RegistrationsTotal        prometheus.Counter
	RegistrationFailuresTotal prometheus.Counter
	ReleasesTotal             prometheus.Counter
	EmissionsTotal            *prometheus.CounterVec
	DuplicatesTotal           prometheus.Counter
	DroppedTotal              prometheus.Counter
	FatalErrorsTotal          prometheus.Counter
	DeliveryFailuresTotal     prometheus.Counter

	// Gauges
	Subscribers prometheus.Gauge
	Status      *prometheus.GaugeVec
}

var _ connectivity.Recorder = (*ConnectivityMetrics)(nil)

// NewConnectivityMetrics 创建并注册指标
//
// reg 为 nil 时指标不注册到任何 Registry。
func NewConnectivityMetrics(reg prometheus.Registerer) *ConnectivityMetrics {
	f := promauto.With(reg)

	m := &ConnectivityMetrics{
		RegistrationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "registrations_total",
			Help:      "Total number of successful network callback registrations.",
		}),
		RegistrationFailuresTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "registration_failures_total",
			Help:      "Total number of failed network callback registrations.",
		}),
		ReleasesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "releases_total",
			Help:      "Total number of released network callback registrations.",
		}),
		EmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "emissions_total",
			Help:      "Total number of status values emitted to subscribers, by status.",
		}, []string{"status"}),
		DuplicatesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "duplicates_suppressed_total",
			Help:      "Total number of consecutive duplicate statuses suppressed.",
		}),
		DroppedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dropped_total",
			Help:      "Total number of pending statuses dropped for slow subscribers.",
		}),
		FatalErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fatal_errors_total",
			Help:      "Total number of fatal notifier errors.",
		}),
		DeliveryFailuresTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "delivery_failures_total",
			Help:      "Total number of subscriptions detached after a delivery failure.",
		}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "subscribers",
			Help:      "Current number of attached subscriptions.",
		}),
		Status: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "status",
			Help:      "Most recently emitted connectivity status (1 for the current status, 0 otherwise).",
		}, []string{"status"}),
	}

	// 预先创建所有标签，未发出状态时为 Unavailable
	for _, s := range types.AllStatuses() {
		m.EmissionsTotal.WithLabelValues(s.String())
		m.Status.WithLabelValues(s.String())
	}
	m.setStatus(types.DefaultStatus)
	return m
}

// Registered 实现 connectivity.Recorder
func (m *ConnectivityMetrics) Registered() { m.RegistrationsTotal.Inc() }

// RegistrationFailed 实现 connectivity.Recorder
func (m *ConnectivityMetrics) RegistrationFailed() { m.RegistrationFailuresTotal.Inc() }

// Released 实现 connectivity.Recorder
//
// 没有活跃注册时当前状态回到 Unavailable。
func (m *ConnectivityMetrics) Released() {
	m.ReleasesTotal.Inc()
	m.setStatus(types.DefaultStatus)
}

// Emitted 实现 connectivity.Recorder
func (m *ConnectivityMetrics) Emitted(status types.Status) {
	m.EmissionsTotal.WithLabelValues(status.String()).Inc()
	m.setStatus(status)
}

// DuplicateSuppressed 实现 connectivity.Recorder
func (m *ConnectivityMetrics) DuplicateSuppressed() { m.DuplicatesTotal.Inc() }

// Dropped 实现 connectivity.Recorder
func (m *ConnectivityMetrics) Dropped(n int) { m.DroppedTotal.Add(float64(n)) }

// Fatal 实现 connectivity.Recorder
func (m *ConnectivityMetrics) Fatal() { m.FatalErrorsTotal.Inc() }

// DeliveryFailed 实现 connectivity.Recorder
func (m *ConnectivityMetrics) DeliveryFailed() { m.DeliveryFailuresTotal.Inc() }

// SubscribersChanged 实现 connectivity.Recorder
func (m *ConnectivityMetrics) SubscribersChanged(n int) { m.Subscribers.Set(float64(n)) }

func (m *ConnectivityMetrics) setStatus(current types.Status) {
	for _, s := range types.AllStatuses() {
		v := 0.0
		if s == current {
			v = 1
		}
		m.Status.WithLabelValues(s.String()).Set(v)
	}
}
