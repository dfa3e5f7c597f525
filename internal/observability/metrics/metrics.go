package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "booking"

// MessagingMetrics exposes counters/histograms for the webhook transport.
type MessagingMetrics struct {
	inboundTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks by outcome",
		}, []string{"channel", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp replies",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.webhookLatency)
	return m
}

func (m *MessagingMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *MessagingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *MessagingMetrics) ObserveWebhookLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(channel).Observe(seconds)
}

// InterpreterMetrics tracks booking decisions and assistant delegation.
type InterpreterMetrics struct {
	decisions          *prometheus.CounterVec
	sanitized          prometheus.Counter
	delegationFailures *prometheus.CounterVec
	llmLatency         prometheus.Histogram
}

func NewInterpreterMetrics(reg prometheus.Registerer) *InterpreterMetrics {
	m := &InterpreterMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interpreter",
			Name:      "decisions_total",
			Help:      "Messages by decision path (booking or assistant)",
		}, []string{"path"}),
		sanitized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interpreter",
			Name:      "sanitized_replies_total",
			Help:      "Assistant replies replaced with the fallback reply",
		}),
		delegationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interpreter",
			Name:      "delegation_failures_total",
			Help:      "Failed language-model calls by reason",
		}, []string{"reason"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "interpreter",
			Name:      "llm_latency_seconds",
			Help:      "Latency of language-model completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.decisions, m.sanitized, m.delegationFailures, m.llmLatency)
	return m
}

func (m *InterpreterMetrics) ObserveDecision(path string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(path).Inc()
}

func (m *InterpreterMetrics) ObserveSanitized() {
	if m == nil {
		return
	}
	m.sanitized.Inc()
}

func (m *InterpreterMetrics) ObserveDelegationFailure(reason string) {
	if m == nil {
		return
	}
	m.delegationFailures.WithLabelValues(reason).Inc()
}

func (m *InterpreterMetrics) ObserveLLMLatency(seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.Observe(seconds)
}
