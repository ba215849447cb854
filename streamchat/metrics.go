package streamchat

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the client's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	FramesReceived *prometheus.CounterVec
	FramesDropped  *prometheus.CounterVec
	Orphans        prometheus.Counter
	Reconnects     prometheus.Counter
	MessagesSent   prometheus.Counter
	SendsDropped   prometheus.Counter
	State          prometheus.Gauge
}

// Drop reasons used as the "reason" label of frames_dropped_total.
const (
	dropMalformed    = "malformed"
	dropNoOpenStream = "no_open_stream"
)

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "frames_received_total",
			Help:      "Inbound frames decoded, by kind.",
		}, []string{"kind"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "frames_dropped_total",
			Help:      "Inbound frames that did not change the transcript, by reason.",
		}, []string{"reason"}),
		Orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "orphaned_streams_total",
			Help:      "Streamed messages force-terminated because a new stream started.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts scheduled after a transport close.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "messages_sent_total",
			Help:      "User messages accepted by the outbound gate.",
		}),
		SendsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamchat",
			Name:      "sends_dropped_total",
			Help:      "User messages dropped because the connection was closed.",
		}),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamchat",
			Name:      "connection_state",
			Help:      "Current connection state as its numeric value.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FramesReceived, m.FramesDropped, m.Orphans, m.Reconnects, m.MessagesSent, m.SendsDropped, m.State)
	}
	return m
}

func (m *Metrics) frameReceived(kind string) {
	if m != nil {
		m.FramesReceived.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) frameDropped(reason string) {
	if m != nil {
		m.FramesDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) orphan() {
	if m != nil {
		m.Orphans.Inc()
	}
}

func (m *Metrics) reconnect() {
	if m != nil {
		m.Reconnects.Inc()
	}
}

func (m *Metrics) sent() {
	if m != nil {
		m.MessagesSent.Inc()
	}
}

func (m *Metrics) sendDropped() {
	if m != nil {
		m.SendsDropped.Inc()
	}
}

func (m *Metrics) state(s ConnectionState) {
	if m != nil {
		m.State.Set(float64(s))
	}
}
