package sensor

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsPublisher exports numeric sensor states as prometheus gauges.
// Symbol states carry no number and are skipped.
type MetricsPublisher struct {
	values *prometheus.GaugeVec
}

func NewMetricsPublisher(reg prometheus.Registerer) *MetricsPublisher {
	p := &MetricsPublisher{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "met_sensor_value",
			Help: "Current value of a weather sensor.",
		}, []string{"field_type", "sensor"}),
	}
	reg.MustRegister(p.values)
	return p
}

func (p *MetricsPublisher) Publish(_ context.Context, st State) {
	if st.Numeric == nil {
		return
	}
	p.values.WithLabelValues(string(st.FieldType), st.Name).Set(*st.Numeric)
}
