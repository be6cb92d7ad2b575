package sensor

import (
	"context"

	"go.uber.org/zap"
)

// Publisher receives sensor state changes. Implementations must be safe for
// concurrent use and must not block the update pass; slow sinks should hand
// off internally.
type Publisher interface {
	Publish(ctx context.Context, st State)
}

// Multi fans a state change out to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, st State) {
	for _, p := range m {
		p.Publish(ctx, st)
	}
}

// LogPublisher writes state changes to the service log.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, st State) {
	p.Log.Info("sensor state changed",
		zap.String("sensor", st.Name),
		zap.String("fieldType", string(st.FieldType)),
		zap.String("value", st.Value),
	)
}
