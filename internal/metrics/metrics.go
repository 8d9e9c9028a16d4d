package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
)

type Metrics struct {
	Roster    *RosterMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Runtime   *RuntimeMetrics
	logger    *slog.Logger
}

func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	roster, err := NewRosterMetrics(meter)
	if err != nil {
		return nil, err
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	runtime, err := NewRuntimeMetrics(ctx, meter)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return &Metrics{
		Roster:    roster,
		Database:  database,
		Messaging: messaging,
		Runtime:   runtime,
		logger:    logger,
	}, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Roster:    &RosterMetrics{},
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Runtime:   &RuntimeMetrics{},
	}
}
