package telemetry

import (
	"context"
	"errors"

	"immersion/internal/establishment/models"
	"immersion/internal/search/ports"
)

// Multi fans a search record out to several sinks, typically the durable
// postgres sink plus the Kafka stream. Every sink is attempted even when an
// earlier one fails.
type Multi struct {
	sinks []ports.TelemetrySink
}

func NewMulti(sinks ...ports.TelemetrySink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Record(ctx context.Context, searchMade models.SearchMade) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Record(ctx, searchMade); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
