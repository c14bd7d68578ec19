package flyby

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/geo"
	"github.com/he945/flyby/internal/metrics"
)

// Service performs coordinate-to-flyby-time lookups against the
// imagery-assets API.
type Service struct {
	client *assets.Client
	logger *slog.Logger
}

// NewService creates a Service backed by the given API client.
func NewService(client *assets.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Lookup validates the coordinate, fetches its acquisition history and
// predicts the next capture time. Validation failures return before any
// network call. No failure is retried.
func (s *Service) Lookup(ctx context.Context, lat, lon float64) (*Result, error) {
	start := time.Now()

	coord, err := geo.NewCoordinate(lat, lon)
	if err != nil {
		metrics.ObserveLookup("validation_error", time.Since(start))
		return nil, err
	}

	history, err := s.client.Query(ctx, coord)
	if err != nil {
		metrics.ObserveLookup(outcomeFor(err), time.Since(start))
		var se *assets.ServiceError
		if errors.As(err, &se) {
			metrics.ObserveUpstreamStatus(se.StatusCode)
		}
		s.logger.Error("lookup failed",
			"component", "flyby",
			"coordinate", coord.String(),
			"error", err,
		)
		return nil, err
	}
	metrics.ObserveUpstreamStatus(200)

	result, err := Predict(history)
	if err != nil {
		metrics.ObserveLookup("no_history", time.Since(start))
		return nil, err
	}

	metrics.ObserveLookup("ok", time.Since(start))
	s.logger.Info("lookup complete",
		"component", "flyby",
		"coordinate", coord.String(),
		"next_time", result.NextTime.Format(time.RFC3339),
		"samples", result.SampleCount,
	)
	return result, nil
}

// outcomeFor maps a query error to its metrics label.
func outcomeFor(err error) string {
	var se *assets.ServiceError
	if errors.As(err, &se) {
		return "service_error"
	}
	var pe *assets.ParseError
	if errors.As(err, &pe) {
		return "parse_error"
	}
	return "network_error"
}
