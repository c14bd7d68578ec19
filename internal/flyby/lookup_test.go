package flyby

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/geo"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// TestLookupValidatesBeforeNetwork verifies out-of-range coordinates fail
// with a validation error and no request ever leaves the process.
func TestLookupValidatesBeforeNetwork(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer server.Close()

	svc := NewService(assets.NewClient(server.URL, "DEMO_KEY", testLogger), testLogger)

	tests := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{name: "latitude above range", lat: 90.5, lon: 0},
		{name: "latitude below range", lat: -100, lon: 0},
		{name: "longitude above range", lat: 0, lon: 181},
		{name: "longitude below range", lat: 0, lon: -180.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Lookup(context.Background(), tt.lat, tt.lon)
			var ve *geo.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if requests != 0 {
		t.Errorf("expected 0 network calls, got %d", requests)
	}
}

// TestLookupEndToEnd verifies the full path from coordinate to predicted
// timestamp against a mocked imagery service.
func TestLookupEndToEnd(t *testing.T) {
	body := `{"count": 3, "results": [
		{"id": "c", "date": "2014-01-05T00:00:00"},
		{"id": "a", "date": "2014-01-01T00:00:00"},
		{"id": "b", "date": "2014-01-03T00:00:00"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	svc := NewService(assets.NewClient(server.URL, "DEMO_KEY", testLogger), testLogger)
	result, err := svc.Lookup(context.Background(), 40.720583, -74.001472)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2014, 1, 6, 8, 0, 0, 0, time.UTC)
	if !result.NextTime.Equal(want) {
		t.Errorf("next time = %s, want %s", result.NextTime, want)
	}
}

// TestLookupServiceError verifies upstream failures keep their status code
// through the service layer.
func TestLookupServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewService(assets.NewClient(server.URL, "DEMO_KEY", testLogger), testLogger)
	_, err := svc.Lookup(context.Background(), 40.720583, -74.001472)

	var se *assets.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", se.StatusCode)
	}
}

// TestLookupNoHistory verifies an empty (but well-formed) history maps to
// ErrNoHistory.
func TestLookupNoHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer server.Close()

	svc := NewService(assets.NewClient(server.URL, "DEMO_KEY", testLogger), testLogger)
	_, err := svc.Lookup(context.Background(), 40.720583, -74.001472)
	if !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}
