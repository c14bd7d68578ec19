// Package selftest exercises the lookup path against in-process mocked
// servers, backing the CLI's -u flag. No real network calls are made.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/flyby"
	"github.com/he945/flyby/internal/geo"
)

// testCase is one self-test scenario with its own mocked server.
type testCase struct {
	name string
	run  func(ctx context.Context, logger *slog.Logger) error
}

// Run executes every self-test case, writing a PASS/FAIL line per case
// and a summary to w. It returns the number of failed cases.
func Run(w io.Writer) int {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx := context.Background()

	failed := 0
	for _, tc := range cases {
		if err := tc.run(ctx, logger); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", tc.name, err)
		} else {
			fmt.Fprintf(w, "PASS  %s\n", tc.name)
		}
	}
	fmt.Fprintf(w, "%d/%d cases passed\n", len(cases)-failed, len(cases))
	return failed
}

// historyBody is a three-acquisition history with a two-day cadence:
// mean interval 4d/3 = 32h, so the prediction is Jan 6 08:00 UTC.
const historyBody = `{
	"count": 3,
	"results": [
		{"id": "LC8_L1T_TOA/LC80130322014005LGN00", "date": "2014-01-05T00:00:00"},
		{"id": "LC8_L1T_TOA/LC80130322014001LGN00", "date": "2014-01-01T00:00:00"},
		{"id": "LC8_L1T_TOA/LC80130322014003LGN00", "date": "2014-01-03T00:00:00"}
	]
}`

var predictedNext = time.Date(2014, 1, 6, 8, 0, 0, 0, time.UTC)

var cases = []testCase{
	{
		name: "out-of-range latitude rejected before network",
		run: func(ctx context.Context, logger *slog.Logger) error {
			return expectValidationWithoutCall(ctx, logger, 91.0, -74.001472)
		},
	},
	{
		name: "out-of-range longitude rejected before network",
		run: func(ctx context.Context, logger *slog.Logger) error {
			return expectValidationWithoutCall(ctx, logger, 40.720583, -180.5)
		},
	},
	{
		name: "valid history yields predicted timestamp",
		run: func(ctx context.Context, logger *slog.Logger) error {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(historyBody))
			}))
			defer server.Close()

			svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
			result, err := svc.Lookup(ctx, 40.720583, -74.001472)
			if err != nil {
				return err
			}
			if !result.NextTime.Equal(predictedNext) {
				return fmt.Errorf("next time %s, want %s", result.NextTime, predictedNext)
			}
			if result.SampleCount != 3 {
				return fmt.Errorf("sample count %d, want 3", result.SampleCount)
			}
			return nil
		},
	},
	{
		name: "coordinates pass through query parameters unchanged",
		run: func(ctx context.Context, logger *slog.Logger) error {
			var gotLat, gotLon string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotLat = r.URL.Query().Get("lat")
				gotLon = r.URL.Query().Get("lon")
				w.Write([]byte(historyBody))
			}))
			defer server.Close()

			svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
			if _, err := svc.Lookup(ctx, 40.720583, -74.001472); err != nil {
				return err
			}
			if gotLat != "40.720583" {
				return fmt.Errorf("lat param %q, want 40.720583", gotLat)
			}
			if gotLon != "-74.001472" {
				return fmt.Errorf("lon param %q, want -74.001472", gotLon)
			}
			return nil
		},
	},
	{
		name: "non-success status surfaces as service error",
		run: func(ctx context.Context, logger *slog.Logger) error {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
			_, err := svc.Lookup(ctx, 40.720583, -74.001472)
			var se *assets.ServiceError
			if !errors.As(err, &se) {
				return fmt.Errorf("expected service error, got %v", err)
			}
			if se.StatusCode != http.StatusInternalServerError {
				return fmt.Errorf("status %d, want 500", se.StatusCode)
			}
			return nil
		},
	},
	{
		name: "missing date field surfaces as parse error",
		run: func(ctx context.Context, logger *slog.Logger) error {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"count": 1, "results": [{"id": "LC80130322014005LGN00"}]}`))
			}))
			defer server.Close()

			svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
			_, err := svc.Lookup(ctx, 40.720583, -74.001472)
			var pe *assets.ParseError
			if !errors.As(err, &pe) {
				return fmt.Errorf("expected parse error, got %v", err)
			}
			return nil
		},
	},
	{
		name: "count mismatch surfaces as parse error",
		run: func(ctx context.Context, logger *slog.Logger) error {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"count": 5, "results": [{"id": "a", "date": "2014-01-01T00:00:00"}]}`))
			}))
			defer server.Close()

			svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
			_, err := svc.Lookup(ctx, 40.720583, -74.001472)
			var pe *assets.ParseError
			if !errors.As(err, &pe) {
				return fmt.Errorf("expected parse error, got %v", err)
			}
			return nil
		},
	},
}

// expectValidationWithoutCall runs a lookup against a server that records
// whether it was hit, and requires a validation error with zero requests.
func expectValidationWithoutCall(ctx context.Context, logger *slog.Logger, lat, lon float64) error {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(historyBody))
	}))
	defer server.Close()

	svc := flyby.NewService(assets.NewClient(server.URL, "DEMO_KEY", logger), logger)
	_, err := svc.Lookup(ctx, lat, lon)

	var ve *geo.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("expected validation error, got %v", err)
	}
	if called {
		return errors.New("network call was made for invalid coordinates")
	}
	return nil
}
