package flyby

import (
	"errors"
	"testing"
	"time"

	"github.com/he945/flyby/internal/assets"
)

func day(d int) time.Time {
	return time.Date(2014, 1, d, 0, 0, 0, 0, time.UTC)
}

// TestPredictRegularCadence verifies the mean-interval prediction on a
// history with a fixed two-day cadence. Three acquisitions give two
// two-day deltas, and the divisor is the acquisition count, so the mean
// is 4d/3 = 32h past the latest acquisition.
func TestPredictRegularCadence(t *testing.T) {
	history := &assets.History{Acquisitions: []assets.Acquisition{
		{ID: "a", Date: day(1)},
		{ID: "b", Date: day(3)},
		{ID: "c", Date: day(5)},
	}}

	result, err := Predict(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := day(5).Add(32 * time.Hour)
	if !result.NextTime.Equal(want) {
		t.Errorf("next time = %s, want %s", result.NextTime, want)
	}
	if !result.LastCapture.Equal(day(5)) {
		t.Errorf("last capture = %s, want %s", result.LastCapture, day(5))
	}
	if result.SampleCount != 3 {
		t.Errorf("sample count = %d, want 3", result.SampleCount)
	}
}

// TestPredictUnsortedInput verifies the history is sorted before deltas
// are computed, so response ordering does not change the prediction.
func TestPredictUnsortedInput(t *testing.T) {
	sorted := &assets.History{Acquisitions: []assets.Acquisition{
		{Date: day(1)}, {Date: day(3)}, {Date: day(5)},
	}}
	shuffled := &assets.History{Acquisitions: []assets.Acquisition{
		{Date: day(5)}, {Date: day(1)}, {Date: day(3)},
	}}

	a, err := Predict(sorted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Predict(shuffled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.NextTime.Equal(b.NextTime) {
		t.Errorf("order-dependent prediction: %s vs %s", a.NextTime, b.NextTime)
	}
}

// TestPredictSingleAcquisition verifies a one-entry history yields the
// acquisition itself (mean interval zero).
func TestPredictSingleAcquisition(t *testing.T) {
	history := &assets.History{Acquisitions: []assets.Acquisition{
		{Date: day(7)},
	}}

	result, err := Predict(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NextTime.Equal(day(7)) {
		t.Errorf("next time = %s, want %s", result.NextTime, day(7))
	}
	if result.MeanInterval != 0 {
		t.Errorf("mean interval = %s, want 0", result.MeanInterval)
	}
}

// TestPredictEmptyHistory verifies an empty history reports ErrNoHistory.
func TestPredictEmptyHistory(t *testing.T) {
	_, err := Predict(&assets.History{})
	if !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}
