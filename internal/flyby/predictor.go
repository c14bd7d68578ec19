package flyby

import (
	"errors"
	"sort"
	"time"

	"github.com/he945/flyby/internal/assets"
)

// ErrNoHistory means the service has no acquisition history for the
// location, so no upcoming capture can be predicted.
var ErrNoHistory = errors.New("no acquisition history for location")

// Result is the predicted next image capture at a location.
type Result struct {
	NextTime     time.Time     `json:"next_time"`
	LastCapture  time.Time     `json:"last_capture"`
	MeanInterval time.Duration `json:"-"`
	SampleCount  int           `json:"sample_count"`
}

// Predict derives the next capture time from acquisition history.
//
// The history is sorted by date and the mean interval between consecutive
// acquisitions is computed with the total acquisition count as divisor.
// The prediction is the latest acquisition plus that mean interval, which
// makes "next" the soonest expected capture by construction.
func Predict(history *assets.History) (*Result, error) {
	n := len(history.Acquisitions)
	if n == 0 {
		return nil, ErrNoHistory
	}

	dates := make([]time.Time, n)
	for i, a := range history.Acquisitions {
		dates[i] = a.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var total time.Duration
	for i := 1; i < n; i++ {
		total += dates[i].Sub(dates[i-1])
	}
	mean := total / time.Duration(n)

	last := dates[n-1]
	return &Result{
		NextTime:     last.Add(mean),
		LastCapture:  last,
		MeanInterval: mean,
		SampleCount:  n,
	}, nil
}
