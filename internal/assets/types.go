package assets

import (
	"fmt"
	"time"
)

// DateLayout is the timestamp layout used by the imagery-assets API.
// Dates carry no zone designator and are interpreted as UTC.
const DateLayout = "2006-01-02T15:04:05"

// Acquisition is one historical image capture at the queried location.
type Acquisition struct {
	ID   string
	Date time.Time
}

// History is the acquisition record the API returned for a location.
type History struct {
	Acquisitions []Acquisition
}

// ServiceError reports a non-success HTTP response from the imagery API.
type ServiceError struct {
	StatusCode int
	URL        string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("imagery service returned status %d for %s", e.StatusCode, e.URL)
}

// ParseError reports a response body with missing or malformed fields.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing imagery response: %s: %v", e.Reason, e.Err)
	}
	return "parsing imagery response: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
