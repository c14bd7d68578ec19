package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/he945/flyby/internal/geo"
)

const (
	defaultBaseURL = "https://api.nasa.gov/planetary/earth/assets"

	// maxBodyBytes caps how much of the response body is read. Histories
	// for a single point are small; anything past this is a broken or
	// hostile upstream.
	maxBodyBytes = 4 << 20
)

// Client queries the imagery-assets API for acquisition history.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given endpoint. An empty baseURL
// selects the public NASA endpoint; an empty apiKey falls back to DEMO_KEY.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// wire types mirror the API response document.
type assetDocument struct {
	Count   *int        `json:"count"`
	Results []assetItem `json:"results"`
}

type assetItem struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// Query performs a single GET for the coordinate's acquisition history.
// The latitude and longitude are passed through to the query string
// unchanged. Failures are not retried.
func (c *Client) Query(ctx context.Context, coord geo.Coordinate) (*History, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying imagery service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &ServiceError{StatusCode: resp.StatusCode, URL: c.baseURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d byte limit", maxBodyBytes)
	}

	history, err := decodeHistory(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("queried acquisition history",
		"component", "assets",
		"lat", coord.Lat,
		"lon", coord.Lon,
		"acquisitions", len(history.Acquisitions),
	)
	return history, nil
}

// decodeHistory validates the response document and parses the
// acquisition dates. The count field must match the number of results.
func decodeHistory(body []byte) (*History, error) {
	var doc assetDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Reason: "body is not valid JSON", Err: err}
	}
	if doc.Count == nil {
		return nil, &ParseError{Reason: "missing count field"}
	}
	if *doc.Count != len(doc.Results) {
		return nil, &ParseError{
			Reason: fmt.Sprintf("count %d does not match %d results", *doc.Count, len(doc.Results)),
		}
	}

	history := &History{Acquisitions: make([]Acquisition, 0, len(doc.Results))}
	for _, item := range doc.Results {
		if item.Date == "" {
			id := item.ID
			if id == "" {
				id = "NONE"
			}
			return nil, &ParseError{Reason: fmt.Sprintf("result %s has no date field", id)}
		}
		date, err := time.ParseInLocation(DateLayout, item.Date, time.UTC)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("result %s has malformed date %q", item.ID, item.Date), Err: err}
		}
		history.Acquisitions = append(history.Acquisitions, Acquisition{ID: item.ID, Date: date})
	}
	return history, nil
}
