package rdw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/sony/gobreaker"
)

// Row limits per request, matching the dataset sizes of the largest managers.
const (
	smallLimit = 5000
	largeLimit = 10000
)

// FetchOptions controls which records are requested.
type FetchOptions struct {
	// UseDateFilter requests only area regulations still valid on Today.
	UseDateFilter bool
	Today         time.Time
}

// Client fetches RDW parking datasets from the SODA API. Requests go through
// a circuit breaker so a failing portal stops the run quickly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a SODA client for baseURL (e.g. https://opendata.rdw.nl/resource).
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "rdw-opendata",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads all six datasets for the given area managers.
func (c *Client) Fetch(ctx context.Context, managers []string, opts FetchOptions) (*Dataset, error) {
	ds := &Dataset{}

	mappingParams := url.Values{}
	if opts.UseDateFilter {
		today := opts.Today.Format("20060102")
		mappingParams.Set("$where", fmt.Sprintf("enddatearearegulation is null or enddatearearegulation >= '%s'", today))
	}

	for _, mgr := range managers {
		if err := fetchInto(ctx, c, DatasetAreas, mgr, smallLimit, nil, &ds.Areas); err != nil {
			return nil, err
		}
		if err := fetchInto(ctx, c, DatasetAreaRegulations, mgr, smallLimit, mappingParams, &ds.AreaRegulations); err != nil {
			return nil, err
		}
		if err := fetchInto(ctx, c, DatasetTimeFrames, mgr, largeLimit, nil, &ds.TimeFrames); err != nil {
			return nil, err
		}
		if err := fetchInto(ctx, c, DatasetFareParts, mgr, largeLimit, nil, &ds.FareParts); err != nil {
			return nil, err
		}
		if err := fetchInto(ctx, c, DatasetRegulations, mgr, smallLimit, nil, &ds.Regulations); err != nil {
			return nil, err
		}
		if err := fetchInto(ctx, c, DatasetFareCalculations, mgr, smallLimit, nil, &ds.FareCalculations); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// fetchInto requests one dataset for one manager and appends the rows to dst.
func fetchInto[T any](ctx context.Context, c *Client, dataset, manager string, limit int, extra url.Values, dst *[]T) error {
	params := url.Values{}
	for k, v := range extra {
		params[k] = v
	}
	params.Set("areamanagerid", manager)
	params.Set("$limit", fmt.Sprint(limit))

	var rows []T
	if err := c.get(ctx, dataset, params, &rows); err != nil {
		return fmt.Errorf("fetch %s for manager %s: %w", dataset, manager, err)
	}
	*dst = append(*dst, rows...)
	c.logger.Debug("fetched dataset", "dataset", dataset, "manager", manager, "rows", len(rows))
	return nil
}

func (c *Client) get(ctx context.Context, dataset string, params url.Values, out any) error {
	fullURL := fmt.Sprintf("%s/%s.json?%s", c.baseURL, dataset, params.Encode())

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, fullURL)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		c.observe(dataset, outcome)
		return err
	}
	c.observe(dataset, "success")

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("decode %s: %w", dataset, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("soda request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("soda API error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) observe(dataset, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(dataset, outcome).Inc()
	}
}
