// Package simco fetches reference market prices from the game's price history API.
package simco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	"github.com/etnz/simbooks/internal/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultBaseURL is the address of the public game API.
const DefaultBaseURL = "https://www.simcompanies.com"

// Client implements simbooks.PriceSource over the market price history API.
//
// Every request goes through a circuit breaker: once it is open, calls fail
// immediately until the open timeout elapses. There are no retries.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	failureThreshold uint32
	openTimeout      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBreaker sets the number of consecutive failures that opens the breaker,
// and how long it stays open.
func WithBreaker(failures uint32, open time.Duration) Option {
	return func(c *Client) {
		c.failureThreshold = failures
		c.openTimeout = open
	}
}

// New returns a client for the API at baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		http:             &http.Client{Timeout: 10 * time.Second},
		logger:           zap.NewNop(),
		failureThreshold: 5,
		openTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "simco",
		Timeout: c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return c
}

// historyURL returns the address of the price history of ref in realm.
func (c *Client) historyURL(realm int, ref simbooks.PriceRef) string {
	return fmt.Sprintf("%s/api/v3/market-price/%d/%d/%d/", c.baseURL, realm, ref.Kind, ref.Quality)
}

// History returns the raw daily records of ref in realm.
func (c *Client) History(ctx context.Context, realm int, ref simbooks.PriceRef) (any, error) {
	addr := c.historyURL(realm, ref)
	jobj, err := c.breaker.Execute(func() (interface{}, error) {
		var jobj any
		err := jwget(ctx, c.http, addr, &jobj)
		return jobj, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("price history of %s unavailable: %w: %w", ref.Key(), simbooks.ErrNoPrice, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving price history of %s: %w: %w", ref.Key(), simbooks.ErrNoPrice, err)
	}
	return jobj, nil
}

// VWAP returns the volume-weighted average price of ref on day on.
func (c *Client) VWAP(ctx context.Context, realm int, ref simbooks.PriceRef, on date.Date) (float64, error) {
	jobj, err := c.History(ctx, realm, ref)
	if err != nil {
		return 0, err
	}
	path := fmt.Sprintf(`$[?(@.date==%q)].vwap`, on.String())
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %q: %w: %w", ref.Key(), path, simbooks.ErrNoPrice, err)
	}
	// filters always return a list, keep the first answer if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return 0, fmt.Errorf("no record of %s on %s: %w", ref.Key(), on, simbooks.ErrNoPrice)
		}
		jval = jlist[0]
	}

	val, err := toFloat(jval)
	if err != nil {
		return 0, fmt.Errorf("cannot read vwap of %s on %s: %w: %w", ref.Key(), on, simbooks.ErrNoPrice, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("empty vwap of %s on %s: %w", ref.Key(), on, simbooks.ErrNoPrice)
	}
	// the caller's logger carries its run fields
	logger.FromContextOr(ctx, c.logger).Debug("reference price fetched",
		zap.String("ref", ref.Key()), zap.Stringer("on", on), zap.Float64("vwap", val))
	return val, nil
}

// toFloat reads a number the API may also send as a string.
func toFloat(jval any) (float64, error) {
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("neither a float or a string: %v", jval)
	}
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
