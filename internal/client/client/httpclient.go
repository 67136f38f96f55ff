package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/logging"
	"github.com/goccy/go-json"
)

// DefaultBaseURL is the public Dragon Ball API.
const DefaultBaseURL = "https://dragonball-api.com/api/"

const maxBodySize = 8 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is kept.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the API rooted at baseURL. A zero
// timeout means no per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) ListCharacters(ctx context.Context, limit int) ([]models.WireCharacter, error) {
	var page models.CharacterPage
	if err := c.getJSON(ctx, "characters", limitQuery(limit), &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, fmt.Errorf("%w: characters page has no items", ErrDecode)
	}
	return page.Items, nil
}

func (c *HTTPClient) GetCharacter(ctx context.Context, id int64) (*models.WireCharacter, error) {
	var ch models.WireCharacter
	if err := c.getJSON(ctx, "characters/"+strconv.FormatInt(id, 10), nil, &ch); err != nil {
		return nil, err
	}
	if ch.ID == 0 {
		return nil, fmt.Errorf("%w: character %d has no id", ErrDecode, id)
	}
	return &ch, nil
}

func (c *HTTPClient) ListPlanets(ctx context.Context, limit int) ([]models.WirePlanet, error) {
	var page models.PlanetPage
	if err := c.getJSON(ctx, "planets", limitQuery(limit), &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, fmt.Errorf("%w: planets page has no items", ErrDecode)
	}
	return page.Items, nil
}

func (c *HTTPClient) GetPlanet(ctx context.Context, id int64) (*models.WirePlanet, error) {
	var p models.WirePlanet
	if err := c.getJSON(ctx, "planets/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("%w: planet %d has no id", ErrDecode, id)
	}
	return &p, nil
}

// Ping reports whether the API answers at all. Any status below 500 counts.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, "planets", limitQuery(1))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func (c *HTTPClient) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "remote request failed", "url", u.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "remote request", "url", u.String(), "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s: status %d", ErrUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
