package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"movs/internal/services"
)

// Genre is a single entry of the TMDB movie genre taxonomy.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList models the /genre/movie/list response.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// ImageConfig carries the image host settings from /configuration.
type ImageConfig struct {
	BaseURL       string   `json:"base_url"`
	SecureBaseURL string   `json:"secure_base_url"`
	BackdropSizes []string `json:"backdrop_sizes"`
	PosterSizes   []string `json:"poster_sizes"`
}

// Configuration models the /configuration response.
type Configuration struct {
	Images     ImageConfig `json:"images"`
	ChangeKeys []string    `json:"change_keys"`
}

// ConfigSource defines the TMDB operations used by the config loader.
type ConfigSource interface {
	FetchGenres(ctx context.Context) (*GenreList, error)
	FetchImageConfig(ctx context.Context) (*Configuration, error)
}

// Client provides access to the TMDB configuration endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ConfigSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// WithRateLimit caps outgoing requests to rps with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchGenres retrieves the movie genre taxonomy.
func (c *Client) FetchGenres(ctx context.Context) (*GenreList, error) {
	var payload GenreList
	if err := c.get(ctx, "genres", "/genre/movie/list", &payload); err != nil {
		return nil, err
	}
	for i, genre := range payload.Genres {
		if genre.ID == 0 {
			return nil, services.Wrap(services.ErrDecode, "tmdb", "genres", fmt.Sprintf("genre %d has no id", i), nil)
		}
	}
	return &payload, nil
}

// FetchImageConfig retrieves the image host configuration. A response without
// images.secure_base_url is treated as undecodable.
func (c *Client) FetchImageConfig(ctx context.Context) (*Configuration, error) {
	var payload Configuration
	if err := c.get(ctx, "image_config", "/configuration", &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Images.SecureBaseURL) == "" {
		return nil, services.Wrap(services.ErrDecode, "tmdb", "image_config", "missing images.secure_base_url", nil)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, operation, path string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, "parse url", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return services.Wrap(services.ErrNetwork, "tmdb", operation, "rate limit wait", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrNetwork, "tmdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrDecode, "tmdb", operation, "decode response", err)
	}
	return nil
}
