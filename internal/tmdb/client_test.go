package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"movs/internal/services"
	"movs/internal/tmdb"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
	if _, err := tmdb.New("key", "  ", "en-US"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestFetchGenresSuccess(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("language") != "pt-BR" {
			t.Errorf("expected language query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":12,"name":"Adventure"}]}`))
	})

	client, err := tmdb.New("key", server.URL+"/", "pt-BR")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	resp, err := client.FetchGenres(context.Background())
	if err != nil {
		t.Fatalf("FetchGenres returned error: %v", err)
	}
	if len(resp.Genres) != 2 || resp.Genres[0].Name != "Action" || resp.Genres[1].ID != 12 {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestFetchImageConfigSuccess(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Has("language") {
			t.Errorf("expected no language parameter, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"images":{"base_url":"http://image.tmdb.org/t/p/","secure_base_url":"https://image.tmdb.org/t/p/","poster_sizes":["w92","w500"]}}`))
	})

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.FetchImageConfig(context.Background())
	if err != nil {
		t.Fatalf("FetchImageConfig returned error: %v", err)
	}
	if resp.Images.SecureBaseURL != "https://image.tmdb.org/t/p/" {
		t.Fatalf("unexpected secure base url %q", resp.Images.SecureBaseURL)
	}
	if len(resp.Images.PosterSizes) != 2 {
		t.Fatalf("unexpected poster sizes %v", resp.Images.PosterSizes)
	}
}

func TestFetchHTTPErrorIsNetworkKind(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7}`))
	})

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.FetchGenres(context.Background())
	if err == nil {
		t.Fatal("expected error when TMDB returns non-200")
	}
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker, got %v", err)
	}
}

func TestFetchTransportErrorIsNetworkKind(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := tmdb.New("key", url, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchImageConfig(context.Background()); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker, got %v", err)
	}
}

func TestFetchMalformedPayloadIsDecodeKind(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[{"id":"nope"`))
	})

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchGenres(context.Background()); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode marker, got %v", err)
	}
}

func TestFetchImageConfigRequiresSecureBaseURL(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images":{"base_url":"http://image.tmdb.org/t/p/"}}`))
	})

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchImageConfig(context.Background()); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode marker, got %v", err)
	}
}

func TestRateLimitSpacesRequests(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"genres":[]}`))
	})

	client, err := tmdb.New("key", server.URL, "", tmdb.WithRateLimit(20, 1))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	start := time.Now()
	for range 3 {
		if _, err := client.FetchGenres(context.Background()); err != nil {
			t.Fatalf("FetchGenres returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected limiter to space requests, took %v", elapsed)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", hits.Load())
	}
}

func TestRateLimitWaitHonoursContext(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[]}`))
	})
	client, err := tmdb.New("key", server.URL, "", tmdb.WithRateLimit(0.01, 1))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchGenres(context.Background()); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.FetchGenres(ctx); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker for aborted wait, got %v", err)
	}
}

func TestWithTimeoutAbortsSlowServer(t *testing.T) {
	release := make(chan struct{})
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithTimeout(30*time.Millisecond))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchImageConfig(context.Background()); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker on timeout, got %v", err)
	}
}
