package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"movs/internal/tmdb"
)

// DefaultImageBaseURL is the secure image host served by the TMDB stub.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/"

// TMDBStub serves the genre and configuration endpoints from memory.
type TMDBStub struct {
	Server *httptest.Server

	mu         sync.Mutex
	genres     []tmdb.Genre
	secureBase string
	failing    bool
	requests   int
	apiKeys    []string
}

// NewTMDBStub starts a stub server that is closed when the test ends.
func NewTMDBStub(t testing.TB) *TMDBStub {
	t.Helper()

	stub := &TMDBStub{
		genres: []tmdb.Genre{
			{ID: 28, Name: "Action"},
			{ID: 35, Name: "Comedy"},
			{ID: 18, Name: "Drama"},
		},
		secureBase: DefaultImageBaseURL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		stub.serve(w, r, func() any {
			return tmdb.GenreList{Genres: stub.genres}
		})
	})
	mux.HandleFunc("/configuration", func(w http.ResponseWriter, r *http.Request) {
		stub.serve(w, r, func() any {
			return tmdb.Configuration{Images: tmdb.ImageConfig{
				BaseURL:       "http://image.tmdb.org/t/p/",
				SecureBaseURL: stub.secureBase,
				PosterSizes:   []string{"w92", "w185", "original"},
			}}
		})
	})
	stub.Server = httptest.NewServer(mux)
	t.Cleanup(stub.Server.Close)
	return stub
}

// URL returns the base URL to configure as tmdb.base_url.
func (s *TMDBStub) URL() string { return s.Server.URL }

// SetFailing makes every endpoint answer 503.
func (s *TMDBStub) SetFailing(failing bool) {
	s.mu.Lock()
	s.failing = failing
	s.mu.Unlock()
}

// SetGenres replaces the served genre list.
func (s *TMDBStub) SetGenres(genres ...tmdb.Genre) {
	s.mu.Lock()
	s.genres = genres
	s.mu.Unlock()
}

// Requests reports how many requests the stub has handled.
func (s *TMDBStub) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// APIKeys returns the api_key query values seen so far.
func (s *TMDBStub) APIKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.apiKeys...)
}

func (s *TMDBStub) serve(w http.ResponseWriter, r *http.Request, body func() any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	s.apiKeys = append(s.apiKeys, r.URL.Query().Get("api_key"))
	if s.failing {
		http.Error(w, `{"status_message":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body())
}
