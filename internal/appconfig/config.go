package appconfig

import (
	"slices"
	"strings"
)

// Genre is one entry of the movie genre taxonomy.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Config is the resolved bootstrap configuration the movie screens rely on:
// where images are hosted and how genre IDs translate to names.
type Config struct {
	ImageBaseURL string  `json:"image_base_url"`
	Genres       []Genre `json:"genres"`
}

// IsZero reports whether c carries no data at all.
func (c Config) IsZero() bool {
	return c.ImageBaseURL == "" && len(c.Genres) == 0
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	return Config{
		ImageBaseURL: c.ImageBaseURL,
		Genres:       slices.Clone(c.Genres),
	}
}

// Equal reports whether c and other are structurally identical, genre order included.
func (c Config) Equal(other Config) bool {
	return c.ImageBaseURL == other.ImageBaseURL && slices.Equal(c.Genres, other.Genres)
}

// ImageURL joins the image base URL, a size bucket (e.g. "w500") and an image
// path as returned by TMDB (e.g. "/abc.jpg"). Empty paths yield "".
func (c Config) ImageURL(size, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || c.ImageBaseURL == "" {
		return ""
	}
	size = strings.Trim(strings.TrimSpace(size), "/")
	if size == "" {
		size = "original"
	}
	return strings.TrimRight(c.ImageBaseURL, "/") + "/" + size + "/" + strings.TrimLeft(path, "/")
}

// GenreName resolves a genre ID.
func (c Config) GenreName(id int64) (string, bool) {
	for _, genre := range c.Genres {
		if genre.ID == id {
			return genre.Name, true
		}
	}
	return "", false
}

// GenreNames resolves a movie's genre IDs in the given order, skipping unknown IDs.
func (c Config) GenreNames(ids []int64) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.GenreName(id); ok {
			names = append(names, name)
		}
	}
	return names
}
