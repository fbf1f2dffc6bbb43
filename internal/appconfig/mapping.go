package appconfig

import "movs/internal/tmdb"

// FromTMDB combines a genre list and an image configuration fetched in the
// same cycle. Genres map 1:1 in source order and the result shares no memory
// with its inputs.
func FromTMDB(genres tmdb.GenreList, images tmdb.Configuration) Config {
	mapped := make([]Genre, 0, len(genres.Genres))
	for _, genre := range genres.Genres {
		mapped = append(mapped, Genre{ID: genre.ID, Name: genre.Name})
	}
	return Config{
		ImageBaseURL: images.Images.SecureBaseURL,
		Genres:       mapped,
	}
}
