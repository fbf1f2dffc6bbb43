package configloader

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"movs/internal/appconfig"
	"movs/internal/tmdb"
)

// Fetch branches.
const (
	BranchGenres      = "genres"
	BranchImageConfig = "image_config"
	BranchUnknown     = "unknown"
)

// FetchFailure reports a failed load cycle. Branch names the remote call that
// failed first; both branches are handled the same way.
type FetchFailure struct {
	Branch string
	Err    error
}

func (e *FetchFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config fetch failed (%s)", e.Branch)
	}
	return fmt.Sprintf("config fetch failed (%s): %v", e.Branch, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// BranchOf returns the failing branch recorded in err, or BranchUnknown.
func BranchOf(err error) string {
	var failure *FetchFailure
	if errors.As(err, &failure) && failure.Branch != "" {
		return failure.Branch
	}
	return BranchUnknown
}

// outcome is the resolved result of one cycle's joint fetch.
type outcome struct {
	cycle  uint64
	id     string
	config appconfig.Config
	err    error
}

// fetchBoth runs both remote calls concurrently and waits for both. The calls
// share ctx but a failure in one does not cancel the other.
func fetchBoth(ctx context.Context, source RemoteSource) (appconfig.Config, error) {
	var (
		genres *tmdb.GenreList
		images *tmdb.Configuration
		g      errgroup.Group
	)
	g.Go(func() error {
		var err error
		genres, err = callBranch(ctx, BranchGenres, source.FetchGenres)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = callBranch(ctx, BranchImageConfig, source.FetchImageConfig)
		return err
	})
	if err := g.Wait(); err != nil {
		return appconfig.Config{}, err
	}
	return appconfig.FromTMDB(*genres, *images), nil
}

func callBranch[T any](ctx context.Context, branch string, fn func(context.Context) (*T, error)) (result *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &FetchFailure{Branch: branch, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		return nil, &FetchFailure{Branch: branch, Err: err}
	}
	if result == nil {
		return nil, &FetchFailure{Branch: branch, Err: errors.New("empty response")}
	}
	return result, nil
}
