package usecase

import (
	"context"
	"log/slog"
	"time"

	"woof/internal/dogceo"
	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/result"
)

// Images fetches random gallery images for one breed.
type Images struct {
	api API
	opt options
}

// NewImages creates the gallery use case.
func NewImages(api API, opts ...Option) *Images {
	return &Images{api: api, opt: buildOptions(opts)}
}

// FetchRandomImages returns count random image URLs for breedKey in the
// order the API returned them.
func (im *Images) FetchRandomImages(ctx context.Context, breedKey string, count int) result.Result[[]string] {
	start := time.Now()
	res := result.Catch(func() result.Result[[]string] {
		resp, err := im.api.RandomImages(ctx, breedKey, count)
		if err != nil {
			return result.FromError[[]string](err)
		}
		if resp.Status != dogceo.StatusSuccess {
			return result.FromError[[]string](&dogceo.StatusError{Status: resp.Status})
		}
		urls := make([]string, len(resp.Message))
		copy(urls, resp.Message)
		return result.Success(urls)
	})

	elapsed := time.Since(start)
	im.opt.recorder.ObserveFetchDuration(metrics.OpRandomImages, elapsed, res.IsSuccess())
	if !res.IsSuccess() {
		im.opt.logger.Warn("gallery fetch failed",
			logfields.Breed(breedKey),
			slog.String(logfields.KeyError, res.Message()),
			logfields.Duration(elapsed))
	}
	return res
}
