package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"woof/internal/dogceo"
	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/model"
	"woof/internal/result"
	"woof/internal/util"
)

// Breeds fetches the flattened breed list with one thumbnail per entry.
type Breeds struct {
	api API
	opt options
}

// NewBreeds creates the breed list use case.
func NewBreeds(api API, opts ...Option) *Breeds {
	return &Breeds{api: api, opt: buildOptions(opts)}
}

// FetchBreedList lists every breed and sub-breed and resolves a random
// thumbnail for each of them concurrently. Any failing branch fails the
// whole operation.
func (b *Breeds) FetchBreedList(ctx context.Context) result.Result[[]model.Breed] {
	start := time.Now()
	res := result.Catch(func() result.Result[[]model.Breed] {
		breeds, err := b.fetch(ctx)
		if err != nil {
			return result.FromError[[]model.Breed](err)
		}
		return result.Success(breeds)
	})

	elapsed := time.Since(start)
	b.opt.recorder.ObserveFetchDuration(metrics.OpListBreeds, elapsed, res.IsSuccess())
	if res.IsSuccess() {
		b.opt.logger.Debug("breed list fetched",
			logfields.Count(len(res.Data())),
			logfields.Duration(elapsed))
	} else {
		b.opt.logger.Warn("breed list fetch failed",
			slog.String(logfields.KeyError, res.Message()),
			logfields.Duration(elapsed))
	}
	return res
}

func (b *Breeds) fetch(ctx context.Context) ([]model.Breed, error) {
	list, err := b.api.ListAllBreeds(ctx)
	if err != nil {
		return nil, err
	}
	if list.Status != dogceo.StatusSuccess {
		return nil, &dogceo.StatusError{Status: list.Status}
	}

	keys := FlattenBreeds(list.Message, list.Parents)
	breeds := make([]model.Breed, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opt.concurrency)
	for i, key := range keys {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = errors.New(result.PanicMessage(rec))
				}
			}()

			start := time.Now()
			img, err := b.api.RandomImage(gctx, key)
			if err == nil && img.Status != dogceo.StatusSuccess {
				err = &dogceo.StatusError{Status: img.Status}
			}
			b.opt.recorder.ObserveFetchDuration(metrics.OpBreedImage, time.Since(start), err == nil)
			if err != nil {
				return err
			}

			breeds[i] = model.Breed{
				Key:          key,
				DisplayName:  util.DisplayName(key, b.opt.locale),
				ThumbnailURL: img.Message,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return breeds, nil
}

// FlattenBreeds turns the parent -> sub-breeds mapping into one key per
// parent followed by one "parent/sub" key per sub-breed. Parents follow
// order, the API order; parents missing from order come after it sorted by
// name. Sub-breeds keep the API order.
func FlattenBreeds(m map[string][]string, order []string) []string {
	parents := make([]string, 0, len(m))
	listed := make(map[string]bool, len(order))
	for _, parent := range order {
		if _, ok := m[parent]; ok && !listed[parent] {
			listed[parent] = true
			parents = append(parents, parent)
		}
	}
	var rest []string
	total := 0
	for parent, subs := range m {
		total += 1 + len(subs)
		if !listed[parent] {
			rest = append(rest, parent)
		}
	}
	sort.Strings(rest)
	parents = append(parents, rest...)

	keys := make([]string, 0, total)
	for _, parent := range parents {
		keys = append(keys, parent)
		for _, sub := range m[parent] {
			keys = append(keys, parent+"/"+sub)
		}
	}
	return keys
}
