// Package gallery holds the state of the per-breed image gallery screen.
package gallery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"woof/internal/dogceo"
	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/mvi"
	"woof/internal/result"
)

// ScreenName labels logs and metrics for this screen.
const ScreenName = "gallery"

// Fetcher loads random images for a breed.
type Fetcher interface {
	FetchRandomImages(ctx context.Context, breedKey string, count int) result.Result[[]string]
}

// Options tune a ViewModel. The zero value is usable.
type Options struct {
	// ImageCount defaults to dogceo.DefaultImageCount.
	ImageCount  int
	GracePeriod time.Duration
	Clock       clockwork.Clock
	Logger      *slog.Logger
	Recorder    metrics.Recorder
}

// ViewModel turns gallery intents for one breed into view states.
type ViewModel struct {
	breedKey string
	count    int
	fetcher  Fetcher
	logger   *slog.Logger
	recorder metrics.Recorder
	c        *mvi.Container[ViewState, Intent]
}

// New creates a gallery view model for breedKey. Images are loaded when the
// first observer subscribes.
func New(fetcher Fetcher, breedKey string, opts Options) *ViewModel {
	vm := &ViewModel{
		breedKey: breedKey,
		count:    opts.ImageCount,
		fetcher:  fetcher,
		logger:   opts.Logger,
		recorder: metrics.OrNoop(opts.Recorder),
	}
	if vm.count <= 0 {
		vm.count = dogceo.DefaultImageCount
	}
	if vm.logger == nil {
		vm.logger = slog.Default()
	}
	vm.logger = vm.logger.With(logfields.Screen(ScreenName), logfields.Breed(breedKey))
	vm.c = mvi.New(mvi.Config[ViewState, Intent]{
		Name:        ScreenName,
		Initial:     Loading{},
		Handle:      vm.handle,
		OnActivate:  func(ctx context.Context) { vm.handle(ctx, LoadGallery{BreedKey: breedKey}) },
		GracePeriod: opts.GracePeriod,
		Clock:       opts.Clock,
		Logger:      opts.Logger,
		Recorder:    opts.Recorder,
	})
	return vm
}

// BreedKey returns the breed this gallery shows.
func (vm *ViewModel) BreedKey() string { return vm.breedKey }

func (vm *ViewModel) State() ViewState                    { return vm.c.State() }
func (vm *ViewModel) Observe() (<-chan ViewState, func()) { return vm.c.Observe() }
func (vm *ViewModel) Dispatch(intent Intent)              { vm.c.Dispatch(intent) }
func (vm *ViewModel) SubscriberCount() int                { return vm.c.SubscriberCount() }
func (vm *ViewModel) Active() bool                        { return vm.c.Active() }
func (vm *ViewModel) Close()                              { vm.c.Close() }

func (vm *ViewModel) handle(ctx context.Context, intent Intent) {
	key := intent.breedKey()
	if key == "" {
		key = vm.breedKey
	}
	id := uuid.NewString()
	log := vm.logger.With(logfields.Intent(intent.name()), logfields.IntentID(id))
	vm.recorder.IncIntent(ScreenName, intent.name())
	log.Debug("intent started", logfields.Count(vm.count))
	start := time.Now()

	switch intent.(type) {
	case RefreshGallery:
		vm.c.Update(func(s ViewState) ViewState {
			if cur, ok := s.(Success); ok {
				return newSuccess(cur.BreedKey, cur.ImageURLs, true)
			}
			return Loading{}
		})
	default:
		vm.c.Update(func(ViewState) ViewState { return Loading{} })
	}

	res := result.Catch(func() result.Result[[]string] {
		return vm.fetcher.FetchRandomImages(ctx, key, vm.count)
	})
	if ctx.Err() != nil {
		log.Debug("intent cancelled", logfields.Duration(time.Since(start)))
		return
	}

	res.Match(
		func(urls []string) {
			vm.c.Update(func(ViewState) ViewState { return newSuccess(key, urls, false) })
			log.Info("intent finished",
				logfields.Outcome("success"),
				logfields.Count(len(urls)),
				logfields.Duration(time.Since(start)))
		},
		func(msg string) {
			vm.c.Update(func(ViewState) ViewState { return Error{Message: msg} })
			log.Warn("intent finished",
				logfields.Outcome("error"),
				slog.String(logfields.KeyError, msg),
				logfields.Duration(time.Since(start)))
		},
	)
}
