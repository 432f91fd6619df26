// Package breedlist holds the state of the breed list screen.
package breedlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/model"
	"woof/internal/mvi"
	"woof/internal/result"
)

// ScreenName labels logs and metrics for this screen.
const ScreenName = "breeds"

// Fetcher loads the breed list.
type Fetcher interface {
	FetchBreedList(ctx context.Context) result.Result[[]model.Breed]
}

// Options tune a ViewModel. The zero value is usable.
type Options struct {
	GracePeriod time.Duration
	Clock       clockwork.Clock
	Logger      *slog.Logger
	Recorder    metrics.Recorder
}

// ViewModel turns breed list intents into view states.
type ViewModel struct {
	fetcher  Fetcher
	logger   *slog.Logger
	recorder metrics.Recorder
	c        *mvi.Container[ViewState, Intent]
}

// New creates the breed list view model. The list is loaded when the
// first observer subscribes.
func New(fetcher Fetcher, opts Options) *ViewModel {
	vm := &ViewModel{
		fetcher:  fetcher,
		logger:   opts.Logger,
		recorder: metrics.OrNoop(opts.Recorder),
	}
	if vm.logger == nil {
		vm.logger = slog.Default()
	}
	vm.logger = vm.logger.With(logfields.Screen(ScreenName))
	vm.c = mvi.New(mvi.Config[ViewState, Intent]{
		Name:        ScreenName,
		Initial:     Loading{},
		Handle:      vm.handle,
		OnActivate:  func(ctx context.Context) { vm.handle(ctx, LoadBreeds{}) },
		GracePeriod: opts.GracePeriod,
		Clock:       opts.Clock,
		Logger:      opts.Logger,
		Recorder:    opts.Recorder,
	})
	return vm
}

// State returns the current view state.
func (vm *ViewModel) State() ViewState { return vm.c.State() }

// Observe subscribes to view states. See mvi.Container.Observe.
func (vm *ViewModel) Observe() (<-chan ViewState, func()) { return vm.c.Observe() }

// Dispatch sends an intent without waiting for it.
func (vm *ViewModel) Dispatch(intent Intent) { vm.c.Dispatch(intent) }

// SubscriberCount returns the number of live observers.
func (vm *ViewModel) SubscriberCount() int { return vm.c.SubscriberCount() }

// Close stops all work and closes observer channels.
func (vm *ViewModel) Close() { vm.c.Close() }

func (vm *ViewModel) handle(ctx context.Context, intent Intent) {
	id := uuid.NewString()
	log := vm.logger.With(logfields.Intent(intent.name()), logfields.IntentID(id))
	vm.recorder.IncIntent(ScreenName, intent.name())
	log.Debug("intent started")
	start := time.Now()

	switch intent.(type) {
	case RefreshBreeds:
		vm.c.Update(func(s ViewState) ViewState {
			if cur, ok := s.(Success); ok {
				return newSuccess(cur.Breeds, true)
			}
			return Loading{}
		})
	default:
		vm.c.Update(func(ViewState) ViewState { return Loading{} })
	}

	res := result.Catch(func() result.Result[[]model.Breed] {
		return vm.fetcher.FetchBreedList(ctx)
	})
	if ctx.Err() != nil {
		log.Debug("intent cancelled", logfields.Duration(time.Since(start)))
		return
	}

	res.Match(
		func(breeds []model.Breed) {
			vm.c.Update(func(ViewState) ViewState { return newSuccess(breeds, false) })
			log.Info("intent finished",
				logfields.Outcome("success"),
				logfields.Count(len(breeds)),
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
