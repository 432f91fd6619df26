// Package usecase turns Dog CEO API calls into result.Result values the
// screens can reduce into view state. Every failure, including a panic in
// any fan-out branch, is collapsed into a message here.
package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/text/language"

	"woof/internal/dogceo"
	"woof/internal/metrics"
)

// API is the subset of the Dog CEO API the use cases consume.
type API interface {
	ListAllBreeds(ctx context.Context) (dogceo.BreedListResponse, error)
	RandomImage(ctx context.Context, breed string) (dogceo.ImageResponse, error)
	RandomImages(ctx context.Context, breed string, count int) (dogceo.ImagesResponse, error)
}

// DefaultConcurrency bounds the thumbnail fan-out.
const DefaultConcurrency = 16

type options struct {
	concurrency int
	locale      language.Tag
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// Option configures a use case.
type Option func(*options)

// WithConcurrency limits how many thumbnail requests run at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLocale sets the casing rules used for display names.
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithRecorder reports fetch durations to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = metrics.OrNoop(r) }
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		concurrency: DefaultConcurrency,
		locale:      language.English,
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
