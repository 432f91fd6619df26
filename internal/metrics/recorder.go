package metrics

import "time"

// Fetch operation labels.
const (
	OpListBreeds   = "list_breeds"
	OpBreedImage   = "breed_image"
	OpRandomImages = "random_images"
	OpPreviewImage = "preview_image"
)

// Recorder defines observability hooks for fetches and state containers.
// Implementations may forward to Prometheus; NoopRecorder is the default
// when metrics are not configured.
type Recorder interface {
	ObserveFetchDuration(op string, d time.Duration, success bool)
	IncIntent(screen, intent string)
	IncActivation(screen string)
	IncTeardown(screen string)
	// AddSubscribers moves the observer gauge of screen by delta. Containers
	// sharing a screen name add up.
	AddSubscribers(screen string, delta int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncIntent(string, string)                         {}
func (NoopRecorder) IncActivation(string)                             {}
func (NoopRecorder) IncTeardown(string)                               {}
func (NoopRecorder) AddSubscribers(string, int)                       {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
