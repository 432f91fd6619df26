package gallery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"woof/internal/dogceo"
	"woof/internal/metrics"
	"woof/internal/result"
)

type call struct {
	key   string
	count int
}

type stubFetcher struct {
	calls atomic.Int32
	mu    sync.Mutex
	seen  []call
	fn    func(n int32, key string) result.Result[[]string]
}

func (f *stubFetcher) FetchRandomImages(_ context.Context, key string, count int) result.Result[[]string] {
	n := f.calls.Inc()
	f.mu.Lock()
	f.seen = append(f.seen, call{key: key, count: count})
	f.mu.Unlock()
	return f.fn(n, key)
}

func (f *stubFetcher) calledWith() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.seen...)
}

func next(t *testing.T, ch <-chan ViewState) ViewState {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "stream closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view state")
		return nil
	}
}

func TestGalleryLoadsOnFirstObserver(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f := &stubFetcher{fn: func(int32, string) result.Result[[]string] {
		return result.Success([]string{"u1", "u2"})
	}}
	vm := New(f, "hound/afghan", Options{Clock: clock})
	defer vm.Close()

	require.Equal(t, Loading{}, vm.State())
	require.Zero(t, f.calls.Load())

	ch, cancel := vm.Observe()
	defer cancel()

	require.Equal(t, Loading{}, next(t, ch))
	require.Equal(t, Success{BreedKey: "hound/afghan", ImageURLs: []string{"u1", "u2"}}, next(t, ch))
	require.Equal(t, []call{{key: "hound/afghan", count: dogceo.DefaultImageCount}}, f.calledWith())
}

func TestGalleryErrorThenRefresh(t *testing.T) {
	f := &stubFetcher{fn: func(n int32, _ string) result.Result[[]string] {
		if n == 1 {
			return result.FromError[[]string](errors.New("API error: status 404"))
		}
		return result.Success([]string{"u1"})
	}}
	vm := New(f, "akita", Options{ImageCount: 3, Clock: clockwork.NewFakeClock()})
	defer vm.Close()

	ch, cancel := vm.Observe()
	defer cancel()
	next(t, ch)
	require.Equal(t, Error{Message: "API error: status 404"}, next(t, ch))

	vm.Dispatch(RefreshGallery{BreedKey: "akita"})
	require.Equal(t, Loading{}, next(t, ch))
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"u1"}}, next(t, ch))
	require.Equal(t, 3, f.calledWith()[1].count)
}

func TestGalleryRefreshKeepsImages(t *testing.T) {
	f := &stubFetcher{fn: func(n int32, _ string) result.Result[[]string] {
		if n == 1 {
			return result.Success([]string{"old"})
		}
		return result.Success([]string{"new"})
	}}
	vm := New(f, "akita", Options{Clock: clockwork.NewFakeClock()})
	defer vm.Close()

	ch, cancel := vm.Observe()
	defer cancel()
	next(t, ch)
	next(t, ch)

	vm.Dispatch(RefreshGallery{BreedKey: "akita"})
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"old"}, IsRefreshing: true}, next(t, ch))
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"new"}}, next(t, ch))
}

func TestGalleryPanicBecomesError(t *testing.T) {
	f := &stubFetcher{fn: func(int32, string) result.Result[[]string] {
		panic(errors.New("decoder crashed"))
	}}
	vm := New(f, "akita", Options{Clock: clockwork.NewFakeClock()})
	defer vm.Close()

	ch, cancel := vm.Observe()
	defer cancel()
	next(t, ch)
	require.Equal(t, Error{Message: "decoder crashed"}, next(t, ch))
}

func TestGalleryReloadsAfterGraceTeardown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f := &stubFetcher{fn: func(n int32, _ string) result.Result[[]string] {
		if n == 1 {
			return result.Success([]string{"first"})
		}
		return result.Success([]string{"second"})
	}}
	vm := New(f, "akita", Options{GracePeriod: time.Second, Clock: clock})
	defer vm.Close()

	ch, cancel := vm.Observe()
	next(t, ch)
	next(t, ch)
	cancel()

	clock.Advance(500 * time.Millisecond)
	ch, cancel = vm.Observe()
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"first"}}, next(t, ch))
	cancel()
	require.EqualValues(t, 1, f.calls.Load())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !vm.Active() }, time.Second, 5*time.Millisecond)

	ch, cancel = vm.Observe()
	defer cancel()
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"first"}}, next(t, ch))
	require.Equal(t, Loading{}, next(t, ch))
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"second"}}, next(t, ch))
	require.EqualValues(t, 2, f.calls.Load())
}

func TestGalleryDoubleLoadLastWriteWins(t *testing.T) {
	f := &stubFetcher{fn: func(int32, string) result.Result[[]string] {
		return result.Success([]string{"u"})
	}}
	vm := New(f, "akita", Options{Clock: clockwork.NewFakeClock()})
	defer vm.Close()

	vm.Dispatch(LoadGallery{BreedKey: "akita"})
	vm.Dispatch(LoadGallery{BreedKey: "akita"})

	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := vm.State().(Success)
		return ok
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, Success{BreedKey: "akita", ImageURLs: []string{"u"}}, vm.State())
}

func subscriberGauge(t *testing.T, reg *prom.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "woof_stream_subscribers" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "screen" && lp.GetValue() == ScreenName {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func TestGalleriesShareSubscriberGauge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	f := &stubFetcher{fn: func(int32, string) result.Result[[]string] {
		return result.Success([]string{"u1"})
	}}
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	a := New(f, "hound", Options{Clock: clock, Recorder: recorder})
	b := New(f, "akita", Options{Clock: clock, Recorder: recorder})

	_, cancelA := a.Observe()
	defer cancelA()
	_, cancelB := b.Observe()
	require.Equal(t, 2.0, subscriberGauge(t, reg))

	cancelB()
	require.Equal(t, 1, a.SubscriberCount())
	require.Equal(t, 1.0, subscriberGauge(t, reg))

	clock.Advance(10 * time.Second)
	b.Close()
	require.Equal(t, 1.0, subscriberGauge(t, reg), "closing an idle gallery leaves the other observer counted")

	a.Close()
	require.Equal(t, 0.0, subscriberGauge(t, reg))
}
