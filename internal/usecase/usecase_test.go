package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/text/language"

	"woof/internal/dogceo"
	"woof/internal/model"
	"woof/internal/result"
)

type fakeAPI struct {
	breeds     map[string][]string
	parents    []string
	listStatus string
	listErr    error

	imageStatus map[string]string
	imageErr    map[string]error
	imagePanic  map[string]any

	images       []string
	imagesStatus string
	imagesErr    error

	imageCalls atomic.Int32
	mu         sync.Mutex
	requested  []string
}

func (f *fakeAPI) ListAllBreeds(context.Context) (dogceo.BreedListResponse, error) {
	status := f.listStatus
	if status == "" {
		status = dogceo.StatusSuccess
	}
	return dogceo.BreedListResponse{Status: status, Message: f.breeds, Parents: f.parents}, f.listErr
}

func (f *fakeAPI) RandomImage(_ context.Context, breed string) (dogceo.ImageResponse, error) {
	f.imageCalls.Inc()
	f.mu.Lock()
	f.requested = append(f.requested, breed)
	f.mu.Unlock()

	if p, ok := f.imagePanic[breed]; ok {
		panic(p)
	}
	if err := f.imageErr[breed]; err != nil {
		return dogceo.ImageResponse{}, err
	}
	status := dogceo.StatusSuccess
	if s, ok := f.imageStatus[breed]; ok {
		status = s
	}
	return dogceo.ImageResponse{Status: status, Message: "https://img/" + breed + ".jpg"}, nil
}

func (f *fakeAPI) RandomImages(_ context.Context, breed string, count int) (dogceo.ImagesResponse, error) {
	status := f.imagesStatus
	if status == "" {
		status = dogceo.StatusSuccess
	}
	return dogceo.ImagesResponse{Status: status, Message: f.images}, f.imagesErr
}

func TestFlattenBreeds(t *testing.T) {
	m := map[string][]string{
		"hound":   {"afghan", "basset"},
		"akita":   {},
		"bulldog": {"french"},
	}
	require.Equal(t, []string{"akita", "bulldog", "bulldog/french", "hound", "hound/afghan", "hound/basset"}, FlattenBreeds(m, nil))

	keys := FlattenBreeds(m, []string{"hound", "akita", "unknown", "hound"})
	require.Equal(t, []string{"hound", "hound/afghan", "hound/basset", "akita", "bulldog", "bulldog/french"}, keys)
}

func TestFetchBreedListKeepsAPIOrder(t *testing.T) {
	api := &fakeAPI{
		breeds:  map[string][]string{"terrier": {"irish"}, "akita": nil},
		parents: []string{"terrier", "akita"},
	}

	res := NewBreeds(api).FetchBreedList(context.Background())

	require.True(t, res.IsSuccess(), res.Message())
	var keys []string
	for _, b := range res.Data() {
		keys = append(keys, b.Key)
	}
	require.Equal(t, []string{"terrier", "terrier/irish", "akita"}, keys)
}

func TestFetchBreedListSuccess(t *testing.T) {
	api := &fakeAPI{breeds: map[string][]string{"hound": {"afghan"}, "akita": nil}}

	res := NewBreeds(api, WithConcurrency(2)).FetchBreedList(context.Background())

	require.True(t, res.IsSuccess(), res.Message())
	require.Equal(t, []model.Breed{
		{Key: "akita", DisplayName: "Akita", ThumbnailURL: "https://img/akita.jpg"},
		{Key: "hound", DisplayName: "Hound", ThumbnailURL: "https://img/hound.jpg"},
		{Key: "hound/afghan", DisplayName: "Hound/afghan", ThumbnailURL: "https://img/hound/afghan.jpg"},
	}, res.Data())
	require.Equal(t, int32(3), api.imageCalls.Load())
	require.ElementsMatch(t, []string{"akita", "hound", "hound/afghan"}, api.requested)
}

func TestFetchBreedListUsesLocale(t *testing.T) {
	api := &fakeAPI{breeds: map[string][]string{"ibizan": nil}}

	res := NewBreeds(api, WithLocale(language.Turkish)).FetchBreedList(context.Background())

	require.True(t, res.IsSuccess())
	require.Equal(t, "İbizan", res.Data()[0].DisplayName)
}

func TestFetchBreedListStatusFailure(t *testing.T) {
	api := &fakeAPI{breeds: map[string][]string{"akita": nil}, listStatus: "error"}

	res := NewBreeds(api).FetchBreedList(context.Background())

	require.False(t, res.IsSuccess())
	require.Equal(t, "API error status: error", res.Message())
	require.Zero(t, api.imageCalls.Load())
}

func TestFetchBreedListTransportFailure(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("network error: connection refused")}

	res := NewBreeds(api).FetchBreedList(context.Background())

	require.False(t, res.IsSuccess())
	require.Equal(t, "network error: connection refused", res.Message())
}

func TestFetchBreedListFailsWhenAnyImageFails(t *testing.T) {
	breeds := map[string][]string{}
	for i := 0; i < 20; i++ {
		breeds[fmt.Sprintf("breed%02d", i)] = nil
	}

	tests := []struct {
		name string
		api  *fakeAPI
		want string
	}{
		{
			name: "status",
			api:  &fakeAPI{breeds: breeds, imageStatus: map[string]string{"breed07": "error"}},
			want: "API error status: error",
		},
		{
			name: "error",
			api:  &fakeAPI{breeds: breeds, imageErr: map[string]error{"breed11": errors.New("timeout")}},
			want: "timeout",
		},
		{
			name: "panic",
			api:  &fakeAPI{breeds: breeds, imagePanic: map[string]any{"breed03": "image branch exploded"}},
			want: "image branch exploded",
		},
		{
			name: "empty panic",
			api:  &fakeAPI{breeds: breeds, imagePanic: map[string]any{"breed03": 17}},
			want: result.UnknownError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewBreeds(tt.api, WithConcurrency(4)).FetchBreedList(context.Background())
			require.False(t, res.IsSuccess())
			require.Equal(t, tt.want, res.Message())
		})
	}
}

func TestFetchBreedListEmptyErrorMessage(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("")}

	res := NewBreeds(api).FetchBreedList(context.Background())

	require.Equal(t, result.UnknownError, res.Message())
}

func TestFetchRandomImages(t *testing.T) {
	api := &fakeAPI{images: []string{"u1", "u2", "u3"}}

	res := NewImages(api).FetchRandomImages(context.Background(), "hound/afghan", 3)

	require.True(t, res.IsSuccess())
	require.Equal(t, []string{"u1", "u2", "u3"}, res.Data())

	res.Data()[0] = "changed"
	require.Equal(t, "u1", api.images[0])
}

func TestFetchRandomImagesFailures(t *testing.T) {
	res := NewImages(&fakeAPI{imagesStatus: "error"}).FetchRandomImages(context.Background(), "akita", 10)
	require.False(t, res.IsSuccess())
	require.Equal(t, "API error status: error", res.Message())

	res = NewImages(&fakeAPI{imagesErr: errors.New("API error: status 404")}).FetchRandomImages(context.Background(), "akita", 10)
	require.Equal(t, "API error: status 404", res.Message())
}

func TestFetchBreedListHoundExample(t *testing.T) {
	api := &fakeAPI{breeds: map[string][]string{"hound": {"afghan", "basset"}}}

	res := NewBreeds(api).FetchBreedList(context.Background())

	require.True(t, res.IsSuccess())
	require.Equal(t, []model.Breed{
		{Key: "hound", DisplayName: "Hound", ThumbnailURL: "https://img/hound.jpg"},
		{Key: "hound/afghan", DisplayName: "Hound/afghan", ThumbnailURL: "https://img/hound/afghan.jpg"},
		{Key: "hound/basset", DisplayName: "Hound/basset", ThumbnailURL: "https://img/hound/basset.jpg"},
	}, res.Data())
}

type panickingAPI struct{ fakeAPI }

func (*panickingAPI) RandomImages(context.Context, string, int) (dogceo.ImagesResponse, error) {
	panic(errors.New("socket closed"))
}

func TestFetchRandomImagesTransportPanic(t *testing.T) {
	res := NewImages(&panickingAPI{}).FetchRandomImages(context.Background(), "hound", 5)

	require.False(t, res.IsSuccess())
	require.Equal(t, "socket closed", res.Message())
}

func TestFetchRandomImagesFive(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e"}
	res := NewImages(&fakeAPI{images: urls}).FetchRandomImages(context.Background(), "hound", 5)

	require.True(t, res.IsSuccess())
	require.Equal(t, urls, res.Data())
}
