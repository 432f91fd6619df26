package gallery

import "slices"

// ViewState is the gallery screen state. Exactly one of Loading, Success
// or Error.
type ViewState interface {
	isViewState()
}

// Loading is shown before the first images arrive.
type Loading struct{}

// Success carries the random images of one breed.
type Success struct {
	BreedKey     string
	ImageURLs    []string
	IsRefreshing bool
}

// Error carries a human readable failure message.
type Error struct {
	Message      string
	IsRefreshing bool
}

func (Loading) isViewState() {}
func (Success) isViewState() {}
func (Error) isViewState()   {}

func newSuccess(key string, urls []string, refreshing bool) Success {
	return Success{BreedKey: key, ImageURLs: slices.Clone(urls), IsRefreshing: refreshing}
}

// Intent is a user action on the gallery.
type Intent interface {
	isIntent()
	name() string
	breedKey() string
}

// LoadGallery loads images for BreedKey, showing Loading first.
type LoadGallery struct {
	BreedKey string
}

// RefreshGallery fetches a new set of images, keeping shown ones visible.
type RefreshGallery struct {
	BreedKey string
}

func (LoadGallery) isIntent()    {}
func (RefreshGallery) isIntent() {}

func (LoadGallery) name() string    { return "load" }
func (RefreshGallery) name() string { return "refresh" }

func (i LoadGallery) breedKey() string    { return i.BreedKey }
func (i RefreshGallery) breedKey() string { return i.BreedKey }
