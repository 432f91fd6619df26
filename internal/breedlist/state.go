package breedlist

import (
	"slices"

	"woof/internal/model"
)

// ViewState is the breed list screen state. Exactly one of Loading,
// Success or Error.
type ViewState interface {
	isViewState()
}

// Loading is shown before the first result arrives.
type Loading struct{}

// Success carries the loaded breeds. IsRefreshing is set while a refresh
// of already shown data is in flight.
type Success struct {
	Breeds       []model.Breed
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

func newSuccess(breeds []model.Breed, refreshing bool) Success {
	return Success{Breeds: slices.Clone(breeds), IsRefreshing: refreshing}
}

// Intent is a user action on the breed list.
type Intent interface {
	isIntent()
	name() string
}

// LoadBreeds loads the list, showing Loading first.
type LoadBreeds struct{}

// RefreshBreeds reloads the list, keeping shown data visible.
type RefreshBreeds struct{}

func (LoadBreeds) isIntent()    {}
func (RefreshBreeds) isIntent() {}

func (LoadBreeds) name() string    { return "load" }
func (RefreshBreeds) name() string { return "refresh" }
