package model

import "time"

// Breed is one entry of the flattened breed list. Key is either a parent
// breed ("hound") or a sub-breed qualified by its parent ("hound/afghan").
type Breed struct {
	Key          string
	DisplayName  string
	ThumbnailURL string
}

// Parent returns the parent breed part of the key.
func (b Breed) Parent() string {
	for i := 0; i < len(b.Key); i++ {
		if b.Key[i] == '/' {
			return b.Key[:i]
		}
	}
	return b.Key
}

// IsSubBreed reports whether the key names a sub-breed.
func (b Breed) IsSubBreed() bool {
	return b.Parent() != b.Key
}

// BreedView is the locally stored view history for one breed key.
type BreedView struct {
	BreedKey     string
	ViewCount    int
	LastViewedAt time.Time
}

// BreedRow is a breed joined with its view history for list display.
type BreedRow struct {
	Breed
	ViewCount  int
	LastViewed *time.Time
}
