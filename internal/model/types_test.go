package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBreedParent(t *testing.T) {
	require.Equal(t, "hound", Breed{Key: "hound/afghan"}.Parent())
	require.True(t, Breed{Key: "hound/afghan"}.IsSubBreed())
	require.Equal(t, "akita", Breed{Key: "akita"}.Parent())
	require.False(t, Breed{Key: "akita"}.IsSubBreed())
}

func TestScreenString(t *testing.T) {
	require.Equal(t, "breeds", ScreenBreeds.String())
	require.Equal(t, "gallery", ScreenGallery.String())
	require.Equal(t, "unknown", Screen(42).String())
}
