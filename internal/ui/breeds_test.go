package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"woof/internal/model"
)

func testBreeds() []model.Breed {
	return []model.Breed{
		{Key: "affenpinscher", DisplayName: "Affenpinscher", ThumbnailURL: "https://img/a.jpg"},
		{Key: "hound", DisplayName: "Hound", ThumbnailURL: "https://img/h.jpg"},
		{Key: "hound/afghan", DisplayName: "Hound/afghan", ThumbnailURL: "https://img/ha.jpg"},
		{Key: "hound/basset", DisplayName: "Hound/basset", ThumbnailURL: "https://img/hb.jpg"},
	}
}

func rowKeys(m *BreedsModel) []string {
	keys := make([]string, len(m.rows))
	for i, r := range m.rows {
		keys[i] = r.Key
	}
	return keys
}

func TestBreedsModelJoinsViews(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewBreedsModel(testBreeds(), map[string]model.BreedView{
		"hound": {BreedKey: "hound", ViewCount: 3, LastViewedAt: at},
	})

	require.Len(t, m.rows, 4)
	require.Equal(t, 3, m.rows[1].ViewCount)
	require.NotNil(t, m.rows[1].LastViewed)
	require.Nil(t, m.rows[0].LastViewed)
}

func TestBreedsModelSortAndFilter(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)

	require.True(t, m.JumpToColumn(1))
	m.SortActiveColumn(true)
	require.Equal(t, []string{"hound/basset", "hound/afghan", "hound", "affenpinscher"}, rowKeys(m))

	// Filter by kind of the selected row.
	require.True(t, m.JumpToColumn(3))
	m.JumpToTop()
	require.True(t, m.FilterBySelectedValue())
	require.Equal(t, []string{"hound/basset", "hound/afghan"}, rowKeys(m))

	require.True(t, m.ClearFilter())
	require.Len(t, m.rows, 4)
	require.False(t, m.ClearFilter())
}

func TestBreedsModelHideColumns(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)

	for i := 0; i < len(m.columns)-1; i++ {
		require.True(t, m.HideActiveColumn())
	}
	require.False(t, m.HideActiveColumn(), "last visible column stays")
	require.Len(t, m.visibleColumnIndexes(), 1)

	m.ShowAllColumns()
	require.Len(t, m.visibleColumnIndexes(), len(m.columns))
}

func TestBreedsModelPrefsRoundTrip(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)
	require.True(t, m.JumpToColumn(2))
	m.SortActiveColumn(false)
	require.True(t, m.JumpToColumn(6))
	require.True(t, m.HideActiveColumn())

	prefs := m.Prefs()
	require.Equal(t, "parent", prefs.SortKey)
	require.Equal(t, []string{"thumbnail"}, prefs.HiddenColumns)

	other := NewBreedsModel(testBreeds(), nil)
	other.ApplyPrefs(prefs)
	require.Equal(t, prefs, other.Prefs())
	require.Equal(t, rowKeys(m), rowKeys(other))
}

func TestBreedsModelKeepsSelectionAcrossReload(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)
	require.True(t, m.SelectKey("hound/afghan"))

	reloaded := append([]model.Breed{{Key: "akita", DisplayName: "Akita"}}, testBreeds()...)
	m.SetBreeds(reloaded, nil)
	require.Equal(t, "hound/afghan", m.SelectedKey())

	m.SetBreeds(testBreeds()[:1], nil)
	require.Equal(t, "affenpinscher", m.SelectedKey())
	require.False(t, m.SelectKey("hound"))
}

func TestBreedsModelNavigation(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)

	m.MoveUp()
	require.Equal(t, 0, m.cursor)
	m.JumpToBottom()
	require.Equal(t, "hound/basset", m.SelectedKey())
	m.MoveDown()
	require.Equal(t, "hound/basset", m.SelectedKey())
	m.HalfPageUp(2)
	require.Equal(t, 2, m.cursor)
}

func TestBreedsModelViewShowsRefreshing(t *testing.T) {
	m := NewBreedsModel(testBreeds(), nil)
	require.NotContains(t, m.View(120, 20), "refreshing")

	m.SetRefreshing(true)
	require.Contains(t, m.View(120, 20), "refreshing")
}
