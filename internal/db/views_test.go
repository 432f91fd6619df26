package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndListViews(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(filepath.Join(t.TempDir(), "woof.db"))
	require.NoError(t, err)
	defer conn.Close()

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	v, err := RecordView(ctx, conn, "hound/afghan", first)
	require.NoError(t, err)
	require.Equal(t, 1, v.ViewCount)
	require.True(t, first.Equal(v.LastViewedAt))

	v, err = RecordView(ctx, conn, "hound/afghan", second)
	require.NoError(t, err)
	require.Equal(t, 2, v.ViewCount)
	require.True(t, second.Equal(v.LastViewedAt))

	_, err = RecordView(ctx, conn, "akita", first)
	require.NoError(t, err)

	views, err := ListViews(ctx, conn)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, 2, views["hound/afghan"].ViewCount)
	require.Equal(t, 1, views["akita"].ViewCount)
}

func TestGetViewUnknownBreed(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "woof.db"))
	require.NoError(t, err)
	defer conn.Close()

	v, err := GetView(context.Background(), conn, "poodle")
	require.NoError(t, err)
	require.Equal(t, "poodle", v.BreedKey)
	require.Zero(t, v.ViewCount)
	require.True(t, v.LastViewedAt.IsZero())
}

func TestDeleteView(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(filepath.Join(t.TempDir(), "woof.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = RecordView(ctx, conn, "akita", time.Now())
	require.NoError(t, err)
	require.NoError(t, DeleteView(ctx, conn, "akita"))

	views, err := ListViews(ctx, conn)
	require.NoError(t, err)
	require.Empty(t, views)
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "woof.db"))
	require.Error(t, err)
}
