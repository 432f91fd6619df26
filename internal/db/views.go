package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"woof/internal/model"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// RecordView increments the view count of a breed and stamps it with at.
func RecordView(ctx context.Context, db *sql.DB, breedKey string, at time.Time) (model.BreedView, error) {
	query := `
		INSERT INTO breed_views (breed_key, view_count, last_viewed_at)
		VALUES (?, 1, ?)
		ON CONFLICT(breed_key) DO UPDATE SET
			view_count = view_count + 1,
			last_viewed_at = excluded.last_viewed_at
	`

	if _, err := db.ExecContext(ctx, query, breedKey, at.UTC().Format(timeLayout)); err != nil {
		return model.BreedView{}, fmt.Errorf("failed to record view: %w", err)
	}
	return GetView(ctx, db, breedKey)
}

// GetView retrieves the view history of one breed. A breed that was never
// viewed yields a zero BreedView with the key set.
func GetView(ctx context.Context, db *sql.DB, breedKey string) (model.BreedView, error) {
	query := `
		SELECT breed_key, view_count, last_viewed_at
		FROM breed_views
		WHERE breed_key = ?
	`

	v, err := scanView(db.QueryRowContext(ctx, query, breedKey))
	if errors.Is(err, sql.ErrNoRows) {
		return model.BreedView{BreedKey: breedKey}, nil
	}
	if err != nil {
		return model.BreedView{}, fmt.Errorf("failed to get view: %w", err)
	}
	return v, nil
}

// ListViews retrieves the view history of every breed, keyed by breed key.
func ListViews(ctx context.Context, db *sql.DB) (map[string]model.BreedView, error) {
	query := `
		SELECT breed_key, view_count, last_viewed_at
		FROM breed_views
		ORDER BY last_viewed_at DESC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	views := make(map[string]model.BreedView)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view row: %w", err)
		}
		views[v.BreedKey] = v
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view rows: %w", err)
	}

	return views, nil
}

// DeleteView forgets the view history of one breed.
func DeleteView(ctx context.Context, db *sql.DB, breedKey string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM breed_views WHERE breed_key = ?", breedKey); err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(s scanner) (model.BreedView, error) {
	var v model.BreedView
	var lastViewed string
	if err := s.Scan(&v.BreedKey, &v.ViewCount, &lastViewed); err != nil {
		return model.BreedView{}, err
	}
	if t, err := time.Parse(timeLayout, lastViewed); err == nil {
		v.LastViewedAt = t
	} else if t, err := time.Parse(time.RFC3339, lastViewed); err == nil {
		v.LastViewedAt = t
	}
	return v, nil
}
