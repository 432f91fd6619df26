package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyScreen      = "screen"
	KeyIntent      = "intent"
	KeyIntentID    = "intent_id"
	KeyBreed       = "breed"
	KeyCount       = "count"
	KeyOperation   = "operation"
	KeyOutcome     = "outcome"
	KeyDurationMS  = "duration_ms"
	KeySubscribers = "subscribers"
	KeyURL         = "url"
	KeyError       = "error"
)

func Screen(name string) slog.Attr    { return slog.String(KeyScreen, name) }
func Intent(name string) slog.Attr    { return slog.String(KeyIntent, name) }
func IntentID(id string) slog.Attr    { return slog.String(KeyIntentID, id) }
func Breed(key string) slog.Attr      { return slog.String(KeyBreed, key) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Subscribers(n int) slog.Attr     { return slog.Int(KeySubscribers, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
