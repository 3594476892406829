package compression

import (
	"log/slog"
	"time"
)

// Observer receives the duration of a measured operation.
type Observer func(name, path string, elapsed time.Duration, err error)

// Measure wraps a file operation such as EncodeFile or DecodeFile so every
// call is timed and reported to obs. A nil obs logs at debug level.
func Measure[T any](name string, op func(path string) (T, error), obs Observer) func(path string) (T, error) {
	if obs == nil {
		obs = logDuration
	}
	return func(path string) (T, error) {
		start := time.Now()
		res, err := op(path)
		obs(name, path, time.Since(start), err)
		return res, err
	}
}

func logDuration(name, path string, elapsed time.Duration, err error) {
	slog.Debug("Operation finished", "op", name, "path", path, "elapsed_ms", elapsed.Milliseconds(), "failed", err != nil)
}
