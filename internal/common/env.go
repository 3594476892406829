package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
)

// InitLogger installs the default slog logger. DEVELOPMENT_MODE=true lowers
// the level to debug.
func InitLogger(w io.Writer, json bool) {
	var programLevel = new(slog.LevelVar) // Info by default
	isDev, err := strconv.ParseBool(os.Getenv("DEVELOPMENT_MODE"))
	if err == nil && isDev {
		programLevel.Set(slog.LevelDebug)
	}
	opts := &slog.HandlerOptions{Level: programLevel}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// EnvOr returns the value of key, or def when it is unset or empty.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvSize parses key as a human readable size such as "512MB".
func EnvSize(key string, def datasize.ByteSize) (datasize.ByteSize, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return size, nil
}

// EnvDuration parses key with time.ParseDuration.
func EnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
