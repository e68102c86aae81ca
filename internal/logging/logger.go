package logging

import (
	"log/slog"
	"os"
)

// Setup installs the base JSON logger on stdout. main replaces it with
// a MultiHandler once the database sink is available.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
