package scanngo

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with searcher-specific helpers so every record
// uses the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger for handler. A nil handler logs text to stderr
// at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger writing JSON records to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger writing human-readable records to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// parseLogger builds a logger from textual settings, as found in the
// environment. Unknown levels fall back to warn, unknown formats to text.
func parseLogger(level, format string) *Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	if strings.EqualFold(format, "json") {
		return NewJSONLogger(l)
	}
	return NewTextLogger(l)
}

// WithIndex tags records with the index source.
func (l *Logger) WithIndex(source string) *Logger {
	return &Logger{Logger: l.Logger.With("index", source)}
}

// LogOpen logs the outcome of opening an index.
func (l *Logger) LogOpen(ctx context.Context, s *EmbeddingSearcher, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open index failed",
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index opened",
		"embedding_type", s.embeddingType.String(),
		"embedding_dim", s.embeddingDim,
		"distance", s.measure.String(),
		"partitions", s.partitioner.NumPartitions(),
		"leaves_to_search", s.numLeaves,
		"elapsed", elapsed,
	)
}

// LogSearch logs a search batch.
func (l *Logger) LogSearch(ctx context.Context, queries, maxResults, leaves, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"queries", queries,
			"max_results", maxResults,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"queries", queries,
		"max_results", maxResults,
		"leaves", leaves,
		"results", results,
	)
}

// LogCacheReject logs a partition that was not cached for lack of memory.
func (l *Logger) LogCacheReject(ctx context.Context, leaf int, bytes int64) {
	l.DebugContext(ctx, "partition not cached: memory limit reached",
		"leaf", leaf,
		"bytes", bytes,
	)
}
