// Package logging provides structured logging configuration for modelproxy.
//
// This package wraps log/slog so the registry, dispatchers, models and the
// CLI all log the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("interface loaded", "interface", "Search.getItems")
//
// Components accept a *slog.Logger through an option and fall back to
// logging.Nop() when none is given. Use Component to tag a logger with the
// emitting component name.
package logging
