package main

import (
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/loganlanou/quickview/service"
)

// newLogger builds the process logger from cfg. Text output is colored by
// tint and carries short source paths; JSON output is for log collectors.
func newLogger(w io.Writer, cfg service.LogConfig) *slog.Logger {
	if cfg.Format == service.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level}))
	}

	prefix := modulePrefix()
	replacer := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				source.File = trimSourcePath(source.File, prefix)
			}
		}
		if err, ok := a.Value.Any().(error); ok {
			aErr := tint.Err(err)
			aErr.Key = a.Key
			return aErr
		}
		return a
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       cfg.Level,
		TimeFormat:  time.TimeOnly,
		ReplaceAttr: replacer,
		AddSource:   cfg.Level <= slog.LevelDebug,
	}))
}

// modulePrefix is the last element of the main module path wrapped in
// slashes, e.g. "/quickview/".
func modulePrefix() string {
	path := "quickview"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		path = info.Main.Path[strings.LastIndex(info.Main.Path, "/")+1:]
	}
	return "/" + path + "/"
}

// trimSourcePath keeps the part of file after the module directory.
func trimSourcePath(file, prefix string) string {
	if i := strings.Index(file, prefix); i >= 0 {
		return file[i+len(prefix):]
	}
	return file
}
