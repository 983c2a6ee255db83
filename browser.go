package invoicer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser returns the path of a Chrome or Chromium executable.
// An installed browser in one of the usual locations wins; otherwise a
// compatible Chromium build is downloaded once and cached in
// ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser(ctx context.Context, log *slog.Logger) (string, error) {
	if path, ok := launcher.LookPath(); ok {
		log.Debug("using installed browser", "path", path)
		return path, nil
	}

	b := launcher.NewBrowser()
	b.Context = ctx
	b.Logger = downloadLog{log}
	log.Info("downloading browser", "revision", b.Revision, "dir", b.Dir())

	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("invoicer: downloading browser: %w", err)
	}
	return path, nil
}

// downloadLog routes the launcher's progress output to slog.
type downloadLog struct {
	log *slog.Logger
}

func (d downloadLog) Println(vs ...interface{}) {
	d.log.Debug(fmt.Sprint(vs...), "component", "launcher")
}
