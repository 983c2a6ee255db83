package invoicer

import (
	"log/slog"
	"time"
)

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	theme        Theme
	format       Formatter
	page         *PageConfig
	maxPasses    int
	log          *slog.Logger
}

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:  30 * time.Second,
		headless: "new",
		theme:    ThemeLight,
		format:   DefaultFormatter(),
		log:      slog.Default(),
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single pagination or export,
// reflow passes included. Defaults to 30 seconds. A zero or negative value
// disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload locates an installed browser, or fetches a compatible
// Chromium build, when no explicit path is configured.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

// WithTheme selects the color scheme. Exports default to [ThemeLight];
// [ThemeAuto] follows the emulated prefers-color-scheme of the browser.
func WithTheme(t Theme) Option {
	return func(c *converterConfig) {
		c.theme = t
	}
}

// WithFormatter sets the money and date formatting.
func WithFormatter(f Formatter) Option {
	return func(c *converterConfig) {
		c.format = f
	}
}

// WithPageConfig sets the page margins and background printing.
func WithPageConfig(pg PageConfig) Option {
	return func(c *converterConfig) {
		c.page = &pg
	}
}

// WithMaxPasses bounds the reflow passes of a single document.
// See [LayoutConfig.MaxPasses].
func WithMaxPasses(n int) Option {
	return func(c *converterConfig) {
		c.maxPasses = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *converterConfig) {
		if l != nil {
			c.log = l
		}
	}
}
