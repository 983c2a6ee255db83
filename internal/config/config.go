// Package config loads the YAML configuration shared by the invoicer
// command and its HTTP server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/invoicer"
)

// Config is the on-disk configuration. Zero fields fall back to Default.
type Config struct {
	// Locale is a BCP 47 tag such as "en" or "de-DE".
	Locale string `yaml:"locale"`

	// Currency is an ISO 4217 code such as "EUR".
	Currency string `yaml:"currency"`

	// FractionDigits overrides the decimals shown for amounts.
	FractionDigits int `yaml:"fraction_digits,omitempty"`

	// DateLayout is a time.Format layout for the issue date.
	DateLayout string `yaml:"date_layout,omitempty"`

	// Theme is "light", "dark" or "auto".
	Theme string `yaml:"theme"`

	ChromePath   string        `yaml:"chrome_path,omitempty"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	AutoDownload bool          `yaml:"auto_download"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxPasses    int           `yaml:"max_passes,omitempty"`

	// Database is the SQLite file holding imported invoices.
	Database string `yaml:"database"`

	// Listen is the address of the HTTP export endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Locale:   "en",
		Currency: "EUR",
		Theme:    string(invoicer.ThemeLight),
		Timeout:  30 * time.Second,
		Database: "invoices.db",
		Listen:   "localhost:8080",
	}
}

// Load reads the YAML file at path over Default. An empty path returns
// Default unchanged. Unknown keys are rejected so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that are parsed lazily elsewhere.
func (c Config) Validate() error {
	if _, err := c.Formatter(); err != nil {
		return err
	}
	if _, err := invoicer.ParseTheme(c.Theme); err != nil {
		return err
	}
	if c.FractionDigits < 0 {
		return fmt.Errorf("fraction_digits must not be negative, got %d", c.FractionDigits)
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("max_passes must not be negative, got %d", c.MaxPasses)
	}
	return nil
}

// Formatter returns the money and date formatter described by c.
func (c Config) Formatter() (invoicer.Formatter, error) {
	f := invoicer.DefaultFormatter()
	if c.Locale != "" {
		tag, err := language.Parse(c.Locale)
		if err != nil {
			return f, fmt.Errorf("locale %q: %w", c.Locale, err)
		}
		f.Locale = tag
	}
	if c.Currency != "" {
		unit, err := currency.ParseISO(c.Currency)
		if err != nil {
			return f, fmt.Errorf("currency %q: %w", c.Currency, err)
		}
		f.Currency = unit
	}
	f.FractionDigits = c.FractionDigits
	if c.DateLayout != "" {
		f.DateLayout = c.DateLayout
	}
	return f, nil
}

// ConverterOptions translates c into options for invoicer.NewConverter.
func (c Config) ConverterOptions(log *slog.Logger) ([]invoicer.Option, error) {
	f, err := c.Formatter()
	if err != nil {
		return nil, err
	}
	theme, err := invoicer.ParseTheme(c.Theme)
	if err != nil {
		return nil, err
	}

	opts := []invoicer.Option{
		invoicer.WithFormatter(f),
		invoicer.WithTheme(theme),
		invoicer.WithTimeout(c.Timeout),
		invoicer.WithMaxPasses(c.MaxPasses),
		invoicer.WithLogger(log),
	}
	if c.ChromePath != "" {
		opts = append(opts, invoicer.WithChromePath(c.ChromePath))
	}
	if c.NoSandbox {
		opts = append(opts, invoicer.WithNoSandbox())
	}
	if c.AutoDownload {
		opts = append(opts, invoicer.WithAutoDownload())
	}
	return opts, nil
}
