package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/verbcrawl/internal/crawler"
	"github.com/nao1215/verbcrawl/internal/report"
	"github.com/nao1215/verbcrawl/internal/state"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "verbcrawl"

	// DefaultStateFile is the crawl state file name inside the data directory.
	DefaultStateFile = "crawl.xml"

	// DefaultTimeout bounds every HTTP request. Deep result pages of the
	// corpus service are slow to render.
	DefaultTimeout = 60 * time.Second

	// DefaultMinDelay is the minimum interval between requests.
	DefaultMinDelay = 1 * time.Second

	// DefaultJitter is the upper bound of the random delay added to
	// DefaultMinDelay.
	DefaultJitter = 1 * time.Second

	// DefaultWorkers crawls one query at a time.
	DefaultWorkers = 1
)

// Config holds all runtime options. It is populated from defaults, then
// the configuration file, then CLI flags, and passed down explicitly.
type Config struct {
	// ConfigFilePath is the configuration file to load. When empty the
	// usual locations are searched.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON lines.
	JSONLog bool

	// StatePath is the crawl state XML file.
	StatePath string

	// DBPath is the SQLite result database. Empty disables the database sink.
	DBPath string

	// CSVPath and XLSXPath are optional export files.
	CSVPath  string
	XLSXPath string

	// CSVEncoding is "utf-8" or "windows-1251".
	CSVEncoding string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MinDelay and Jitter throttle requests: each request waits at least
	// MinDelay after the previous one plus a random share of Jitter.
	MinDelay time.Duration
	Jitter   time.Duration

	// Retry is the bounded retry policy for transient fetch failures.
	Retry crawler.RetryPolicy

	// Workers is the number of queries crawled at once.
	Workers int

	// Proxy is an optional http, https, socks5 or socks5h proxy URL.
	Proxy string

	// UserAgent is sent with every request.
	UserAgent string

	// Dedup is "tag" or "surface".
	Dedup string

	// JSONReport and MarkdownReport select the status output format.
	JSONReport     bool
	MarkdownReport bool

	// File is the loaded configuration file.
	File *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		StatePath:   filepath.Join(XDGDataDir(), DefaultStateFile),
		CSVEncoding: report.UTF8.String(),
		Timeout:     DefaultTimeout,
		MinDelay:    DefaultMinDelay,
		Jitter:      DefaultJitter,
		Retry:       crawler.DefaultRetryPolicy(),
		Workers:     DefaultWorkers,
		UserAgent:   crawler.DefaultUserAgent,
		Dedup:       state.DedupByTag.String(),
		File:        &File{},
	}
}

// XDGDataDir returns the XDG data directory for verbcrawl.
// On Linux: ~/.local/share/verbcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for verbcrawl.
// On Linux: ~/.config/verbcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDBPath returns the default result database location.
func DefaultDBPath() string {
	return filepath.Join(XDGDataDir(), "verbcrawl.db")
}

// ApplyFile copies the crawl settings present in f over the current
// values. Settings absent from the file keep their values.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	if f.State != "" {
		c.StatePath = f.State
	}
	if f.Database != "" {
		c.DBPath = f.Database
	}
	if f.Dedup != "" {
		c.Dedup = f.Dedup
	}
	if f.Encoding != "" {
		c.CSVEncoding = f.Encoding
	}

	cs := f.Crawl
	if cs.Timeout != 0 {
		c.Timeout = cs.Timeout
	}
	if cs.MinDelay != nil {
		c.MinDelay = *cs.MinDelay
	}
	if cs.Jitter != nil {
		c.Jitter = *cs.Jitter
	}
	if cs.Workers != 0 {
		c.Workers = cs.Workers
	}
	if cs.Proxy != "" {
		c.Proxy = cs.Proxy
	}
	if cs.UserAgent != "" {
		c.UserAgent = cs.UserAgent
	}
	if cs.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = cs.Retry.MaxAttempts
	}
	if cs.Retry.BaseDelay != 0 {
		c.Retry.BaseDelay = cs.Retry.BaseDelay
	}
	if cs.Retry.MaxDelay != 0 {
		c.Retry.MaxDelay = cs.Retry.MaxDelay
	}
	if cs.Retry.Multiplier != 0 {
		c.Retry.Multiplier = cs.Retry.Multiplier
	}
}

// DedupPolicy returns the parsed dedup policy.
func (c *Config) DedupPolicy() (state.DedupPolicy, error) {
	return state.ParseDedupPolicy(c.Dedup)
}

// Encoding returns the parsed CSV encoding.
func (c *Config) Encoding() (report.Encoding, error) {
	return report.ParseEncoding(c.CSVEncoding)
}

// Validate checks the runtime options. The verb list is checked by
// File.Validate, since not every command needs verbs.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MinDelay < 0 || c.Jitter < 0 {
		return ErrInvalidDelay
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Retry.MaxAttempts <= 0 || c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return ErrInvalidRetry
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, err := c.DedupPolicy(); err != nil {
		return fmt.Errorf("invalid dedup policy: %w", err)
	}
	if _, err := c.Encoding(); err != nil {
		return fmt.Errorf("invalid CSV encoding: %w", err)
	}
	if c.File != nil {
		if err := c.File.Validate(); err != nil {
			return err
		}
	}
	return nil
}
