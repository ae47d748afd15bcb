package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "price-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CrawlConfig holds settings for the link-discovery stage.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// IndexURL is the price monitoring page listing bulletin PDFs.
	IndexURL string `json:"index_url" yaml:"index_url"`

	// BulletinsDir is the base directory for bulletins (contains raw/, text/).
	BulletinsDir string `json:"bulletins_dir" yaml:"bulletins_dir"`
}

// FetchConfig holds settings for the download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the minimum interval between consecutive downloads
	// (default 500ms). Enforced with a rate limiter rather than bare sleeps.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// MaxRetries is the retry budget for rate-limited responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BulletinsDir is the base directory for bulletins (contains raw/, text/).
	BulletinsDir string `json:"bulletins_dir" yaml:"bulletins_dir"`
}

// ConvertConfig holds settings for PDF-to-text conversion.
type ConvertConfig struct {
	// BulletinsDir is the base directory for bulletins (contains raw/, text/).
	BulletinsDir string `json:"bulletins_dir" yaml:"bulletins_dir"`
}

// StoreConfig holds settings for the SQLite price store.
type StoreConfig struct {
	// DataDir is the directory holding the database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ServerConfig holds settings for the read-only query API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Crawl   CrawlConfig   `json:"crawl" yaml:"crawl"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}
