// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ListingConfig holds settings for the collection stage.
type ListingConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// URL is the listing page enumerating candidate venues.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// SectionHeading is the <h1> text identifying the section to scrape.
	SectionHeading string `json:"section_heading" yaml:"section_heading" mapstructure:"section_heading"`

	// LinkPattern is the href substring that marks a venue link.
	LinkPattern string `json:"link_pattern" yaml:"link_pattern" mapstructure:"link_pattern"`

	// PageDelay is the pause between venue page requests (default 1.5s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`

	// Limit truncates the collected records; 0 keeps all.
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// ExcludedDomains are e-mail domains never used as a contact.
	ExcludedDomains []string `json:"excluded_domains" yaml:"excluded_domains" mapstructure:"excluded_domains"`

	// ExcludedKeywords are substrings that disqualify an address (noreply etc.).
	ExcludedKeywords []string `json:"excluded_keywords" yaml:"excluded_keywords" mapstructure:"excluded_keywords"`
}

// ResearchConfig holds settings for the enrichment stage.
type ResearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the research service search URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey authenticates against the research service. Never read from the
	// settings file; filled from the environment or .secrets/.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`

	// NumResults is the number of search results requested per venue.
	NumResults int `json:"num_results" yaml:"num_results" mapstructure:"num_results"`

	// HighlightsPerURL is the number of highlights requested per result.
	HighlightsPerURL int `json:"highlights_per_url" yaml:"highlights_per_url" mapstructure:"highlights_per_url"`

	// NumSentences is the highlight length in sentences.
	NumSentences int `json:"num_sentences" yaml:"num_sentences" mapstructure:"num_sentences"`

	// MaxHighlights caps the highlights stored per record.
	MaxHighlights int `json:"max_highlights" yaml:"max_highlights" mapstructure:"max_highlights"`

	// MaxHighlightChars clips the stored highlight text.
	MaxHighlightChars int `json:"max_highlight_chars" yaml:"max_highlight_chars" mapstructure:"max_highlight_chars"`
}

// Provider selects the generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// GenerationConfig holds settings for the drafting stage.
type GenerationConfig struct {
	// Provider selects the backend: openai or gemini.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Endpoint is the chat-completions URL (openai provider only).
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Model is the generation model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the generation service.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`

	// Temperature is the sampling randomness in [0,1].
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens bounds the generated length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MinWords and MaxWords are the soft bounds on a drafted message.
	MinWords int `json:"min_words" yaml:"min_words" mapstructure:"min_words"`
	MaxWords int `json:"max_words" yaml:"max_words" mapstructure:"max_words"`

	// RequestsPerMinute caps generation calls; 0 disables the cap.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// SMTPConfig describes the authenticated mail relay.
type SMTPConfig struct {
	Host    string        `json:"host" yaml:"host" mapstructure:"host"`
	Port    int           `json:"port" yaml:"port" mapstructure:"port"`
	UseTLS  bool          `json:"use_tls" yaml:"use_tls" mapstructure:"use_tls"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Username and Password come from EMAIL_ADDRESS / EMAIL_PASSWORD.
	Username string `json:"-" yaml:"-" mapstructure:"-"`
	Password string `json:"-" yaml:"-" mapstructure:"-"`
}

// DispatchConfig holds settings for the sending stage.
type DispatchConfig struct {
	// SendInterval is the fixed delay enforced between transmissions (default 1.5s).
	SendInterval time.Duration `json:"send_interval" yaml:"send_interval" mapstructure:"send_interval"`

	// LedgerPath is the SQLite file recording every dispatch outcome.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path" mapstructure:"ledger_path"`

	// PreviewChars is the body preview length shown before confirmation.
	PreviewChars int `json:"preview_chars" yaml:"preview_chars" mapstructure:"preview_chars"`
}

// OutputConfig names the hand-off files.
type OutputConfig struct {
	ListingsCSV string `json:"listings_csv" yaml:"listings_csv" mapstructure:"listings_csv"`
	ResearchCSV string `json:"research_csv" yaml:"research_csv" mapstructure:"research_csv"`
	DraftsCSV   string `json:"drafts_csv" yaml:"drafts_csv" mapstructure:"drafts_csv"`
	FixesCSV    string `json:"fixes_csv" yaml:"fixes_csv" mapstructure:"fixes_csv"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	// Textfile is the .prom path; empty disables the export.
	Textfile string `json:"textfile" yaml:"textfile" mapstructure:"textfile"`
}

// Config groups all stage configurations for the pipeline. It is built once at
// startup and passed by value into each stage.
type Config struct {
	ProfilePath string           `json:"profile_path" yaml:"profile_path" mapstructure:"profile_path"`
	Listing     ListingConfig    `json:"listing" yaml:"listing" mapstructure:"listing"`
	Research    ResearchConfig   `json:"research" yaml:"research" mapstructure:"research"`
	Generation  GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	SMTP        SMTPConfig       `json:"smtp" yaml:"smtp" mapstructure:"smtp"`
	Dispatch    DispatchConfig   `json:"dispatch" yaml:"dispatch" mapstructure:"dispatch"`
	Output      OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics     MetricsConfig    `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}
