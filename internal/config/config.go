// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config turns viper settings into the immutable types.Config handed to
// every phase. Defaults cover every key so the pipeline runs without a settings
// file; OUTREACH_* environment variables override both.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/reviewer-outreach/internal/secrets"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// EnvPrefix is the prefix for environment overrides, e.g. OUTREACH_GENERATION_MODEL.
const EnvPrefix = "OUTREACH"

// DefaultUserAgent identifies the collector and enricher to remote services.
const DefaultUserAgent = "reviewer-outreach/1.0 (+https://github.com/pdiddy/reviewer-outreach)"

// ErrMissingCredentials is returned when a phase needs a credential that is
// neither in the environment nor in the secrets directory.
var ErrMissingCredentials = errors.New("missing credentials")

// SetDefaults registers a default for every settings key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("profile_path", "config/user_profile.yaml")

	v.SetDefault("listing.url", "https://openreview.net/")
	v.SetDefault("listing.section_heading", "Open for Submissions")
	v.SetDefault("listing.link_pattern", "/group?id=")
	v.SetDefault("listing.page_delay", "1.5s")
	v.SetDefault("listing.limit", 0)
	v.SetDefault("listing.timeout", "30s")
	v.SetDefault("listing.user_agent", DefaultUserAgent)
	v.SetDefault("listing.excluded_domains", []string{"openreview.net"})
	v.SetDefault("listing.excluded_keywords", []string{"noreply", "notification", "no-reply"})

	v.SetDefault("research.endpoint", "https://api.exa.ai/search")
	v.SetDefault("research.num_results", 5)
	v.SetDefault("research.highlights_per_url", 3)
	v.SetDefault("research.num_sentences", 2)
	v.SetDefault("research.max_highlights", 5)
	v.SetDefault("research.max_highlight_chars", 500)
	v.SetDefault("research.timeout", "30s")
	v.SetDefault("research.user_agent", DefaultUserAgent)

	v.SetDefault("generation.provider", string(types.ProviderOpenAI))
	v.SetDefault("generation.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("generation.model", "gpt-5")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_tokens", 450)
	v.SetDefault("generation.timeout", "60s")
	v.SetDefault("generation.min_words", 75)
	v.SetDefault("generation.max_words", 150)
	v.SetDefault("generation.requests_per_minute", 60)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("smtp.timeout", "30s")

	v.SetDefault("dispatch.send_interval", "1.5s")
	v.SetDefault("dispatch.ledger_path", "data/dispatch.db")
	v.SetDefault("dispatch.preview_chars", 150)

	v.SetDefault("output.listings_csv", "data/listings.csv")
	v.SetDefault("output.research_csv", "data/research.csv")
	v.SetDefault("output.drafts_csv", "data/drafts.csv")
	v.SetDefault("output.fixes_csv", "data/fixed_emails.csv")

	v.SetDefault("logging.development", false)
	v.SetDefault("metrics.textfile", "")
}

// BindEnv enables OUTREACH_* overrides with dots mapped to underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load builds a Config from an optional settings file, the environment, and defaults.
func Load(path string) (types.Config, error) {
	v := viper.New()
	BindEnv(v)
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper unmarshals and validates the settings held by v.
func FromViper(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate enforces required values and reasonable limits.
func Validate(c types.Config) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Listing.URL != "", "listing.url must be set")
	check(c.Listing.LinkPattern != "", "listing.link_pattern must be set")
	check(c.Listing.PageDelay >= 0, "listing.page_delay must be >= 0")
	check(c.Listing.Limit >= 0, "listing.limit must be >= 0")

	check(c.Research.Endpoint != "", "research.endpoint must be set")
	check(c.Research.NumResults > 0, "research.num_results must be > 0")
	check(c.Research.MaxHighlights > 0, "research.max_highlights must be > 0")
	check(c.Research.MaxHighlightChars > 3, "research.max_highlight_chars must be > 3")

	g := c.Generation
	check(g.Provider == types.ProviderOpenAI || g.Provider == types.ProviderGemini,
		"generation.provider must be %q or %q, got %q", types.ProviderOpenAI, types.ProviderGemini, g.Provider)
	check(g.Model != "", "generation.model must be set")
	check(g.Temperature >= 0 && g.Temperature <= 1, "generation.temperature must be in [0,1], got %v", g.Temperature)
	check(g.MaxTokens > 0, "generation.max_tokens must be > 0")
	check(g.Timeout > 0, "generation.timeout must be > 0")
	check(g.MinWords >= 0 && g.MinWords <= g.MaxWords, "generation.min_words must be in [0, max_words]")
	check(g.RequestsPerMinute >= 0, "generation.requests_per_minute must be >= 0")
	if g.Provider == types.ProviderOpenAI {
		check(g.Endpoint != "", "generation.endpoint must be set for the openai provider")
	}

	check(c.SMTP.Host != "", "smtp.host must be set")
	check(c.SMTP.Port > 0 && c.SMTP.Port < 65536, "smtp.port must be a valid port")

	check(c.Dispatch.SendInterval > 0, "dispatch.send_interval must be > 0")
	check(c.Dispatch.PreviewChars >= 0, "dispatch.preview_chars must be >= 0")

	check(c.Output.ListingsCSV != "", "output.listings_csv must be set")
	check(c.Output.ResearchCSV != "", "output.research_csv must be set")
	check(c.Output.DraftsCSV != "", "output.drafts_csv must be set")

	return errors.Join(errs...)
}

// WithCredentials returns a copy of cfg carrying the credentials found in store.
func WithCredentials(cfg types.Config, store *secrets.Store) types.Config {
	cfg.Research.APIKey = store.Get(secrets.ExaAPIKey)
	switch cfg.Generation.Provider {
	case types.ProviderGemini:
		cfg.Generation.APIKey = store.Get(secrets.GeminiAPIKey)
	default:
		cfg.Generation.APIKey = store.Get(secrets.OpenAIAPIKey)
	}
	cfg.SMTP.Username = store.Get(secrets.EmailAddress)
	cfg.SMTP.Password = store.Get(secrets.EmailPassword)
	return cfg
}

// RequireResearchKey fails when the enricher has no API key.
func RequireResearchKey(cfg types.Config) error {
	if cfg.Research.APIKey == "" {
		return fmt.Errorf("%w: set %s or .secrets/%s", ErrMissingCredentials, secrets.ExaAPIKey.Env, secrets.ExaAPIKey.File)
	}
	return nil
}

// RequireGenerationKey fails when the drafter has no API key for its provider.
func RequireGenerationKey(cfg types.Config) error {
	if cfg.Generation.APIKey != "" {
		return nil
	}
	c := secrets.OpenAIAPIKey
	if cfg.Generation.Provider == types.ProviderGemini {
		c = secrets.GeminiAPIKey
	}
	return fmt.Errorf("%w: set %s or .secrets/%s", ErrMissingCredentials, c.Env, c.File)
}

// RequireSMTPCredentials fails when send mode has no mailbox login.
func RequireSMTPCredentials(cfg types.SMTPConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("%w: set %s and %s (or .secrets/%s and .secrets/%s)", ErrMissingCredentials,
			secrets.EmailAddress.Env, secrets.EmailPassword.Env, secrets.EmailAddress.File, secrets.EmailPassword.File)
	}
	return nil
}

// DefaultSendInterval is the pause enforced between transmissions when unset.
const DefaultSendInterval = 1500 * time.Millisecond
