package config

import (
	"fmt"
	"time"
)

// TriageConfig represents the configuration for the classification engine
type TriageConfig struct {
	Strategy            string
	EscalationThreshold int
	MaxConcurrency      int
	ExcerptLength       int
	VIPSenders          []string
}

// LLMConfig represents the provider selection and call policy
type LLMConfig struct {
	Providers          []string
	Timeout            time.Duration
	BreakerMaxFailures int
	BreakerCooldown    time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Enabled     bool
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// RelayConfig represents the configuration for the SMTP tagging relay
type RelayConfig struct {
	ListenAddress    string
	UpstreamHost     string
	UpstreamPort     int
	UpstreamEnabled  bool
	TierHeader       string
	ConfidenceHeader string
	ReasonHeader     string
	SourceHeader     string
	ModifySubject    bool
	SubjectPrefix    string
}

// AuthConfig represents the Google OAuth configuration
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenTTL     time.Duration
}

// GetTriage returns the triage engine configuration
func (c *Config) GetTriage() (TriageConfig, error) {
	threshold := c.GetInt("triage.escalation_threshold")
	if threshold < 0 || threshold > 100 {
		return TriageConfig{}, fmt.Errorf("triage.escalation_threshold out of range: %d", threshold)
	}

	strategy := c.GetString("triage.strategy")
	if strategy != "baseline" && strategy != "additive" {
		return TriageConfig{}, fmt.Errorf("unknown triage.strategy: %q", strategy)
	}

	return TriageConfig{
		Strategy:            strategy,
		EscalationThreshold: threshold,
		MaxConcurrency:      c.GetInt("triage.max_concurrency"),
		ExcerptLength:       c.GetInt("triage.excerpt_length"),
		VIPSenders:          c.GetStringSlice("triage.vip_senders"),
	}, nil
}

// GetLLM returns the LLM chain configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, fmt.Errorf("invalid llm.timeout: %w", err)
	}
	cooldown, err := c.GetDuration("llm.breaker.cooldown")
	if err != nil {
		return LLMConfig{}, fmt.Errorf("invalid llm.breaker.cooldown: %w", err)
	}

	return LLMConfig{
		Providers:          c.GetStringSlice("llm.providers"),
		Timeout:            timeout,
		BreakerMaxFailures: c.GetInt("llm.breaker.max_failures"),
		BreakerCooldown:    cooldown,
	}, nil
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Enabled:     c.GetBool("bedrock.enabled"),
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetRelay returns the SMTP relay configuration
func (c *Config) GetRelay() RelayConfig {
	return RelayConfig{
		ListenAddress:    c.GetString("relay.listen_address"),
		UpstreamHost:     c.GetString("relay.upstream_host"),
		UpstreamPort:     c.GetInt("relay.upstream_port"),
		UpstreamEnabled:  c.GetBool("relay.upstream_enabled"),
		TierHeader:       c.GetString("relay.headers.tier"),
		ConfidenceHeader: c.GetString("relay.headers.confidence"),
		ReasonHeader:     c.GetString("relay.headers.reason"),
		SourceHeader:     c.GetString("relay.headers.source"),
		ModifySubject:    c.GetBool("relay.modify_subject"),
		SubjectPrefix:    c.GetString("relay.subject_prefix"),
	}
}

// GetAuth returns the Google OAuth configuration
func (c *Config) GetAuth() (AuthConfig, error) {
	ttl, err := c.GetDuration("auth.token_ttl")
	if err != nil {
		return AuthConfig{}, fmt.Errorf("invalid auth.token_ttl: %w", err)
	}

	return AuthConfig{
		ClientID:     c.GetString("auth.google.client_id"),
		ClientSecret: c.GetString("auth.google.client_secret"),
		RedirectURL:  c.GetString("auth.google.redirect_url"),
		TokenTTL:     ttl,
	}, nil
}
