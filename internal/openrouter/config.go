package openrouter

// Config contains the OpenRouter transport configuration. The client copies it
// at construction time and never mutates it afterward; every call observes
// exactly this snapshot.
type Config struct {
	APIKey       string  `env:"OPENROUTER_API_KEY"`
	BaseURL      string  `env:"OPENROUTER_BASE_URL"      envDefault:"https://openrouter.ai/api/v1"`
	DefaultModel string  `env:"OPENROUTER_MODEL"         envDefault:"openai/gpt-4o-mini"`
	TimeoutMs    int     `env:"OPENROUTER_TIMEOUT_MS"    envDefault:"30000"`
	Temperature  float64 `env:"OPENROUTER_TEMPERATURE"   envDefault:"0.7"`
	MaxTokens    int     `env:"OPENROUTER_MAX_TOKENS"    envDefault:"0"`

	// AppURL and AppTitle populate the optional HTTP-Referer and X-Title
	// attribution headers OpenRouter uses for app rankings.
	AppURL   string `env:"OPENROUTER_APP_URL"`
	AppTitle string `env:"OPENROUTER_APP_TITLE"`
}

// defaultParameters assembles the configured default sampling parameters.
// Request-specific parameters are merged over these, request winning on conflict.
func (c Config) defaultParameters() map[string]any {
	params := make(map[string]any)
	if c.Temperature > 0 {
		params["temperature"] = c.Temperature
	}
	if c.MaxTokens > 0 {
		params["max_tokens"] = c.MaxTokens
	}
	return params
}
