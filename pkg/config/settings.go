package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the runtime settings read from MODELPROXY_* environment
// variables. Command-line flags take precedence over them.
type Settings struct {
	ConfigPath    string `env:"MODELPROXY_CONFIG"`
	Status        string `env:"MODELPROXY_STATUS"`
	Engine        string `env:"MODELPROXY_ENGINE"`
	Rulebase      string `env:"MODELPROXY_RULEBASE"`
	LogLevel      string `env:"MODELPROXY_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string `env:"MODELPROXY_LOG_FORMAT"     envDefault:"text"`
	SigningKey    string `env:"MODELPROXY_SIGNING_KEY"`
	SigningIssuer string `env:"MODELPROXY_SIGNING_ISSUER" envDefault:"modelproxy"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing environment: %w", err)
	}
	return s, nil
}

// RegistryOptions converts the status, engine and rulebase overrides into
// registry options.
func (s Settings) RegistryOptions() []Option {
	var opts []Option
	if s.Status != "" {
		opts = append(opts, WithStatus(s.Status))
	}
	if s.Engine != "" {
		opts = append(opts, WithEngine(s.Engine))
	}
	if s.Rulebase != "" {
		opts = append(opts, WithRulebase(s.Rulebase))
	}
	return opts
}
