// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds HTTP settings for talking to the model provider.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// APIURL is the Messages API endpoint.
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`
}

// AIConfig holds the settings for calling a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-3-5-sonnet-20240620").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for rate-limited or
	// overloaded API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// Config groups the settings the lectic CLI reads from viper.
type Config struct {
	AIConfig   `yaml:",inline" mapstructure:",squash"`
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DataDir holds the usage ledger (usage.db).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// RecordUsage controls whether token usage is written to the ledger.
	RecordUsage bool `json:"usage" yaml:"usage" mapstructure:"usage"`
}
