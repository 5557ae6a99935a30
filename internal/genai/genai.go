// Package genai builds the OpenAI-compatible chat client shared by question
// extraction and the assistant.
package genai

import (
	openai "github.com/sashabaranov/go-openai"
)

// Config carries the AI capability flag and client settings
type Config struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string
}

// NewClient returns nil when the capability is disabled
func NewClient(cfg Config) *openai.Client {
	if !cfg.Enabled {
		return nil
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config)
}
