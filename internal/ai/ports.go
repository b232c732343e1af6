package ai

import (
	"context"
	"encoding/json"
	"time"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one entry of the chat payload.
type Message struct {
	Role    string
	Content string
}

// Config addresses an OpenAI compatible chat-completion endpoint.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	Provider  string
	MaxTokens int
}

// DeepLConfig holds the credentials of the dedicated translation service.
type DeepLConfig struct {
	APIKey string
	APIURL string
}

// Params are the sampling and timeout settings of a single call.
type Params struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Response is the normalized result of either provider.
type Response struct {
	Content            string
	Usage              json.RawMessage
	DetectedSourceLang string
}

// TranslateRequest is the input of the translation service.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	IsHTML     bool
}

// Gateway talks to the chat-completion endpoint.
type Gateway interface {
	Complete(ctx context.Context, cfg Config, messages []Message, params Params) (*Response, error)
	TestConnection(ctx context.Context, cfg Config) error
}

// TextTranslator talks to a translate-text service.
type TextTranslator interface {
	Translate(ctx context.Context, cfg DeepLConfig, req TranslateRequest) (*Response, error)
}
