package aiassist

import (
	"context"
	"encoding/json"
)

// AppName is the config/preference namespace of the assistant.
const AppName = "aiassist"

// ConfigProvider is the read-only groupware configuration store.
type ConfigProvider interface {
	AppConfig(ctx context.Context, app string) (map[string]string, error)
}

// LanguageLookup lists the languages installed in the groupware, code to display name.
type LanguageLookup interface {
	InstalledLanguages(ctx context.Context) (map[string]string, error)
}

// PreferenceLookup reads a user's language preferences.
type PreferenceLookup interface {
	Preferences(ctx context.Context, accountID int) (Preferences, error)
}

// Repo is the read-only groupware store.
type Repo interface {
	ConfigProvider
	LanguageLookup
	PreferenceLookup
}

type Preferences struct {
	UILanguage           string
	TranslationLanguages []string
}

// Options are the per-call flags sent by the editor widget.
type Options struct {
	IsHTML     bool   `json:"is_html"`
	SourceLang string `json:"source_lang,omitempty"`
}

type PromptRequest struct {
	AccountID int
	PromptID  string
	Content   string
	Options   Options
}

type Result struct {
	Text       string
	Usage      json.RawMessage
	SourceLang string
}

// Service is the process_prompt pipeline.
type Service interface {
	ProcessPrompt(ctx context.Context, req PromptRequest) (*Result, error)
	Prompts(ctx context.Context, accountID int) ([]PromptTemplate, error)
	TestConnection(ctx context.Context) error
}
