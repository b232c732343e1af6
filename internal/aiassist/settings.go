package aiassist

import (
	"strconv"
	"strings"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
)

// customModel is the ai_model value that selects ai_custom_model.
const customModel = "custom"

// providerURLs are used when ai_api_url is left empty.
var providerURLs = map[string]string{
	"openai":    "https://api.openai.com/v1",
	"deepseek":  "https://api.deepseek.com/v1",
	"mistral":   "https://api.mistral.ai/v1",
	"anthropic": "https://api.anthropic.com/v1",
	"google":    "https://generativelanguage.googleapis.com/v1beta/openai",
	"ibm":       "https://us-south.ml.cloud.ibm.com/ml/v1",
}

// chatConfig resolves the chat endpoint settings from the app config values.
func chatConfig(values map[string]string) (ai.Config, error) {
	model := strings.TrimSpace(values["ai_model"])
	if model == "" || model == customModel {
		model = strings.TrimSpace(values["ai_custom_model"])
	}

	var provider string
	if i := strings.IndexByte(model, ':'); i > 0 {
		if _, known := providerURLs[strings.ToLower(model[:i])]; known {
			provider = strings.ToLower(model[:i])
			model = model[i+1:]
		}
	}

	apiURL := strings.TrimSpace(values["ai_api_url"])
	if apiURL == "" {
		apiURL = providerURLs[provider]
	}

	cfg := ai.Config{
		APIURL:    apiURL,
		APIKey:    strings.TrimSpace(values["ai_api_key"]),
		Model:     model,
		Provider:  provider,
		MaxTokens: configuredMaxTokens(values),
	}

	switch {
	case cfg.APIKey == "":
		return cfg, ai.Configuration("The AI API key is not configured.")
	case cfg.APIURL == "":
		return cfg, ai.Configuration("The AI API URL is not configured.")
	case cfg.Model == "":
		return cfg, ai.Configuration("No AI model is configured.")
	}
	return cfg, nil
}

// configuredMaxTokens returns the configured token budget, 0 when unset or invalid.
func configuredMaxTokens(values map[string]string) int {
	n, err := strconv.Atoi(strings.TrimSpace(values["ai_max_tokens"]))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// deepLConfig returns the translation service settings and whether they are usable.
func deepLConfig(values map[string]string) (ai.DeepLConfig, bool) {
	cfg := ai.DeepLConfig{
		APIKey: strings.TrimSpace(values["deepl_api_key"]),
		APIURL: strings.TrimSpace(values["deepl_api_url"]),
	}
	return cfg, cfg.APIKey != ""
}
