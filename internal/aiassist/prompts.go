package aiassist

import (
	"fmt"
	"html"
	"strings"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
)

const (
	promptPrefix      = "aiassist."
	TranslatePrefix   = promptPrefix + "translate-"
	translateTemplate = "Translate the text into %s. Keep meaning, tone and formatting. " +
		"Output only the translation, without explanations, quotes or notes."
)

// defaultTranslationLanguages are offered when the user saved no preference.
var defaultTranslationLanguages = []string{"en", "de", "fr", "it"}

// PromptTemplate is one entry of the fixed prompt menu.
type PromptTemplate struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Instruction string `json:"-"`
}

var staticPrompts = []PromptTemplate{
	{
		ID:          promptPrefix + "summarize",
		Label:       "Summarize",
		Instruction: "Summarize the text. Keep the key facts, decisions and action items. Use the language of the text.",
	},
	{
		ID:          promptPrefix + "formal",
		Label:       "Make more formal",
		Instruction: "Rewrite the text in a formal, professional business tone. Keep the meaning and the language of the text.",
	},
	{
		ID:          promptPrefix + "casual",
		Label:       "Make more casual",
		Instruction: "Rewrite the text in a friendly, casual tone. Keep the meaning and the language of the text.",
	},
	{
		ID:          promptPrefix + "grammar",
		Label:       "Fix grammar and spelling",
		Instruction: "Correct grammar, spelling and punctuation of the text. Do not change its meaning, tone or language.",
	},
	{
		ID:          promptPrefix + "concise",
		Label:       "Make more concise",
		Instruction: "Make the text shorter and more concise without losing important information. Keep the language of the text.",
	},
	{
		ID:          promptPrefix + "generate_reply",
		Label:       "Generate reply",
		Instruction: "Write a polite, helpful reply to the message. Answer in the language of the message and address its questions.",
	},
	{
		ID:          promptPrefix + "meeting_followup",
		Label:       "Meeting follow-up",
		Instruction: "Write a meeting follow-up email based on the notes: short recap, decisions, action items with owners, next steps.",
	},
	{
		ID:          promptPrefix + "thank_you",
		Label:       "Thank-you note",
		Instruction: "Write a short, sincere thank-you note that refers to the content. Use the language of the text.",
	},
	{
		ID:          promptPrefix + "generate_subject",
		Label:       "Generate subject line",
		Instruction: "Write one concise subject line for the text, at most 10 words, without quotes or a trailing period.",
	},
}

// Catalog maps prompt ids to templates. It is built per request and not shared.
type Catalog struct {
	order     []string
	templates map[string]PromptTemplate
}

// BuildCatalog derives the prompt catalog from the user's languages. Codes that
// are not installed are dropped without error.
func BuildCatalog(uiLanguage string, preferred []string, installed map[string]string) *Catalog {
	c := &Catalog{templates: make(map[string]PromptTemplate, len(staticPrompts)+8)}
	for _, p := range staticPrompts {
		c.add(p)
	}

	var codes []string
	if len(preferred) > 0 {
		codes = append(codes, preferred...)
		codes = append(codes, uiLanguage)
	} else {
		codes = append(codes, uiLanguage)
		codes = append(codes, defaultTranslationLanguages...)
	}

	for _, code := range codes {
		code = normalizeLang(code)
		name, ok := installed[code]
		if !ok {
			continue
		}
		if name == "" {
			name = code
		}
		c.add(PromptTemplate{
			ID:          TranslatePrefix + code,
			Label:       "Translate to " + name,
			Instruction: fmt.Sprintf(translateTemplate, name),
		})
	}

	return c
}

func (c *Catalog) add(p PromptTemplate) {
	if _, ok := c.templates[p.ID]; ok {
		return
	}
	c.order = append(c.order, p.ID)
	c.templates[p.ID] = p
}

// Lookup returns the template for id. The id is HTML-escaped before it is put
// into the error message.
func (c *Catalog) Lookup(id string) (PromptTemplate, error) {
	p, ok := c.templates[id]
	if !ok {
		return PromptTemplate{}, ai.Validation("Unknown prompt: " + html.EscapeString(id))
	}
	return p, nil
}

// List returns the templates in menu order.
func (c *Catalog) List() []PromptTemplate {
	out := make([]PromptTemplate, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

func normalizeLang(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
