package aiassist

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// EnvSource serves configuration, languages and preferences from process
// settings when no groupware database is available. Every account shares the
// same preferences.
type EnvSource struct {
	values    map[string]string
	installed map[string]string
	prefs     Preferences
}

func NewEnvSource(values map[string]string, uiLanguage string, translationLanguages, installed []string) *EnvSource {
	names := make(map[string]string, len(installed))
	for _, code := range installed {
		code = normalizeLang(code)
		if code == "" {
			continue
		}
		names[code] = languageName(code)
	}
	return &EnvSource{
		values:    values,
		installed: names,
		prefs: Preferences{
			UILanguage:           normalizeLang(uiLanguage),
			TranslationLanguages: translationLanguages,
		},
	}
}

func (e *EnvSource) AppConfig(_ context.Context, _ string) (map[string]string, error) {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out, nil
}

func (e *EnvSource) InstalledLanguages(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(e.installed))
	for k, v := range e.installed {
		out[k] = v
	}
	return out, nil
}

func (e *EnvSource) Preferences(_ context.Context, _ int) (Preferences, error) {
	p := e.prefs
	p.TranslationLanguages = append([]string(nil), e.prefs.TranslationLanguages...)
	return p, nil
}

// languageName returns the English name of a language code, or the code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
