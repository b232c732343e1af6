package aiassist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
)

type fakeGateway struct {
	calls    int
	cfg      ai.Config
	messages []ai.Message
	params   ai.Params
	resp     *ai.Response
	err      error
	testErr  error
}

func (f *fakeGateway) Complete(_ context.Context, cfg ai.Config, messages []ai.Message, params ai.Params) (*ai.Response, error) {
	f.calls++
	f.cfg, f.messages, f.params = cfg, messages, params
	return f.resp, f.err
}

func (f *fakeGateway) TestConnection(_ context.Context, cfg ai.Config) error {
	f.cfg = cfg
	return f.testErr
}

type fakeDeepL struct {
	calls int
	cfg   ai.DeepLConfig
	req   ai.TranslateRequest
	resp  *ai.Response
}

func (f *fakeDeepL) Translate(_ context.Context, cfg ai.DeepLConfig, req ai.TranslateRequest) (*ai.Response, error) {
	f.calls++
	f.cfg, f.req = cfg, req
	return f.resp, nil
}

type failingSource struct{ *EnvSource }

func (failingSource) AppConfig(context.Context, string) (map[string]string, error) {
	return nil, errors.New("connection refused: postgres://secret@db")
}

func chatValues() map[string]string {
	return map[string]string{
		"ai_model":   "openai:gpt-4o-mini",
		"ai_api_key": "sk-test",
	}
}

func newTestService(values map[string]string, gw ai.Gateway, deepl ai.TextTranslator) Service {
	src := NewEnvSource(values, "en", nil, []string{"en", "de", "fr", "it"})
	return NewService(Deps{
		Config:    src,
		Languages: src,
		Prefs:     src,
		Gateway:   gw,
		DeepL:     deepl,
		Log:       zerolog.Nop(),
	})
}

func TestProcessPromptChat(t *testing.T) {
	gw := &fakeGateway{resp: &ai.Response{Content: "Short <b>summary</b>", Usage: json.RawMessage(`{"total_tokens":7}`)}}
	svc := newTestService(chatValues(), gw, nil)

	res, err := svc.ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.summarize", Content: "Long text"})
	require.NoError(t, err)

	assert.Equal(t, "Short summary", res.Text)
	assert.JSONEq(t, `{"total_tokens":7}`, string(res.Usage))
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "gpt-4o-mini", gw.cfg.Model)
	assert.Equal(t, "openai", gw.cfg.Provider)
	assert.Equal(t, "https://api.openai.com/v1", gw.cfg.APIURL)
	assert.Equal(t, ParamsFor(false, 0), gw.params)
	assert.Contains(t, gw.messages[1].Content, "<content>Long text</content>")
}

func TestProcessPromptUsesConfiguredMaxTokens(t *testing.T) {
	values := chatValues()
	values["ai_max_tokens"] = "1500"
	gw := &fakeGateway{resp: &ai.Response{Content: "ok"}}

	_, err := newTestService(values, gw, nil).ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.formal", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1500, gw.params.MaxTokens)
}

func TestProcessPromptValidation(t *testing.T) {
	gw := &fakeGateway{resp: &ai.Response{Content: "ok"}}
	svc := newTestService(chatValues(), gw, nil)

	cases := []PromptRequest{
		{PromptID: "", Content: "x"},
		{PromptID: "aiassist.summarize", Content: "  "},
		{PromptID: "aiassist.summarize", Content: strings.Repeat("x", MaxContentBytes+1)},
		{PromptID: "aiassist.nope", Content: "x"},
	}
	for _, in := range cases {
		_, err := svc.ProcessPrompt(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, ai.KindValidation, ai.KindOf(err))
	}
	assert.Zero(t, gw.calls)
}

func TestProcessPromptConfigurationErrors(t *testing.T) {
	gw := &fakeGateway{resp: &ai.Response{Content: "ok"}}

	_, err := newTestService(map[string]string{"ai_model": "gpt-4o"}, gw, nil).
		ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.summarize", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, ai.KindConfiguration, ai.KindOf(err))
	assert.Contains(t, ai.UserMessage(err), "administrator")
	assert.Zero(t, gw.calls)

	src := NewEnvSource(nil, "en", nil, []string{"en"})
	svc := NewService(Deps{Config: failingSource{src}, Languages: src, Prefs: src, Gateway: gw, Log: zerolog.Nop()})
	_, err = svc.ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.summarize", Content: "x"})
	require.Error(t, err)
	assert.NotContains(t, ai.UserMessage(err), "secret")
}

func TestProcessPromptTranslationViaChat(t *testing.T) {
	gw := &fakeGateway{resp: &ai.Response{Content: "Bonjour"}}
	svc := newTestService(chatValues(), gw, nil)

	res, err := svc.ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.translate-fr", Content: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "Bonjour", res.Text)
	assert.Equal(t, ParamsFor(true, 0), gw.params)
	assert.Equal(t, translationSystemPrompt, gw.messages[0].Content)
}

func TestProcessPromptTranslationViaDeepL(t *testing.T) {
	values := map[string]string{"deepl_api_key": "key:fx"}
	gw := &fakeGateway{}
	deepl := &fakeDeepL{resp: &ai.Response{Content: "Hallo Welt", DetectedSourceLang: "en"}}
	svc := newTestService(values, gw, deepl)

	res, err := svc.ProcessPrompt(context.Background(), PromptRequest{
		PromptID: "aiassist.translate-de",
		Content:  "Hello world",
		Options:  Options{SourceLang: "en"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hallo Welt", res.Text)
	assert.Equal(t, "en", res.SourceLang)
	assert.Zero(t, gw.calls)
	assert.Equal(t, 1, deepl.calls)
	assert.Equal(t, ai.TranslateRequest{Text: "Hello world", SourceLang: "en", TargetLang: "de"}, deepl.req)
	assert.Equal(t, "key:fx", deepl.cfg.APIKey)
}

func TestProcessPromptNonTranslationIgnoresDeepL(t *testing.T) {
	values := chatValues()
	values["deepl_api_key"] = "key"
	gw := &fakeGateway{resp: &ai.Response{Content: "ok"}}
	deepl := &fakeDeepL{}

	_, err := newTestService(values, gw, deepl).ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.grammar", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls)
	assert.Zero(t, deepl.calls)
}

func TestProcessPromptSanitizesOutput(t *testing.T) {
	gw := &fakeGateway{resp: &ai.Response{Content: `<p>a</p><p>b</p><img src=x onerror="alert(1)"><script>alert(2)</script>`}}

	res, err := newTestService(chatValues(), gw, nil).ProcessPrompt(context.Background(), PromptRequest{
		PromptID: "aiassist.formal", Content: "<p>a</p>", Options: Options{IsHTML: true},
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Text, "onerror")
	assert.NotContains(t, res.Text, "script")
	assert.Contains(t, res.Text, "<p>a</p>")
}

func TestProcessPromptPassesGatewayErrors(t *testing.T) {
	gw := &fakeGateway{err: ai.HTTPError(429, errors.New("raw body"))}

	_, err := newTestService(chatValues(), gw, nil).ProcessPrompt(context.Background(), PromptRequest{PromptID: "aiassist.summarize", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, ai.MsgRateLimited, ai.UserMessage(err))
}

func TestPromptsList(t *testing.T) {
	src := NewEnvSource(nil, "de", []string{"fr"}, []string{"en", "de", "fr"})
	svc := NewService(Deps{Config: src, Languages: src, Prefs: src, Gateway: &fakeGateway{}, Log: zerolog.Nop()})

	prompts, err := svc.Prompts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, prompts, len(staticPrompts)+2)
	assert.Equal(t, "aiassist.translate-fr", prompts[len(staticPrompts)].ID)
	assert.Equal(t, "aiassist.translate-de", prompts[len(staticPrompts)+1].ID)
}

func TestServiceTestConnection(t *testing.T) {
	gw := &fakeGateway{}
	require.NoError(t, newTestService(chatValues(), gw, nil).TestConnection(context.Background()))
	assert.Equal(t, "gpt-4o-mini", gw.cfg.Model)

	err := newTestService(map[string]string{}, gw, nil).TestConnection(context.Background())
	assert.Equal(t, ai.KindConfiguration, ai.KindOf(err))
}

type failingPrefs struct{ *EnvSource }

func (failingPrefs) Preferences(context.Context, int) (Preferences, error) {
	return Preferences{}, errors.New("pq: relation egw_preferences does not exist")
}

func TestPromptsPreferenceFailure(t *testing.T) {
	src := NewEnvSource(chatValues(), "en", nil, []string{"en"})
	svc := NewService(Deps{Config: src, Languages: src, Prefs: failingPrefs{src}, Gateway: &fakeGateway{}, Log: zerolog.Nop()})

	_, err := svc.Prompts(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, ai.KindConfiguration, ai.KindOf(err))
	assert.NotContains(t, ai.UserMessage(err), "egw_preferences")
}

type countingLanguages struct {
	*EnvSource
	calls int
}

func (c *countingLanguages) InstalledLanguages(ctx context.Context) (map[string]string, error) {
	c.calls++
	return c.EnvSource.InstalledLanguages(ctx)
}

func TestCatalogReadsLanguagesAfterPreferences(t *testing.T) {
	src := NewEnvSource(chatValues(), "en", nil, []string{"en", "fr"})
	langs := &countingLanguages{EnvSource: src}

	svc := NewService(Deps{Config: src, Languages: langs, Prefs: failingPrefs{src}, Gateway: &fakeGateway{}, Log: zerolog.Nop()})
	_, err := svc.Prompts(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, langs.calls)

	svc = NewService(Deps{Config: src, Languages: langs, Prefs: src, Gateway: &fakeGateway{}, Log: zerolog.Nop()})
	prompts, err := svc.Prompts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, langs.calls)
	assert.Len(t, prompts, len(staticPrompts)+2)
}
