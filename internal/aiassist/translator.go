package aiassist

import (
	"context"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
)

// Translator runs a translation task. The chat implementation uses the built
// prompt, the DeepL one only the raw content and the target language.
type Translator interface {
	Translate(ctx context.Context, req *Request, content string, opts Options) (*ai.Response, error)
}

type chatTranslator struct {
	gateway ai.Gateway
	values  map[string]string
}

func (t *chatTranslator) Translate(ctx context.Context, req *Request, _ string, _ Options) (*ai.Response, error) {
	cfg, err := chatConfig(t.values)
	if err != nil {
		return nil, err
	}
	return t.gateway.Complete(ctx, cfg, req.Messages, req.Params)
}

type deepLTranslator struct {
	client ai.TextTranslator
	cfg    ai.DeepLConfig
}

func (t *deepLTranslator) Translate(ctx context.Context, req *Request, content string, opts Options) (*ai.Response, error) {
	return t.client.Translate(ctx, t.cfg, ai.TranslateRequest{
		Text:       content,
		SourceLang: opts.SourceLang,
		TargetLang: req.TargetLang,
		IsHTML:     opts.IsHTML,
	})
}

// translatorFor picks DeepL when its credentials are configured.
func (s *service) translatorFor(values map[string]string) Translator {
	if cfg, ok := deepLConfig(values); ok && s.deepl != nil {
		return &deepLTranslator{client: s.deepl, cfg: cfg}
	}
	return &chatTranslator{gateway: s.gateway, values: values}
}
