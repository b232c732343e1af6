package aiassist

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
	"github.com/Vovarama1992/egw-aiassist/internal/logger"
)

type service struct {
	config    ConfigProvider
	languages LanguageLookup
	prefs     PreferenceLookup
	gateway   ai.Gateway
	deepl     ai.TextTranslator
	sanitizer *Sanitizer
	log       zerolog.Logger
}

// Deps are the collaborators of the service. DeepL may be nil.
type Deps struct {
	Config    ConfigProvider
	Languages LanguageLookup
	Prefs     PreferenceLookup
	Gateway   ai.Gateway
	DeepL     ai.TextTranslator
	Sanitizer *Sanitizer
	Log       zerolog.Logger
}

func NewService(d Deps) Service {
	if d.Sanitizer == nil {
		d.Sanitizer = NewSanitizer(DefaultMarkupThreshold)
	}
	return &service{
		config:    d.Config,
		languages: d.Languages,
		prefs:     d.Prefs,
		gateway:   d.Gateway,
		deepl:     d.DeepL,
		sanitizer: d.Sanitizer,
		log:       logger.Component(d.Log, "aiassist"),
	}
}

func (s *service) ProcessPrompt(ctx context.Context, in PromptRequest) (*Result, error) {
	start := time.Now()
	log := s.log.With().Str("prompt_id", in.PromptID).Int("account_id", in.AccountID).Logger()

	if strings.TrimSpace(in.PromptID) == "" {
		return nil, ai.Validation("No prompt selected.")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ai.Validation("No content to process.")
	}
	if err := checkSize(in.Content); err != nil {
		return nil, err
	}

	catalog, err := s.catalog(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	values, err := s.config.AppConfig(ctx, AppName)
	if err != nil {
		log.Error().Err(err).Msg("cannot read app config")
		return nil, ai.Configuration("The AI assistant configuration could not be read.")
	}

	req, err := Build(catalog, in.PromptID, in.Content, in.Options.IsHTML, configuredMaxTokens(values))
	if err != nil {
		return nil, err
	}

	var resp *ai.Response
	if req.IsTranslation {
		resp, err = s.translatorFor(values).Translate(ctx, req, in.Content, in.Options)
	} else {
		var cfg ai.Config
		cfg, err = chatConfig(values)
		if err == nil {
			resp, err = s.gateway.Complete(ctx, cfg, req.Messages, req.Params)
		}
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", string(ai.KindOf(err))).Dur("elapsed", time.Since(start)).Msg("prompt failed")
		return nil, err
	}

	text := s.sanitizer.Sanitize(resp.Content)

	log.Info().
		Bool("translation", req.IsTranslation).
		Int("content_bytes", len(in.Content)).
		Int("result_bytes", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("prompt processed")

	return &Result{
		Text:       text,
		Usage:      resp.Usage,
		SourceLang: resp.DetectedSourceLang,
	}, nil
}

func (s *service) Prompts(ctx context.Context, accountID int) ([]PromptTemplate, error) {
	catalog, err := s.catalog(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return catalog.List(), nil
}

func (s *service) TestConnection(ctx context.Context) error {
	values, err := s.config.AppConfig(ctx, AppName)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot read app config")
		return ai.Configuration("The AI assistant configuration could not be read.")
	}
	cfg, err := chatConfig(values)
	if err != nil {
		return err
	}
	return s.gateway.TestConnection(ctx, cfg)
}

// catalog builds the prompt catalog for one request from explicit inputs.
func (s *service) catalog(ctx context.Context, accountID int) (*Catalog, error) {
	prefs, err := s.prefs.Preferences(ctx, accountID)
	if err != nil {
		s.log.Error().Err(err).Int("account_id", accountID).Msg("cannot read preferences")
		return nil, ai.Configuration("The user preferences could not be read.")
	}
	installed, err := s.languages.InstalledLanguages(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot read installed languages")
		return nil, ai.Configuration("The installed languages could not be read.")
	}
	return BuildCatalog(prefs.UILanguage, prefs.TranslationLanguages, installed), nil
}
