package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Vovarama1992/egw-aiassist/internal/logger"
)

const (
	deepLFreeURL = "https://api-free.deepl.com"
	deepLProURL  = "https://api.deepl.com"

	// deepLQuotaExceeded is DeepL's non-standard "quota exceeded" status.
	deepLQuotaExceeded = 456

	msgDeepLUnauthorized = "Authentication with the translation service failed. Please check the DeepL API key."
	msgDeepLQuota        = "The translation quota has been exceeded. Please contact your administrator."
)

// DeepLClient implements TextTranslator against the DeepL v2 API.
type DeepLClient struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewDeepLClient(log zerolog.Logger) *DeepLClient {
	return &DeepLClient{
		http: newRestyClient(newHTTPClient()),
		log:  logger.Component(log, "deepl"),
	}
}

type deepLRequest struct {
	Text               []string `json:"text"`
	TargetLang         string   `json:"target_lang"`
	SourceLang         string   `json:"source_lang,omitempty"`
	TagHandling        string   `json:"tag_handling"`
	PreserveFormatting bool     `json:"preserve_formatting"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate sends text to DeepL. Plain text is wrapped into paragraph markup
// first because DeepL drops bare newlines in HTML mode.
func (c *DeepLClient) Translate(ctx context.Context, cfg DeepLConfig, req TranslateRequest) (resp *Response, err error) {
	start := time.Now()
	defer func() { observe("deepl", "translate", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, TranslationTimeout)
	defer cancel()

	text := req.Text
	if !req.IsHTML {
		text = wrapPlainText(text)
	}

	body := deepLRequest{
		Text:               []string{text},
		TargetLang:         DeepLTargetLang(req.TargetLang),
		TagHandling:        "html",
		PreserveFormatting: true,
	}
	if req.SourceLang != "" {
		body.SourceLang = DeepLSourceLang(req.SourceLang)
	}

	target := deepLEndpoint(cfg)
	var out deepLResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+sanitizeHeaderValue(cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(target)
	if err != nil {
		c.log.Error().Err(err).Str("url", target).Msg("translate request failed")
		return nil, NewError(KindTransport, MsgTransport, err)
	}

	if res.StatusCode() != http.StatusOK {
		c.log.Warn().
			Int("status", res.StatusCode()).
			Str("url", target).
			Str("body", abbreviate(res.String(), 500)).
			Msg("translate endpoint returned error status")
		return nil, deepLHTTPError(res.StatusCode(), fmt.Errorf("deepl translate: %s", res.Status()))
	}

	if err := json.Unmarshal(res.Body(), &out); err != nil {
		c.log.Warn().Err(err).Str("body", abbreviate(res.String(), 500)).Msg("cannot decode translate response")
		return nil, NewError(KindInvalidResponse, MsgInvalidResponse, err)
	}
	if len(out.Translations) == 0 {
		return nil, NewError(KindInvalidResponse, MsgInvalidResponse, errors.New("no translations returned"))
	}

	translated := out.Translations[0].Text
	if !req.IsHTML {
		translated = unwrapPlainText(translated)
	}

	c.log.Debug().
		Str("target_lang", body.TargetLang).
		Str("detected", out.Translations[0].DetectedSourceLanguage).
		Dur("elapsed", time.Since(start)).
		Msg("translation done")

	return &Response{
		Content:            translated,
		DetectedSourceLang: strings.ToLower(out.Translations[0].DetectedSourceLanguage),
	}, nil
}

func deepLHTTPError(status int, cause error) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindHTTP, Status: status, Message: msgDeepLUnauthorized, Err: cause}
	case deepLQuotaExceeded:
		return &Error{Kind: KindHTTP, Status: status, Message: msgDeepLQuota, Err: cause}
	}
	return HTTPError(status, cause)
}

func deepLEndpoint(cfg DeepLConfig) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		base = deepLProURL
		if strings.HasSuffix(strings.TrimSpace(cfg.APIKey), ":fx") {
			base = deepLFreeURL
		}
	}
	base = strings.TrimSuffix(base, "/v2/translate")
	base = strings.TrimSuffix(base, "/v2")
	return base + "/v2/translate"
}

// DeepLTargetLang maps a groupware language code to a DeepL target code.
// DeepL rejects the generic EN and PT as targets.
func DeepLTargetLang(code string) string {
	c := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	switch c {
	case "en":
		return "EN-GB"
	case "pt":
		return "PT-PT"
	case "zh", "zh-cn", "zh-hans":
		return "ZH-HANS"
	case "zh-tw", "zh-hant":
		return "ZH-HANT"
	case "no", "nb":
		return "NB"
	}
	return strings.ToUpper(c)
}

// DeepLSourceLang reduces a language code to the base code DeepL accepts as source.
func DeepLSourceLang(code string) string {
	c := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if i := strings.IndexByte(c, '-'); i >= 0 {
		c = c[:i]
	}
	if c == "no" {
		c = "nb"
	}
	return strings.ToUpper(c)
}

var (
	brTag     = regexp.MustCompile(`(?i)<br\s*/?>`)
	paraBreak = regexp.MustCompile(`(?i)</p>\s*<p(\s[^>]*)?>`)
	paraTag   = regexp.MustCompile(`(?i)</?p(\s[^>]*)?>`)
	newlines  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

func wrapPlainText(s string) string {
	paras := strings.Split(newlines.Replace(s), "\n\n")
	var b strings.Builder
	for _, p := range paras {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(p), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

func unwrapPlainText(s string) string {
	s = paraBreak.ReplaceAllString(s, "\n\n")
	s = paraTag.ReplaceAllString(s, "")
	s = brTag.ReplaceAllString(s, "\n")
	return html.UnescapeString(s)
}
