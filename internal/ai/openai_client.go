package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/egw-aiassist/internal/logger"
)

// FallbackContent is returned when the provider answers without any text.
const FallbackContent = "No response generated."

// OpenAIClient calls OpenAI compatible chat-completion endpoints.
type OpenAIClient struct {
	hc   *http.Client
	http *resty.Client
	log  zerolog.Logger
}

func NewOpenAIClient(log zerolog.Logger) *OpenAIClient {
	hc := newHTTPClient()
	return &OpenAIClient{
		hc:   hc,
		http: newRestyClient(hc),
		log:  logger.Component(log, "ai"),
	}
}

type completionChoice struct {
	Message      *openai.ChatCompletionMessage `json:"message"`
	FinishReason openai.FinishReason           `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
	Output  []struct {
		FinishReason openai.FinishReason `json:"finish_reason"`
	} `json:"output"`
	Usage json.RawMessage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (r *completionResponse) finishReason() openai.FinishReason {
	if len(r.Choices) > 0 && r.Choices[0].FinishReason != "" {
		return r.Choices[0].FinishReason
	}
	if len(r.Output) > 0 {
		return r.Output[0].FinishReason
	}
	return ""
}

// Complete sends one chat-completion request and normalizes the answer.
func (c *OpenAIClient) Complete(ctx context.Context, cfg Config, messages []Message, params Params) (resp *Response, err error) {
	start := time.Now()
	defer func() { observe(cfg.Provider, "chat", start, err) }()

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	target := endpoint(cfg.APIURL, "/chat/completions")
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(sanitizeHeaderValue(cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetBody(openai.ChatCompletionRequest{
			Model:       cfg.Model,
			Messages:    msgs,
			Temperature: params.Temperature,
			MaxTokens:   params.MaxTokens,
		}).
		Post(target)
	if err != nil {
		c.log.Error().Err(err).Str("url", target).Str("model", cfg.Model).Dur("elapsed", time.Since(start)).Msg("chat request failed")
		return nil, NewError(KindTransport, MsgTransport, err)
	}

	if res.StatusCode() != http.StatusOK {
		c.log.Warn().
			Int("status", res.StatusCode()).
			Str("url", target).
			Str("body", abbreviate(res.String(), 500)).
			Msg("chat endpoint returned error status")
		return nil, HTTPError(res.StatusCode(), fmt.Errorf("chat completion: %s", res.Status()))
	}

	ct := res.Header().Get("Content-Type")
	if !strings.Contains(strings.ToLower(ct), "json") {
		c.log.Warn().Str("content_type", ct).Str("url", target).Msg("chat endpoint returned non-JSON content")
		return nil, NewError(KindInvalidResponse, MsgInvalidResponse, fmt.Errorf("unexpected content type %q", ct))
	}

	var body completionResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		c.log.Warn().Err(err).Str("body", abbreviate(res.String(), 500)).Msg("cannot decode chat response")
		return nil, NewError(KindInvalidResponse, MsgInvalidResponse, err)
	}

	if body.Error != nil {
		c.log.Warn().Str("provider_error", body.Error.Message).Str("type", body.Error.Type).Msg("provider returned error object")
		return nil, NewError(KindProviderRefused, MsgRefusedGeneric, errors.New(body.Error.Message))
	}

	reason := body.finishReason()
	if st := StatusFromFinishReason(reason); !st.OK {
		c.log.Warn().Str("finish_reason", string(reason)).Str("model", cfg.Model).Msg("provider did not finish normally")
		return nil, NewError(KindProviderRefused, st.Message, fmt.Errorf("finish_reason %q", reason))
	}

	if len(body.Choices) == 0 || body.Choices[0].Message == nil {
		c.log.Warn().Str("body", abbreviate(res.String(), 500)).Msg("chat response without choices[0].message")
		return nil, NewError(KindInvalidResponse, MsgInvalidResponse, errors.New("missing choices[0].message"))
	}

	content := body.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		content = FallbackContent
	}

	var usage json.RawMessage
	if len(body.Usage) > 0 && string(body.Usage) != "null" {
		usage = body.Usage
	}

	c.log.Debug().
		Str("model", cfg.Model).
		Int("content_bytes", len(content)).
		Dur("elapsed", time.Since(start)).
		Msg("chat completion done")

	return &Response{Content: content, Usage: usage}, nil
}

// TestConnection lists the endpoint's models and checks that cfg.Model is served.
func (c *OpenAIClient) TestConnection(ctx context.Context, cfg Config) (err error) {
	start := time.Now()
	defer func() { observe(cfg.Provider, "models", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	oc := openai.DefaultConfig(sanitizeHeaderValue(cfg.APIKey))
	oc.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	oc.HTTPClient = c.hc

	list, err := openai.NewClientWithConfig(oc).ListModels(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("url", oc.BaseURL).Msg("models request failed")
		return modelsError(err)
	}

	for _, m := range list.Models {
		if m.ID == cfg.Model {
			return nil
		}
	}

	c.log.Warn().Str("model", cfg.Model).Int("models", len(list.Models)).Msg("configured model not offered by endpoint")
	return NewError(KindConfiguration,
		fmt.Sprintf("The model %q is not available at the configured endpoint. Please contact your administrator.", cfg.Model),
		nil)
}

func modelsError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return HTTPError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return HTTPError(reqErr.HTTPStatusCode, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTransport, MsgTransport, err)
	}
	return NewError(KindInvalidResponse, MsgInvalidResponse, err)
}
