package aiassist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
	"github.com/Vovarama1992/egw-aiassist/internal/logger"
)

// AccountHeader carries the groupware account id of the calling user. It is not
// authenticated here and must be set by a trusted proxy in front of the service.
const AccountHeader = "X-EGW-Account-Id"

// maxBodyBytes bounds the process_prompt body; JSON escaping can grow content.
const maxBodyBytes = 4 * MaxContentBytes

type Handler struct {
	svc Service
	log zerolog.Logger
}

func NewHandler(svc Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger.Component(log, "http")}
}

// Envelope is the answer of every action.
type Envelope struct {
	Success    bool            `json:"success"`
	Result     string          `json:"result,omitempty"`
	Usage      json.RawMessage `json:"usage,omitempty"`
	SourceLang string          `json:"source_lang,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// HandleProcessPrompt serves the process_prompt action of the editor widget.
func (h *Handler) HandleProcessPrompt(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PromptID json.RawMessage `json:"prompt_id"`
		Content  json.RawMessage `json:"content"`
		Options  *Options        `json:"options"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusOK, Envelope{Error: ai.UserMessage(bodyTooLarge(tooLarge.Limit))})
			return
		}
		h.log.Debug().Err(err).Msg("invalid process_prompt payload")
		writeJSON(w, http.StatusBadRequest, Envelope{Error: "Invalid request."})
		return
	}

	promptID, ok := jsonString(payload.PromptID)
	if !ok {
		writeJSON(w, http.StatusOK, Envelope{Error: "Missing or invalid prompt id."})
		return
	}
	content, ok := jsonString(payload.Content)
	if !ok {
		writeJSON(w, http.StatusOK, Envelope{Error: "Missing or invalid content."})
		return
	}

	in := PromptRequest{
		AccountID: accountID(r),
		PromptID:  promptID,
		Content:   content,
	}
	if payload.Options != nil {
		in.Options = *payload.Options
	}

	res, err := h.svc.ProcessPrompt(r.Context(), in)
	if err != nil {
		writeJSON(w, http.StatusOK, Envelope{Error: ai.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Result:     res.Text,
		Usage:      res.Usage,
		SourceLang: res.SourceLang,
	})
}

// HandlePrompts lists the prompt menu of the calling user.
func (h *Handler) HandlePrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.svc.Prompts(r.Context(), accountID(r))
	if err != nil {
		writeJSON(w, http.StatusOK, Envelope{Error: ai.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool             `json:"success"`
		Prompts []PromptTemplate `json:"prompts"`
	}{Success: true, Prompts: prompts})
}

// HandleTestConnection checks the configured endpoint and model.
func (h *Handler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.TestConnection(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, Envelope{Error: ai.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Result: "Connection successful."})
}

func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// accountID trusts AccountHeader as is; see its comment.
func accountID(r *http.Request) int {
	id, err := strconv.Atoi(r.Header.Get(AccountHeader))
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
