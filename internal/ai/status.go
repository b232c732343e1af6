package ai

import openai "github.com/sashabaranov/go-openai"

// Status tells whether a decoded provider answer counts as success.
type Status struct {
	OK      bool
	Message string
}

// StatusFromFinishReason maps a provider finish reason. An absent reason is success.
func StatusFromFinishReason(reason openai.FinishReason) Status {
	switch reason {
	case "", openai.FinishReasonStop:
		return Status{OK: true}
	case openai.FinishReasonLength:
		return Status{Message: MsgTooLong}
	case openai.FinishReasonContentFilter:
		return Status{Message: MsgRestricted}
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return Status{Message: MsgNoFinalAnswer}
	default:
		return Status{Message: MsgRefusedGeneric}
	}
}
