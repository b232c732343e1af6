package ai

import (
	"errors"
	"net/http"
)

// Kind categorizes failures. Only Validation and Configuration messages carry
// request specific text; every other kind uses one of the fixed messages below.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConfiguration   Kind = "configuration"
	KindTransport       Kind = "transport"
	KindHTTP            Kind = "http"
	KindInvalidResponse Kind = "invalid_response"
	KindProviderRefused Kind = "provider_refused"
)

const (
	MsgTransport       = "Could not connect to the AI service. Please try again later."
	MsgUnauthorized    = "Authentication with the AI service failed. Please check the API key."
	MsgNotFound        = "The AI service endpoint was not found. Please check the API URL."
	MsgRateLimited     = "Rate limit exceeded. Please wait a moment and try again."
	MsgUnavailable     = "The AI service is temporarily unavailable. Please try again later."
	MsgHTTPGeneric     = "The AI service returned an error. Please try again."
	MsgInvalidResponse = "Received an invalid response from the AI service."
	MsgTooLong         = "The response was too long and got cut off. Please try again with shorter content."
	MsgRestricted      = "The request was blocked by the provider's content policy (restricted content)."
	MsgNoFinalAnswer   = "The AI did not produce a final answer. Please try again."
	MsgRefusedGeneric  = "The AI could not complete the request. Please try again."
	MsgUnexpected      = "An unexpected error occurred. Please try again."
)

// Error is returned by every component of the pipeline. Message is safe to show
// to the end user, Err holds the internal cause for the logs.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message + " Please contact your administrator."}
}

// HTTPError maps a non-200 status of the chat endpoint to a user message.
func HTTPError(status int, cause error) *Error {
	msg := MsgHTTPGeneric
	switch {
	case status == http.StatusUnauthorized:
		msg = MsgUnauthorized
	case status == http.StatusNotFound:
		msg = MsgNotFound
	case status == http.StatusTooManyRequests:
		msg = MsgRateLimited
	case status >= 500:
		msg = MsgUnavailable
	}
	return &Error{Kind: KindHTTP, Status: status, Message: msg, Err: cause}
}

// KindOf returns the kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage returns the text that may be shown to the caller for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgUnexpected
}
