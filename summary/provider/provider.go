package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ID names one of the supported LLM providers.
type ID string

const (
	Gemini   ID = "gemini"
	DeepSeek ID = "deepseek"
)

// IDs lists every supported provider.
var IDs = []ID{Gemini, DeepSeek}

// ParseID accepts a provider name case-insensitively.
func ParseID(s string) (ID, error) {
	switch ID(strings.ToLower(strings.TrimSpace(s))) {
	case Gemini:
		return Gemini, nil
	case DeepSeek:
		return DeepSeek, nil
	}
	return "", fmt.Errorf("unknown provider %q (want one of %v)", s, IDs)
}

// DefaultModel is the model used when none is configured.
func DefaultModel(id ID) string {
	switch id {
	case DeepSeek:
		return "deepseek-chat"
	default:
		return "gemini-2.5-flash"
	}
}

// CompanyName is the human-facing vendor name used in progress messages.
func (id ID) CompanyName() string {
	switch id {
	case DeepSeek:
		return "DeepSeek"
	case Gemini:
		return "Google"
	}
	return string(id)
}

// Request is one structured-generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64

	// ThinkingBudget caps reasoning tokens where the provider supports it.
	// Nil leaves the provider default; -1 asks for a dynamic budget.
	ThinkingBudget *int32
}

// Response is the provider's answer. Raw holds the SDK response for ExtractUsage.
type Response struct {
	Text string
	Raw  any
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens    int64
	ThoughtsTokens int64
	OutputTokens   int64
}

// ErrorClass is the provider-independent classification of a failed call.
type ErrorClass int

const (
	ClassUnexpected ErrorClass = iota
	ClassTransient
	ClassAuth
	ClassBalance
	ClassRateLimit
	ClassBadRequest
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassAuth:
		return "auth"
	case ClassBalance:
		return "balance"
	case ClassRateLimit:
		return "rate-limit"
	case ClassBadRequest:
		return "bad-request"
	default:
		return "unexpected"
	}
}

// Client is the uniform surface over the provider variants.
type Client interface {
	ID() ID
	Send(ctx context.Context, req Request) (*Response, error)
	ClassifyError(err error) ErrorClass
	ExtractUsage(resp *Response) Usage
}

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes client construction.
type Option func(*clientOptions)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithHTTPClient replaces the transport's HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// New builds the client for id.
func New(ctx context.Context, id ID, apiKey string, opts ...Option) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("provider.New: missing API key for %s", id)
	}
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	switch id {
	case Gemini:
		return newGeminiClient(ctx, apiKey, o)
	case DeepSeek:
		return newDeepSeekClient(apiKey, o), nil
	}
	return nil, fmt.Errorf("provider.New: provider not supported: %s", id)
}

// classifyStatus is the status-code taxonomy shared by both providers' HTTP errors.
func classifyStatus(code int) ErrorClass {
	switch {
	case code >= 500:
		return ClassTransient
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ClassAuth
	case code == http.StatusPaymentRequired:
		return ClassBalance
	case code == http.StatusTooManyRequests:
		return ClassRateLimit
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity || code == http.StatusNotFound:
		return ClassBadRequest
	}
	return ClassUnexpected
}
