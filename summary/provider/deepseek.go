package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DeepSeekBaseURL is DeepSeek's OpenAI-compatible endpoint.
const DeepSeekBaseURL = "https://api.deepseek.com"

type deepSeekClient struct {
	client openai.Client
}

func newDeepSeekClient(apiKey string, o clientOptions) *deepSeekClient {
	baseURL := DeepSeekBaseURL
	if o.baseURL != "" {
		baseURL = o.baseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// Retries are owned by the summarizer.
		option.WithMaxRetries(0),
	}
	if o.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(o.httpClient))
	}
	return &deepSeekClient{client: openai.NewClient(opts...)}
}

func (d *deepSeekClient) ID() ID { return DeepSeek }

// Send uses JSON mode. DeepSeek has no json_schema response format, so the schema
// travels in the prompt.
func (d *deepSeekClient) Send(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt + "\n\n" + schemaInstruction()),
		},
		Temperature: openai.Float(req.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("deepseek: response has no choices")
	}
	return &Response{Text: resp.Choices[0].Message.Content, Raw: resp}, nil
}

// ClassifyError follows https://api-docs.deepseek.com/quick_start/error_codes.
func (d *deepSeekClient) ClassifyError(err error) ErrorClass {
	return classifyDeepSeekError(err)
}

func classifyDeepSeekError(err error) ErrorClass {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return classifyStatus(apiErr.StatusCode)
	}
	return ClassUnexpected
}

// ExtractUsage reports output tokens without reasoning tokens; DeepSeek folds both
// into completion_tokens.
func (d *deepSeekClient) ExtractUsage(resp *Response) Usage {
	return deepSeekUsage(resp)
}

func deepSeekUsage(resp *Response) Usage {
	if resp == nil {
		return Usage{}
	}
	raw, ok := resp.Raw.(*openai.ChatCompletion)
	if !ok || raw == nil {
		return Usage{}
	}
	reasoning := raw.Usage.CompletionTokensDetails.ReasoningTokens
	return Usage{
		InputTokens:    raw.Usage.PromptTokens,
		ThoughtsTokens: reasoning,
		OutputTokens:   raw.Usage.CompletionTokens - reasoning,
	}
}

func schemaInstruction() string {
	b, err := json.Marshal(BlogPostSchema)
	if err != nil {
		panic(fmt.Sprintf("marshal blog post schema: %v", err))
	}
	return "Respond with a single JSON object that conforms to this JSON schema:\n" + string(b)
}
