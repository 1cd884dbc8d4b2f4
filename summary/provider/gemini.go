package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	schema *genai.Schema
}

func newGeminiClient(ctx context.Context, apiKey string, o clientOptions) (*geminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	schema := toGenaiSchema(BlogPostSchema)
	schema.PropertyOrdering = BlogPostKeys
	return &geminiClient{client: client, schema: schema}, nil
}

func (g *geminiClient) ID() ID { return Gemini }

func (g *geminiClient) Send(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   g.schema,
	}
	if req.ThinkingBudget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: req.ThinkingBudget}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, err
	}
	return &Response{Text: resp.Text(), Raw: resp}, nil
}

// ClassifyError maps Gemini API status codes onto the shared taxonomy. Gemini reports
// quota exhaustion as 429 RESOURCE_EXHAUSTED, which is treated as a rate limit.
func (g *geminiClient) ClassifyError(err error) ErrorClass {
	return classifyGeminiError(err)
}

func classifyGeminiError(err error) ErrorClass {
	if err == nil {
		return ClassUnexpected
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code)
	}
	return ClassUnexpected
}

func (g *geminiClient) ExtractUsage(resp *Response) Usage {
	return geminiUsage(resp)
}

func geminiUsage(resp *Response) Usage {
	if resp == nil {
		return Usage{}
	}
	raw, ok := resp.Raw.(*genai.GenerateContentResponse)
	if !ok || raw == nil || raw.UsageMetadata == nil {
		return Usage{}
	}
	md := raw.UsageMetadata
	return Usage{
		InputTokens:    int64(md.PromptTokenCount),
		ThoughtsTokens: int64(md.ThoughtsTokenCount),
		OutputTokens:   int64(md.CandidatesTokenCount),
	}
}
