package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID(" Gemini ")
	require.NoError(t, err)
	require.Equal(t, Gemini, id)

	id, err = ParseID("deepseek")
	require.NoError(t, err)
	require.Equal(t, DeepSeek, id)

	_, err = ParseID("anthropic")
	require.Error(t, err)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), DeepSeek, "  ")
	require.Error(t, err)
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want ErrorClass
	}{
		{500, ClassTransient},
		{502, ClassTransient},
		{503, ClassTransient},
		{401, ClassAuth},
		{403, ClassAuth},
		{402, ClassBalance},
		{429, ClassRateLimit},
		{400, ClassBadRequest},
		{422, ClassBadRequest},
		{418, ClassUnexpected},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, classifyStatus(tt.code), "code=%d", tt.code)
	}
}

func TestClassifyDeepSeekError(t *testing.T) {
	t.Parallel()

	require.Equal(t, ClassBalance, classifyDeepSeekError(&openai.Error{StatusCode: http.StatusPaymentRequired}))
	require.Equal(t, ClassTransient, classifyDeepSeekError(&openai.Error{StatusCode: http.StatusServiceUnavailable}))
	require.Equal(t, ClassUnexpected, classifyDeepSeekError(errors.New("connection reset")))
}

func TestClassifyGeminiError(t *testing.T) {
	t.Parallel()

	require.Equal(t, ClassTransient, classifyGeminiError(genai.APIError{Code: 503, Status: "UNAVAILABLE"}))
	require.Equal(t, ClassRateLimit, classifyGeminiError(fmt.Errorf("send: %w", genai.APIError{Code: 429})))
	require.Equal(t, ClassBadRequest, classifyGeminiError(&genai.APIError{Code: 400}))
	require.Equal(t, ClassUnexpected, classifyGeminiError(context.DeadlineExceeded))
}

func TestBlogPostSchema_IsStrict(t *testing.T) {
	t.Parallel()

	require.Equal(t, "object", BlogPostSchema["type"])
	require.Equal(t, false, BlogPostSchema["additionalProperties"])
	require.ElementsMatch(t, BlogPostKeys, BlogPostSchema["required"])

	props, ok := BlogPostSchema["properties"].(map[string]any)
	require.True(t, ok)
	categories, ok := props["categories"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 4, categories["maxItems"])

	gs := toGenaiSchema(BlogPostSchema)
	require.Equal(t, genai.TypeObject, gs.Type)
	require.Equal(t, genai.TypeArray, gs.Properties["categories"].Type)
	require.Equal(t, genai.TypeString, gs.Properties["categories"].Items.Type)
	require.Equal(t, int64(4), *gs.Properties["categories"].MaxItems)
}

func TestDeepSeekSend(t *testing.T) {
	t.Parallel()

	var (
		gotBody map[string]any
		gotPath string
		gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "c1", "object": "chat.completion", "created": 1, "model": "deepseek-reasoner",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"title\":\"t\",\"content\":\"c\",\"categories\":[]}"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200,
				"completion_tokens_details": {"reasoning_tokens": 30}}
		}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), DeepSeek, "sk-test", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.Equal(t, DeepSeek, c.ID())

	resp, err := c.Send(context.Background(), Request{Model: "deepseek-reasoner", Prompt: "summarize", Temperature: 1.1})
	require.NoError(t, err)
	require.Contains(t, resp.Text, `"title":"t"`)
	require.True(t, strings.HasSuffix(gotPath, "/chat/completions"), gotPath)
	require.Equal(t, "Bearer sk-test", gotAuth)

	require.Equal(t, "deepseek-reasoner", gotBody["model"])
	require.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	require.Contains(t, fmt.Sprint(msgs[0]), "maxItems")

	usage := c.ExtractUsage(resp)
	require.Equal(t, Usage{InputTokens: 120, ThoughtsTokens: 30, OutputTokens: 50}, usage)
}

func TestDeepSeekSend_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error": {"message": "Insufficient Balance", "type": "unknown_error"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), DeepSeek, "sk-test", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Send(context.Background(), Request{Model: "deepseek-chat", Prompt: "p"})
	require.Error(t, err)
	require.Equal(t, ClassBalance, c.ClassifyError(err))
}

func TestGeminiSend(t *testing.T) {
	t.Parallel()

	var (
		gotBody map[string]any
		gotPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"title\":\"t\",\"content\":\"c\",\"categories\":[\"go\"]}"}]}}],
			"usageMetadata": {"promptTokenCount": 1000, "candidatesTokenCount": 200, "thoughtsTokenCount": 50}
		}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Gemini, "g-test", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	budget := int32(1024)
	resp, err := c.Send(context.Background(), Request{Model: "gemini-2.5-flash", Prompt: "p", Temperature: 1.1, ThinkingBudget: &budget})
	require.NoError(t, err)
	require.Contains(t, resp.Text, `"categories":["go"]`)
	require.Contains(t, gotPath, "gemini-2.5-flash:generateContent")

	gen, ok := gotBody["generationConfig"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "application/json", gen["responseMimeType"])
	require.NotNil(t, gen["responseSchema"])

	require.Equal(t, Usage{InputTokens: 1000, ThoughtsTokens: 50, OutputTokens: 200}, c.ExtractUsage(resp))
}

func TestGeminiSend_Overloaded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error": {"code": 503, "message": "The model is overloaded.", "status": "UNAVAILABLE"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Gemini, "g-test", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Send(context.Background(), Request{Model: "gemini-2.5-flash", Prompt: "p"})
	require.Error(t, err)
	require.Equal(t, ClassTransient, c.ClassifyError(err))
}

func TestExtractUsage_MissingData(t *testing.T) {
	t.Parallel()

	require.Equal(t, Usage{}, geminiUsage(nil))
	require.Equal(t, Usage{}, geminiUsage(&Response{Raw: &genai.GenerateContentResponse{}}))
	require.Equal(t, Usage{}, deepSeekUsage(&Response{Raw: "not a completion"}))
}
