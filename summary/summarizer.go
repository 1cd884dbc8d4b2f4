package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/theimaginaryfoundation/cha2hatena/fileutils"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

const (
	// DefaultMaxAttempts bounds requests per summarization, including the first.
	DefaultMaxAttempts = 3
	// DefaultDumpName is where unparseable responses are saved, inside the output dir.
	DefaultDumpName = "__summary.txt"
)

// Result is a validated summary and the tokens it cost.
type Result struct {
	Title      string
	Content    string
	Categories []string
	Model      string
	Usage      provider.Usage
}

// Options are the per-call request parameters.
type Options struct {
	Model          string
	CustomPrompt   string
	Temperature    float64
	ThinkingBudget *int32
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Summarizer drives one provider client through the retry and validation steps.
type Summarizer struct {
	client      provider.Client
	logger      *slog.Logger
	wait        WaitFunc
	maxAttempts int
	dumpPath    string

	providerOpts []provider.Option
}

// Option customizes a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWait replaces the retry delay; tests use it to observe waits without sleeping.
func WithWait(w WaitFunc) Option {
	return func(s *Summarizer) {
		if w != nil {
			s.wait = w
		}
	}
}

// WithDumpPath sets where invalid responses are written.
func WithDumpPath(path string) Option {
	return func(s *Summarizer) {
		s.dumpPath = path
	}
}

// WithProviderOptions configures the client built by the package-level Summarize.
func WithProviderOptions(po ...provider.Option) Option {
	return func(s *Summarizer) {
		s.providerOpts = append(s.providerOpts, po...)
	}
}

func New(client provider.Client, opts ...Option) *Summarizer {
	s := &Summarizer{
		client:      client,
		logger:      slog.Default(),
		wait:        sleepContext,
		maxAttempts: DefaultMaxAttempts,
		dumpPath:    filepath.Join("outputs", DefaultDumpName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize builds the client for id and runs one summarization with default settings.
func Summarize(ctx context.Context, transcript string, id provider.ID, apiKey string, opts Options, sopts ...Option) (Result, error) {
	s := New(nil, sopts...)
	client, err := provider.New(ctx, id, apiKey, s.providerOpts...)
	if err != nil {
		return Result{}, fmt.Errorf("Summarize: %w", err)
	}
	s.client = client
	return s.Summarize(ctx, transcript, opts)
}

// RetryDelay is the wait after failed attempt i (zero-based).
func RetryDelay(attempt int) time.Duration {
	return time.Duration(5*(attempt+1)) * time.Second
}

// Summarize sends the transcript and returns the validated blog post.
//
// Transient failures are retried with a growing delay; there is no wait after the final
// attempt. Client-class failures return immediately. A response that does not match the
// blog post shape is saved to the dump path and reported with its usage, since it was billed.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, opts Options) (Result, error) {
	id := s.client.ID()
	model := opts.Model
	if model == "" {
		model = provider.DefaultModel(id)
	}
	req := provider.Request{
		Model:          model,
		Prompt:         BuildPrompt(opts.CustomPrompt, model, transcript),
		Temperature:    opts.Temperature,
		ThinkingBudget: opts.ThinkingBudget,
	}

	resp, err := s.send(ctx, req)
	if err != nil {
		return Result{}, err
	}

	usage := s.client.ExtractUsage(resp)
	post, err := decodeBlogPost(resp.Text)
	if err != nil {
		s.logger.Error("structured output validation failed", "model", model, "error", err)
		vErr := &StructuredOutputValidationError{Model: model, Usage: usage, Err: err}
		if s.dumpPath != "" {
			if werr := fileutils.WriteTextAtomic(s.dumpPath, resp.Text); werr != nil {
				s.logger.Error("failed to save raw response", "path", s.dumpPath, "error", werr)
			} else {
				vErr.DumpPath = s.dumpPath
			}
		}
		return Result{}, vErr
	}

	return Result{
		Title:      post.Title,
		Content:    post.Content,
		Categories: post.Categories,
		Model:      model,
		Usage:      usage,
	}, nil
}

func (s *Summarizer) send(ctx context.Context, req provider.Request) (*provider.Response, error) {
	id := s.client.ID()
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		resp, err := s.client.Send(ctx, req)
		if err == nil {
			s.logger.Info("summary received", "provider", id, "model", req.Model, "attempt", attempt+1)
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &UnexpectedError{Err: errors.Join(ctxErr, err)}
		}

		switch class := s.client.ClassifyError(err); class {
		case provider.ClassTransient:
			lastErr = err
			if attempt == s.maxAttempts-1 {
				s.logger.Warn("provider overloaded, giving up", "provider", id, "attempts", s.maxAttempts, "error", err)
				break
			}
			delay := RetryDelay(attempt)
			s.logger.Warn("provider overloaded, retrying", "provider", id, "attempt", attempt+1, "delay", delay, "error", err)
			if werr := s.wait(ctx, delay); werr != nil {
				return nil, &UnexpectedError{Err: werr}
			}
		case provider.ClassAuth, provider.ClassBalance, provider.ClassRateLimit, provider.ClassBadRequest:
			s.logger.Error("provider rejected request", "provider", id, "kind", class.String(), "error", err)
			return nil, &ClientProviderError{Provider: id, Kind: class, Err: err}
		default:
			s.logger.Error("unexpected provider error", "provider", id, "error", fmt.Sprintf("%+v", err))
			return nil, &UnexpectedError{Err: err}
		}
	}
	return nil, &TransientProviderError{Provider: id, Attempts: s.maxAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
