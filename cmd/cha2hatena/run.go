package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/cha2hatena/applog"
	"github.com/theimaginaryfoundation/cha2hatena/chatlog"
	"github.com/theimaginaryfoundation/cha2hatena/fileutils"
	"github.com/theimaginaryfoundation/cha2hatena/hatena"
	"github.com/theimaginaryfoundation/cha2hatena/ledger"
	"github.com/theimaginaryfoundation/cha2hatena/pricing"
	"github.com/theimaginaryfoundation/cha2hatena/summary"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

var errEmptyTranscript = errors.New("no messages left after the session filter; nothing to summarize")

type runOptions struct {
	provider string
	model    string
	publish  bool
}

type clientFactory func(ctx context.Context, id provider.ID, apiKey string) (provider.Client, error)

func defaultClientFactory(ctx context.Context, id provider.ID, apiKey string) (provider.Client, error) {
	return provider.New(ctx, id, apiKey)
}

type publisher interface {
	Publish(ctx context.Context, e hatena.Entry) (*hatena.PostedEntry, error)
}

type publisherFactory func(ctx context.Context, cfg hatena.Config) (publisher, error)

func defaultPublisherFactory(ctx context.Context, cfg hatena.Config) (publisher, error) {
	return hatena.NewClient(ctx, cfg)
}

func (a *app) run(ctx context.Context, paths []string, ro runOptions) error {
	id := a.cfg.ProviderID()
	if ro.provider != "" {
		parsed, err := provider.ParseID(ro.provider)
		if err != nil {
			return err
		}
		id = parsed
		if ro.model == "" && parsed != a.cfg.ProviderID() {
			ro.model = provider.DefaultModel(parsed)
		}
	}
	model := a.cfg.AI.Model
	if ro.model != "" {
		model = ro.model
	}

	var sum *summary.Summarizer
	if !a.cfg.Other.Debug {
		apiKey, err := a.secrets.APIKey(id)
		if err != nil {
			return err
		}
		a.logger.Debug("creating provider client", "provider", string(id), "api_key", applog.KeyTail(apiKey))
		client, err := a.newClient(ctx, id, apiKey)
		if err != nil {
			return err
		}
		sum = summary.New(client,
			summary.WithLogger(a.logger),
			summary.WithDumpPath(filepath.Join(a.cfg.Paths.OutputDir, summary.DefaultDumpName)),
		)
	}

	var pub publisher
	if (ro.publish || a.cfg.Hatena.Publish) && !a.cfg.Other.Debug {
		p, err := a.newPublisher(ctx, a.secrets.Hatena)
		if err != nil {
			return err
		}
		pub = p
	}

	var history *ledger.History
	if !a.cfg.Other.Debug && a.cfg.Paths.History != "" {
		h, err := ledger.OpenHistory(a.cfg.Paths.History)
		if err != nil {
			return err
		}
		defer h.Close()
		history = h
	}

	p := &pipeline{app: a, id: id, model: model, summarizer: sum, publisher: pub, history: history}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processFile(ctx, path); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

type pipeline struct {
	*app
	id         provider.ID
	model      string
	summarizer *summary.Summarizer
	publisher  publisher
	history    *ledger.History
}

func (p *pipeline) processFile(ctx context.Context, path string) error {
	exp, err := chatlog.LoadExport(path)
	if err != nil {
		return err
	}
	aiName := chatlog.ResolveAgentName(path, exp.Metadata.PoweredBy)
	gap, err := p.cfg.Gap()
	if err != nil {
		return err
	}
	if p.cfg.Other.Debug {
		gap = 0
	}

	text, err := chatlog.Reconstruct(exp, chatlog.Options{AgentName: aiName, Gap: gap, Logger: p.logger})
	if err != nil {
		return err
	}

	stem := exp.Stem()
	backupPath := filepath.Join(p.cfg.Paths.OutputDir, stem+".txt")
	if err := fileutils.WriteTextAtomic(backupPath, text); err != nil {
		return fmt.Errorf("write transcript backup: %w", err)
	}
	p.logger.Info("transcript reconstructed", "source", path, "agent", aiName, "backup", backupPath, "chars", len(text))

	if p.cfg.Other.Debug {
		fmt.Fprintln(p.out, text)
		return nil
	}
	if text == "" {
		return errEmptyTranscript
	}

	budget, err := p.cfg.ThinkingBudget()
	if err != nil {
		return err
	}
	if p.id != provider.Gemini {
		budget = nil
	}

	p.progressf("Waiting for a response from %s (%s)...", p.id.CompanyName(), p.model)
	res, err := p.summarizer.Summarize(ctx, text, summary.Options{
		Model:          p.model,
		CustomPrompt:   p.cfg.AI.Prompt,
		Temperature:    p.cfg.Temperature(),
		ThinkingBudget: budget,
	})
	if err != nil {
		var vErr *summary.StructuredOutputValidationError
		if errors.As(err, &vErr) {
			fees := pricing.Calculator{Logger: p.logger}.Breakdown(p.id, vErr.Model, vErr.Usage)
			p.progressf("The unusable response was still billed: $%.6f", fees.Total)
		}
		return err
	}
	p.progressf("Received the summary from %s.", p.id.CompanyName())

	fees := pricing.Calculator{Logger: p.logger}.Breakdown(p.id, res.Model, res.Usage)

	markdown := renderMarkdown(res)
	summaryPath := filepath.Join(p.cfg.Paths.OutputDir, stem+".md")
	if err := fileutils.WriteTextAtomic(summaryPath, markdown); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	rec := ledger.BuildRecord(filepath.Base(path), aiName, markdown, fileutils.SanitizeNewlines(p.cfg.AI.Prompt),
		p.id, res.Model, p.cfg.AI.ThoughtsLevel, res.Usage, fees)
	if err := ledger.AppendCSV(p.cfg.Paths.Ledger, rec); err != nil {
		return err
	}
	if p.history != nil {
		if err := p.history.Insert(ctx, &rec, res.Title); err != nil {
			return err
		}
	}

	fmt.Fprintf(p.out, "%s\n  summary: %s\n  input:  %d tokens  $%.6f\n  output: %d tokens  $%.6f\n  total:  $%.6f\n",
		res.Title, summaryPath, rec.InputTokens, fees.Input, rec.OutputTokens, fees.Output, fees.Total)

	if p.publisher != nil {
		posted, err := p.publisher.Publish(ctx, hatena.Entry{
			Title:      res.Title,
			Author:     p.cfg.Hatena.Author,
			Content:    res.Content,
			Categories: res.Categories,
			Draft:      p.cfg.DraftEntries(),
		})
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		p.progressf("Posted %q to Hatena Blog %s", posted.Title, posted.URL)
	}
	return nil
}

func renderMarkdown(res summary.Result) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(res.Title))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(res.Content))
	b.WriteString("\n")
	if len(res.Categories) > 0 {
		b.WriteString("\nCategories: ")
		b.WriteString(strings.Join(res.Categories, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
