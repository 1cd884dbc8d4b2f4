// Package ledger records one row per summarization run: a CSV file for spreadsheets
// and a SQLite history for totals.
package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/cha2hatena/pricing"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// Record is one run.
type Record struct {
	ID            string
	CreatedAt     time.Time
	SourceFile    string
	AIName        string
	Summary       string
	Prompt        string
	Provider      provider.ID
	Model         string
	ThoughtsLevel string
	InputTokens   int64
	InputFee      float64
	OutputTokens  int64
	OutputFee     float64
	TotalFee      float64
}

// BuildRecord fills the token and fee columns from usage and fees. Output tokens include
// thoughts, matching the output fee.
func BuildRecord(source, aiName, summary, prompt string, id provider.ID, model, thoughtsLevel string, u provider.Usage, f pricing.Fees) Record {
	return Record{
		SourceFile:    source,
		AIName:        aiName,
		Summary:       strings.TrimSpace(summary),
		Prompt:        prompt,
		Provider:      id,
		Model:         model,
		ThoughtsLevel: thoughtsLevel,
		InputTokens:   u.InputTokens,
		InputFee:      f.Input,
		OutputTokens:  u.OutputTokens + u.ThoughtsTokens,
		OutputFee:     f.Output,
		TotalFee:      f.Total,
	}
}

var csvHeader = []string{
	"source_file",
	"ai_name",
	"summary",
	"prompt",
	"model",
	"thoughts_level",
	"input_tokens",
	"input_fee",
	"output_tokens",
	"output_fee",
	"total_fee",
}

func (r Record) csvRow() []string {
	return []string{
		r.SourceFile,
		r.AIName,
		r.Summary,
		r.Prompt,
		r.Model,
		r.ThoughtsLevel,
		strconv.FormatInt(r.InputTokens, 10),
		formatFee(r.InputFee),
		strconv.FormatInt(r.OutputTokens, 10),
		formatFee(r.OutputFee),
		formatFee(r.TotalFee),
	}
}

func formatFee(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
