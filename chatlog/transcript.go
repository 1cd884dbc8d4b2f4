package chatlog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// DefaultGap is the idle gap after which an earlier day's messages stop counting as the current session.
const DefaultGap = 3 * time.Hour

const divider = "--------------------------------------------------"

// Line is one kept message of a reconstructed transcript.
type Line struct {
	Timestamp time.Time
	// Raw is the timestamp exactly as it appeared in the export.
	Raw   string
	Agent string
	Text  string
}

// Options controls transcript reconstruction.
type Options struct {
	// AgentName labels Response messages. If empty it is resolved from the export.
	AgentName string

	// Gap is the session threshold. A message on a different calendar date than the latest
	// kept message is dropped when it is more than Gap away from it. Zero or negative keeps
	// every message.
	Gap time.Duration

	// Logger receives diagnostics about unrecognized roles. Defaults to slog.Default().
	Logger *slog.Logger
}

type stampedMessage struct {
	index int
	at    time.Time
	msg   Message
}

// Lines returns the messages of the latest uninterrupted session in ascending time order.
func Lines(exp *Export, opts Options) ([]Line, error) {
	if exp == nil {
		return nil, fmt.Errorf("Lines: export is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	aiName := opts.AgentName
	if aiName == "" {
		aiName = ResolveAgentName(exp.SourcePath, exp.Metadata.PoweredBy)
	}

	latest, err := sessionAnchor(exp)
	if err != nil {
		return nil, err
	}

	stamped := make([]stampedMessage, 0, len(exp.Messages))
	for i, m := range exp.Messages {
		at, err := parseMessageTime(m.Time)
		if err != nil {
			return nil, &MalformedInputError{
				Path:  exp.SourcePath,
				Field: fmt.Sprintf("messages[%d].time", i),
				Value: m.Time,
				Err:   err,
			}
		}
		stamped = append(stamped, stampedMessage{index: i, at: at, msg: m})
	}
	sort.SliceStable(stamped, func(i, j int) bool { return stamped[i].at.Before(stamped[j].at) })

	// Walk newest to oldest. Messages after the anchor are always kept and leave the cursor
	// at the anchor; otherwise the cursor only moves back in time. Input is sorted, so once a
	// message is dropped every older one is dropped too.
	keep := make([]bool, len(stamped))
	for i := len(stamped) - 1; i >= 0; i-- {
		at := stamped[i].at
		if !at.Before(latest) {
			keep[i] = true
			continue
		}
		if opts.Gap > 0 && !sameDate(at, latest) && latest.Sub(at) > opts.Gap {
			continue
		}
		keep[i] = true
		latest = at
	}

	var lines []Line
	for i, s := range stamped {
		if !keep[i] {
			continue
		}
		agent, ok := agentFor(s.msg.Role, aiName)
		if !ok {
			logger.Warn("unrecognized message role",
				"role", s.msg.Role,
				"agent", aiName,
				"index", s.index,
				"source", exp.SourcePath,
			)
		}
		lines = append(lines, Line{
			Timestamp: s.at,
			Raw:       strings.TrimSpace(s.msg.Time),
			Agent:     agent,
			Text:      s.msg.Say,
		})
	}
	logger.Debug("transcript reconstructed",
		"source", exp.SourcePath,
		"messages", len(exp.Messages),
		"kept", len(lines),
	)
	return lines, nil
}

// Reconstruct renders the current session of exp as a readable transcript.
func Reconstruct(exp *Export, opts Options) (string, error) {
	lines, err := Lines(exp, opts)
	if err != nil {
		return "", err
	}
	return Format(lines), nil
}

// Format renders lines as divider-separated blocks.
func Format(lines []Line) string {
	blocks := make([]string, 0, len(lines))
	for _, l := range lines {
		blocks = append(blocks, fmt.Sprintf("%s\nagent: %s\n%s\n\n%s\n", l.Raw, l.Agent, l.Text, divider))
	}
	return strings.Join(blocks, "\n")
}

// sessionAnchor is the time the session filter starts from: the export's updated time,
// or its created time when updated is absent.
func sessionAnchor(exp *Export) (time.Time, error) {
	field, value := "metadata.dates.updated", exp.Metadata.Dates.Updated
	if strings.TrimSpace(value) == "" {
		field, value = "metadata.dates.created", exp.Metadata.Dates.Created
	}
	if strings.TrimSpace(value) == "" {
		return time.Time{}, &MalformedInputError{Path: exp.SourcePath, Field: "metadata.dates.updated"}
	}
	t, err := parseMetadataTime(value)
	if err != nil {
		return time.Time{}, &MalformedInputError{Path: exp.SourcePath, Field: field, Value: value, Err: err}
	}
	return t, nil
}
