package chatlog

import (
	"path/filepath"
	"strings"
)

// UnknownAgent is used when neither the file name nor the metadata identify the assistant.
const UnknownAgent = "Unknown AI"

const (
	RolePrompt   = "Prompt"
	RoleResponse = "Response"

	// UserAgent is the speaker label for prompt messages.
	UserAgent = "You"
)

// KnownAgents are the assistants the exporter names files after ("Claude-<title>.json").
var KnownAgents = []string{"Claude", "ChatGPT", "Gemini", "Deepseek", "Grok"}

// ResolveAgentName picks the assistant display name from the export file name prefix,
// falling back to a substring match on the powered_by metadata.
func ResolveAgentName(fileName, poweredBy string) string {
	base := filepath.Base(fileName)
	for _, name := range KnownAgents {
		if strings.HasPrefix(base, name) {
			return name
		}
	}

	pb := strings.ToLower(poweredBy)
	if pb != "" {
		for _, name := range KnownAgents {
			if strings.Contains(pb, strings.ToLower(name)) {
				return name
			}
		}
	}
	return UnknownAgent
}

// agentFor maps a message role to its speaker label. ok is false for roles the
// exporter is not known to produce.
func agentFor(role, aiName string) (agent string, ok bool) {
	switch role {
	case RolePrompt:
		return UserAgent, true
	case RoleResponse:
		return aiName, true
	default:
		return role, false
	}
}
