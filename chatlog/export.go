package chatlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/cha2hatena/fileutils"
)

// Export is a single conversation exported by a chat-assistant logger extension.
type Export struct {
	// SourcePath is the file the export was read from. It is used for diagnostics and
	// as the naming hint for agent resolution.
	SourcePath string `json:"-"`

	Metadata Metadata  `json:"metadata"`
	Messages []Message `json:"messages"`
}

// Metadata is the export header.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	PoweredBy string `json:"powered_by,omitempty"`
	Dates     Dates  `json:"dates"`
}

// Dates carries the conversation timestamps in metadata layout (MM/DD/YYYY HH:MM:SS).
type Dates struct {
	Created  string `json:"created,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Exported string `json:"exported,omitempty"`
}

// Message is one turn of the conversation. Time uses the message layout (YYYY/MM/DD HH:MM:SS).
type Message struct {
	Time string `json:"time"`
	Role string `json:"role"`
	Say  string `json:"say"`
}

// rawExport mirrors Export with pointer fields so missing keys can be told apart from empty ones.
type rawExport struct {
	Metadata *struct {
		Title     string `json:"title"`
		PoweredBy string `json:"powered_by"`
		Dates     *Dates `json:"dates"`
	} `json:"metadata"`
	Messages *[]Message `json:"messages"`
}

// LoadExport reads and validates an export file.
func LoadExport(path string) (*Export, error) {
	if path == "" {
		return nil, fmt.Errorf("LoadExport: path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadExport: read file: %w", err)
	}
	return ParseExport(path, b)
}

// ParseExport decodes export bytes. path is only used for error reporting and naming.
func ParseExport(path string, b []byte) (*Export, error) {
	var raw rawExport
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &DecodeError{File: filepath.Base(path), Err: err}
	}
	if raw.Metadata == nil {
		return nil, &MalformedInputError{Path: path, Field: "metadata"}
	}
	if raw.Metadata.Dates == nil {
		return nil, &MalformedInputError{Path: path, Field: "metadata.dates"}
	}
	if raw.Messages == nil {
		return nil, &MalformedInputError{Path: path, Field: "messages"}
	}

	return &Export{
		SourcePath: path,
		Metadata: Metadata{
			Title:     strings.TrimSpace(raw.Metadata.Title),
			PoweredBy: strings.TrimSpace(raw.Metadata.PoweredBy),
			Dates:     *raw.Metadata.Dates,
		},
		Messages: *raw.Messages,
	}, nil
}

// Stem returns the source file name without directory or extension.
func (e *Export) Stem() string {
	return fileutils.Stem(e.SourcePath)
}
