// Package hatena publishes summaries to Hatena Blog through its AtomPub API.
package hatena

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	atomNS = "http://www.w3.org/2005/Atom"
	appNS  = "http://www.w3.org/2007/app"

	markdownType = "text/x-markdown"
)

// Entry is a blog post to upload.
type Entry struct {
	Title      string
	Author     string
	Content    string
	Categories []string
	Draft      bool
}

type atomEntry struct {
	XMLName    xml.Name       `xml:"entry"`
	Xmlns      string         `xml:"xmlns,attr"`
	XmlnsApp   string         `xml:"xmlns:app,attr"`
	Title      string         `xml:"title"`
	Author     atomAuthor     `xml:"author"`
	Content    atomContent    `xml:"content"`
	Categories []atomCategory `xml:"category"`
	Control    atomControl    `xml:"app:control"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomControl struct {
	Draft   string `xml:"app:draft"`
	Preview string `xml:"app:preview"`
}

// BuildEntry renders e as an AtomPub entry document with a markdown body.
func BuildEntry(e Entry) ([]byte, error) {
	doc := atomEntry{
		Xmlns:    atomNS,
		XmlnsApp: appNS,
		Title:    e.Title,
		Author:   atomAuthor{Name: e.Author},
		Content:  atomContent{Type: markdownType, Body: e.Content},
		Control:  atomControl{Draft: yesNo(e.Draft), Preview: "no"},
	}
	seen := make(map[string]struct{}, len(e.Categories))
	for _, c := range e.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		doc.Categories = append(doc.Categories, atomCategory{Term: c})
	}

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("BuildEntry: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PostedEntry is the part of the server's answer worth reporting.
type PostedEntry struct {
	ID         string
	Title      string
	Author     string
	Content    string
	Categories []string
	Draft      bool
	EditURL    string
	URL        string
}

type responseEntry struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom entry"`
	ID      string   `xml:"http://www.w3.org/2005/Atom id"`
	Title   string   `xml:"http://www.w3.org/2005/Atom title"`
	Author  struct {
		Name string `xml:"http://www.w3.org/2005/Atom name"`
	} `xml:"http://www.w3.org/2005/Atom author"`
	Content    string `xml:"http://www.w3.org/2005/Atom content"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"http://www.w3.org/2005/Atom category"`
	Links []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"http://www.w3.org/2005/Atom link"`
	Control struct {
		Draft string `xml:"http://www.w3.org/2007/app draft"`
	} `xml:"http://www.w3.org/2007/app control"`
}

// ParseEntry decodes an Atom entry document.
func ParseEntry(b []byte) (*PostedEntry, error) {
	var r responseEntry
	if err := xml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("ParseEntry: %w", err)
	}
	out := &PostedEntry{
		ID:      strings.TrimSpace(r.ID),
		Title:   r.Title,
		Author:  r.Author.Name,
		Content: r.Content,
		Draft:   strings.TrimSpace(r.Control.Draft) == "yes",
	}
	for _, c := range r.Categories {
		out.Categories = append(out.Categories, c.Term)
	}
	for _, l := range r.Links {
		switch l.Rel {
		case "edit":
			out.EditURL = l.Href
		case "alternate":
			out.URL = l.Href
		}
	}
	return out, nil
}
