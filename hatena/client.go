package hatena

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
)

// Config holds the AtomPub endpoint and OAuth1 credentials. BaseURL has the form
// https://blog.hatena.ne.jp/{hatena id}/{blog id}/atom/.
type Config struct {
	BaseURL           string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "base url")
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		missing = append(missing, "consumer key/secret")
	}
	if c.AccessToken == "" || c.AccessTokenSecret == "" {
		missing = append(missing, "access token/secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("hatena: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Client uploads entries.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient signs every request with the configured OAuth1 token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	return &Client{cfg: cfg, http: oc.Client(ctx, token)}, nil
}

// StatusError is a non-2xx answer from the blog API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hatena: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Post uploads one entry document to the collection and returns the created entry.
func (c *Client) Post(ctx context.Context, entryXML []byte) (*PostedEntry, error) {
	if len(entryXML) == 0 {
		return nil, errors.New("hatena.Post: empty entry")
	}
	url := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/")
	if !strings.HasSuffix(url, "/entry") {
		url += "/entry"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(entryXML))
	if err != nil {
		return nil, fmt.Errorf("hatena.Post: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hatena.Post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hatena.Post: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return ParseEntry(body)
}

// Publish builds e and posts it.
func (c *Client) Publish(ctx context.Context, e Entry) (*PostedEntry, error) {
	b, err := BuildEntry(e)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, b)
}
