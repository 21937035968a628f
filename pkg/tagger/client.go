package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a token-classification API client. It speaks the Hugging Face
// inference format: a JSON body {"inputs": text} answered by one record per
// sub-word token.
type Client struct {
	url         string
	apiKey      string
	httpClient  *http.Client
	wordSpacing bool
}

// Prediction is one token record returned by the API.
type Prediction struct {
	Entity      string  `json:"entity"`
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

type request struct {
	Inputs     string            `json:"inputs"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithWordSpacing makes the client prefix a space to every fragment that
// starts after a gap in the source text, so whole words stay separated when
// fragments are joined.
func WithWordSpacing(enabled bool) Option {
	return func(c *Client) {
		c.wordSpacing = enabled
	}
}

// NewClient creates a new token-classification client for the model
// endpoint at url.
func NewClient(url, apiKey string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tag sends text to the model and returns its fragments in text order.
// Blank text is never sent; it yields no fragments.
func (c *Client) Tag(ctx context.Context, text string) ([]Fragment, error) {
	if strings.TrimSpace(text) == "" {
		return []Fragment{}, nil
	}

	preds, err := c.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.fragments(preds), nil
}

// Predict returns the raw token records for text.
func (c *Client) Predict(ctx context.Context, text string) ([]Prediction, error) {
	payload, err := json.Marshal(request{
		Inputs:     text,
		Parameters: map[string]string{"aggregation_strategy": "none"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var preds []Prediction
	if err := json.NewDecoder(resp.Body).Decode(&preds); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return preds, nil
}

func (c *Client) fragments(preds []Prediction) []Fragment {
	frags := make([]Fragment, 0, len(preds))
	prevEnd := -1
	for _, p := range preds {
		tag := p.Entity
		if tag == "" && p.EntityGroup != "" {
			// aggregated records carry a bare type; treat each as its own entity
			tag = "B-" + p.EntityGroup
		}
		word := p.Word
		if c.wordSpacing && prevEnd >= 0 && p.Start > prevEnd && !strings.HasPrefix(word, "##") {
			word = " " + word
		}
		prevEnd = p.End
		frags = append(frags, Fragment{Text: word, Tag: tag})
	}
	return frags
}
