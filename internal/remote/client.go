// Package remote implements the remote document store contract: GET
// returns, and PUT accepts, the full four-collection document. There is no
// partial update protocol; a PUT replaces the previous remote content
// wholesale, so whichever push's response lands last wins.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/raido/internal/models"
)

// Document is the wire document (aliased from the domain layer).
type Document = models.Document

// Client talks to a remote document store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the store at baseURL. token, when
// non-empty, is sent as a Bearer credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Fetch retrieves the remote document. Missing or non-array fields decode
// to empty collections; a non-2xx status or malformed body is an error the
// caller recovers from by falling back to the local cache.
func (c *Client) Fetch(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("remote: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("remote: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, fmt.Errorf("remote: fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
	if err != nil {
		return Document{}, fmt.Errorf("remote: read body: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, fmt.Errorf("remote: decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// Put overwrites the entire remote document.
func (c *Client) Put(ctx context.Context, doc Document) error {
	doc.Normalize()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("remote: encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: put: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote: put: unexpected status %d", resp.StatusCode)
	}
	return nil
}
