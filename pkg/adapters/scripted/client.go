// Package scripted replays canned model replies, for demos and offline runs.
//
// A script is either a JSON array or newline-delimited JSON. Object entries
// are replayed as their JSON encoding; string entries are replayed verbatim,
// which allows scripting malformed replies.
package scripted

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aretw0/parlance/pkg/model"
)

// ErrExhausted is returned once every reply has been consumed.
var ErrExhausted = errors.New("scripted: no replies left")

// Client returns replies in order.
type Client struct {
	mu       sync.Mutex
	replies  []string
	next     int
	loop     bool
	requests []model.Request
}

// Option configures a Client.
type Option func(*Client)

// WithLoop restarts the script after the last reply.
func WithLoop() Option {
	return func(c *Client) {
		c.loop = true
	}
}

// New creates a client from raw replies.
func New(replies []string, opts ...Option) *Client {
	c := &Client{replies: replies}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads a script file.
func Load(path string, opts ...Option) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripted: %w", err)
	}
	replies, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scripted: %s: %w", path, err)
	}
	return New(replies, opts...), nil
}

// Parse decodes a script document into raw replies.
func Parse(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty script")
	}

	var entries []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(trimmed))
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		line := 0
		for sc.Scan() {
			line++
			text := bytes.TrimSpace(sc.Bytes())
			if len(text) == 0 {
				continue
			}
			if !json.Valid(text) {
				return nil, fmt.Errorf("line %d: invalid JSON", line)
			}
			entries = append(entries, json.RawMessage(bytes.Clone(text)))
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	replies := make([]string, 0, len(entries))
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			replies = append(replies, s)
			continue
		}
		replies = append(replies, string(e))
	}
	return replies, nil
}

// Complete implements model.Client.
func (c *Client) Complete(ctx context.Context, req model.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if c.next >= len(c.replies) {
		if !c.loop || len(c.replies) == 0 {
			return "", ErrExhausted
		}
		c.next = 0
	}
	reply := c.replies[c.next]
	c.next++
	return reply, nil
}

// Requests returns the requests received so far.
func (c *Client) Requests() []model.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Request, len(c.requests))
	copy(out, c.requests)
	return out
}
