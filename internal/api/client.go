package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JulienEnigma/instacommand/internal/telemetry"
	"github.com/gorilla/websocket"
)

const defaultTimeout = 15 * time.Second

// maxDiagLines bounds the local diagnostics buffer.
const maxDiagLines = 200

type scanRequest struct {
	Hashtag string `json:"hashtag"`
	Limit   int    `json:"limit"`
}

type followRequest struct {
	Username string `json:"username"`
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxLength int    `json:"max_length"`
}

type advisoryRequest struct {
	Context string `json:"context"`
}

// ScanResult is the backend response to a hashtag/profile scan.
type ScanResult struct {
	Message      string `json:"message"`
	TargetsFound int    `json:"targets_found"`
}

// ActionResult is the common success/message envelope for follow, pause and
// resume actions.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResult is the backend's system status summary.
type StatusResult struct {
	Message string `json:"message"`
}

// GenerateResult carries free-text completion output.
type GenerateResult struct {
	Response string `json:"response"`
}

// AdvisoryMessage is a non-binding analyst message from the backend.
type AdvisoryMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Priority  string `json:"priority"`
	Data      string `json:"data,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client talks to the automation backend over HTTP and holds the WebSocket
// dialer for the telemetry stream. All methods are safe for sequential use
// from the UI event loop; the diagnostics buffer is additionally locked so
// the stream goroutine can record into it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer

	diagMu sync.Mutex
	diag   []string
}

// New creates a client for the given base URL, e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		dialer:     websocket.DefaultDialer,
	}
}

func (c *Client) appendDiag(line string) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	c.diag = append(c.diag, line)
	if len(c.diag) > maxDiagLines {
		c.diag = c.diag[len(c.diag)-maxDiagLines:]
	}
}

// Diagnostics returns the local diagnostic channel contents, oldest first.
func (c *Client) Diagnostics() []string {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return append([]string(nil), c.diag...)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(blob, &apiErr) == nil && strings.TrimSpace(apiErr.Error) != "" {
			return fmt.Errorf("api %s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("api %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ScanHashtag starts a scan of the given hashtag or profile tag.
func (c *Client) ScanHashtag(ctx context.Context, tag string, limit int) (ScanResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var result ScanResult
	err := c.doJSON(ctx, http.MethodPost, "/instagram/scan", scanRequest{Hashtag: tag, Limit: limit}, &result)
	return result, err
}

// FollowUser queues a follow of the given username.
func (c *Client) FollowUser(ctx context.Context, username string) (ActionResult, error) {
	var result ActionResult
	err := c.doJSON(ctx, http.MethodPost, "/instagram/follow", followRequest{Username: username}, &result)
	return result, err
}

// PauseOperations halts all automation activity.
func (c *Client) PauseOperations(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	err := c.doJSON(ctx, http.MethodPost, "/instagram/operations/pause", nil, &result)
	return result, err
}

// ResumeOperations restarts automation activity.
func (c *Client) ResumeOperations(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	err := c.doJSON(ctx, http.MethodPost, "/instagram/operations/resume", nil, &result)
	return result, err
}

// SystemStatus fetches the backend's one-line status summary.
func (c *Client) SystemStatus(ctx context.Context) (StatusResult, error) {
	var result StatusResult
	err := c.doJSON(ctx, http.MethodGet, "/status/", nil, &result)
	return result, err
}

// AdvisoryInsight requests an analyst message for the given console context.
func (c *Client) AdvisoryInsight(ctx context.Context, consoleContext string) (AdvisoryMessage, error) {
	var result AdvisoryMessage
	err := c.doJSON(ctx, http.MethodPost, "/llm/stanley/insight", advisoryRequest{Context: consoleContext}, &result)
	return result, err
}

// Generate requests a free-text completion for an unrecognized command.
func (c *Client) Generate(ctx context.Context, prompt string, maxLength int) (GenerateResult, error) {
	if maxLength <= 0 {
		maxLength = 150
	}
	var result GenerateResult
	err := c.doJSON(ctx, http.MethodPost, "/llm/generate", generateRequest{Prompt: prompt, MaxLength: maxLength}, &result)
	return result, err
}

// GetLogs fetches the telemetry backlog, newest entries last.
func (c *Client) GetLogs(ctx context.Context, limit int) ([]telemetry.LogEntry, error) {
	if limit <= 0 {
		limit = telemetry.BacklogLimit
	}
	var entries []telemetry.LogEntry
	path := fmt.Sprintf("/logs/?limit=%d", limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		normalizeEntry(&entries[i])
	}
	return entries, nil
}

// streamURL converts the HTTP base URL to the WebSocket endpoint.
func (c *Client) streamURL() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/logs/stream"
	return parsed.String(), nil
}

// StreamLogs opens the push subscription and forwards well-formed entries to
// sink until the context is cancelled or the socket errors. Malformed frames
// are recorded on the diagnostics buffer and dropped; they never close the
// stream. The sink is closed on return.
func (c *Client) StreamLogs(ctx context.Context, sink chan<- telemetry.LogEntry) error {
	defer close(sink)

	target, err := c.streamURL()
	if err != nil {
		return err
	}

	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial log stream: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial log stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller tears down.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read log stream: %w", err)
		}

		var entry telemetry.LogEntry
		if err := json.Unmarshal(frame, &entry); err != nil {
			c.appendDiag("stream: dropped undecodable frame: " + err.Error())
			continue
		}
		normalizeEntry(&entry)
		if !entry.Valid() {
			c.appendDiag("stream: dropped out-of-schema frame")
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case sink <- entry:
		}
	}
}

// normalizeEntry maps legacy wire values onto the current schema. The
// backend still emits "stanley" for advisory telemetry.
func normalizeEntry(entry *telemetry.LogEntry) {
	if entry.Category == "stanley" {
		entry.Category = telemetry.CategoryAdvisory
	}
}
