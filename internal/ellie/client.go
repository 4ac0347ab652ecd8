package ellie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ellietransfer/pkg/config"
)

const defaultAPIVersion = "v1"

// APIError is a non-2xx answer from the Ellie API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ellie api: status %d: %s", e.StatusCode, e.Message)
}

// ModelRef is a model identifier. The API returns it as a number on
// some deployments and as a string on others.
type ModelRef string

func (m *ModelRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = ModelRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = ModelRef(n.String())
	return nil
}

// ImportResult is the API's answer to a model import.
type ImportResult struct {
	ID      ModelRef `json:"id"`
	ModelID ModelRef `json:"modelId"`
}

// Ref returns whichever identifier field the API filled in.
func (r ImportResult) Ref() string {
	if r.ID != "" {
		return string(r.ID)
	}
	return string(r.ModelID)
}

type modelEnvelope struct {
	Model *Model `json:"model"`
}

// Client talks to the Ellie model import and export endpoints.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
}

// NewClient builds a client from configuration. The organization may be
// a bare hostname or a full URL, its scheme defaults to https.
func NewClient(cfg config.EllieConfig) *Client {
	base := strings.TrimRight(cfg.Organization, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		version:    version,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateModel imports a new model and returns its assigned ID.
func (c *Client) CreateModel(ctx context.Context, m *Model) (string, error) {
	var res ImportResult
	if err := c.do(ctx, http.MethodPost, "models", modelEnvelope{Model: m}, &res); err != nil {
		return "", err
	}
	return res.Ref(), nil
}

// GetModel exports the model stored under id.
func (c *Client) GetModel(ctx context.Context, id string) (*Model, error) {
	var env modelEnvelope
	if err := c.do(ctx, http.MethodGet, "models/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	if env.Model == nil {
		return nil, fmt.Errorf("model %s: response carried no model", id)
	}
	return env.Model, nil
}

// UpdateModel replaces the model stored under id.
func (c *Client) UpdateModel(ctx context.Context, id string, m *Model) error {
	return c.do(ctx, http.MethodPut, "models/"+url.PathEscape(id), modelEnvelope{Model: m}, nil)
}

// ModelURL is the browser address of a model.
func (c *Client) ModelURL(level, id string) string {
	if level == "" {
		level = LevelPhysical
	}
	return fmt.Sprintf("%s/models/%s/%s", c.baseURL, level, id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint, err := url.Parse(fmt.Sprintf("%s/api/%s/%s", c.baseURL, c.version, path))
	if err != nil {
		return fmt.Errorf("building ellie url: %w", err)
	}
	query := endpoint.Query()
	query.Set("token", c.token)
	endpoint.RawQuery = query.Encode()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		slog.Debug("ellie request", "method", method, "path", path, "body", string(data))
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling ellie: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	slog.Debug("ellie response", "status", resp.StatusCode, "body", string(data))

	if resp.StatusCode >= 400 {
		msg := apiMessage(data)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// apiMessage digs a readable message out of an error body.
func apiMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
