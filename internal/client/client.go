// Package client is a typed HTTP client for the vocabulary API and the
// Deck view model the review CLI drives.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
	"github.com/tbourn/go-vocab-backend/internal/services"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, msg)
	}
	return fmt.Sprintf("server error (%d %s): %s", e.Status, e.Code, msg)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client talks to one server. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client for baseURL, which includes the API base path
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListOptions filters List.
type ListOptions struct {
	Query      string
	Collection string
	Due        bool
	Limit      int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Collection != "" {
		v.Set("collection", o.Collection)
	}
	if o.Due {
		v.Set("due", "true")
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// NewVocabulary is the create payload. Empty Step means "0"; Target is
// honored only when the server allows overrides.
type NewVocabulary struct {
	English      string `json:"english"`
	Vietnamese   string `json:"vietnamese"`
	IPA          string `json:"ipa,omitempty"`
	Example      string `json:"example,omitempty"`
	Collection   string `json:"collection,omitempty"`
	PartOfSpeech string `json:"partOfSpeech,omitempty"`
	Step         string `json:"step,omitempty"`
	Target       string `json:"target,omitempty"`
}

// Edit is a partial update; nil fields are left alone.
type Edit struct {
	English      *string `json:"english,omitempty"`
	Vietnamese   *string `json:"vietnamese,omitempty"`
	IPA          *string `json:"ipa,omitempty"`
	Example      *string `json:"example,omitempty"`
	Collection   *string `json:"collection,omitempty"`
	PartOfSpeech *string `json:"partOfSpeech,omitempty"`
	Step         *string `json:"step,omitempty"`
}

// List returns records ordered by target date.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]domain.Vocabulary, error) {
	var out []domain.Vocabulary
	path := "/vocabularies"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list vocabularies: %w", err)
	}
	return out, nil
}

// Due returns records due today or earlier.
func (c *Client) Due(ctx context.Context, limit int) ([]domain.Vocabulary, error) {
	var out []domain.Vocabulary
	path := "/vocabularies/due"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("due vocabularies: %w", err)
	}
	return out, nil
}

// Create adds a record. A non-empty idemKey is sent as Idempotency-Key so a
// retried call returns the first record.
func (c *Client) Create(ctx context.Context, in NewVocabulary, idemKey string) (*domain.Vocabulary, error) {
	var out domain.Vocabulary
	var hdr http.Header
	if idemKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idemKey}}
	}
	if err := c.do(ctx, http.MethodPost, "/vocabularies", in, hdr, &out); err != nil {
		return nil, fmt.Errorf("create vocabulary: %w", err)
	}
	return &out, nil
}

// Review reschedules one record and returns it as stored.
func (c *Client) Review(ctx context.Context, id, step string) (*domain.Vocabulary, error) {
	var out domain.Vocabulary
	body := map[string]string{"id": id, "step": step}
	if err := c.doJSON(ctx, http.MethodPatch, "/vocabularies", body, &out); err != nil {
		return nil, fmt.Errorf("review %s: %w", id, err)
	}
	return &out, nil
}

// Edit applies a partial edit to one record.
func (c *Client) Edit(ctx context.Context, id string, e Edit) (*domain.Vocabulary, error) {
	var out domain.Vocabulary
	body := struct {
		ID string `json:"id"`
		Edit
	}{ID: id, Edit: e}
	if err := c.doJSON(ctx, http.MethodPatch, "/vocabularies", body, &out); err != nil {
		return nil, fmt.Errorf("edit %s: %w", id, err)
	}
	return &out, nil
}

// BatchReview gives every id the same step and shared target.
func (c *Client) BatchReview(ctx context.Context, ids []string, step string) (*services.BatchResult, error) {
	var out services.BatchResult
	body := struct {
		IDs  []string `json:"ids"`
		Step string   `json:"step"`
	}{IDs: ids, Step: step}
	if err := c.doJSON(ctx, http.MethodPatch, "/vocabularies", body, &out); err != nil {
		return nil, fmt.Errorf("batch review: %w", err)
	}
	return &out, nil
}

// Delete removes records and returns how many went.
func (c *Client) Delete(ctx context.Context, ids []string) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	if err := c.doJSON(ctx, http.MethodDelete, "/vocabularies", body, &out); err != nil {
		return 0, fmt.Errorf("delete vocabularies: %w", err)
	}
	return out.Deleted, nil
}

// Steps returns the review buttons and their step labels.
func (c *Client) Steps(ctx context.Context) ([]schedule.Option, error) {
	var out []schedule.Option
	if err := c.doJSON(ctx, http.MethodGet, "/steps", nil, &out); err != nil {
		return nil, fmt.Errorf("steps: %w", err)
	}
	return out, nil
}

// Export streams the xlsx workbook into w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/vocabularies/export", nil)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("export: %w", decodeError(resp.StatusCode, b))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import uploads a spreadsheet; filename's extension picks xlsx or csv.
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) (*services.ImportResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vocabularies/import", &body)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out services.ImportResult
	if err := c.send(req, &out); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	return c.do(ctx, method, path, body, nil, result)
}

func (c *Client) do(ctx context.Context, method, path string, body any, hdr http.Header, result any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.send(req, result)
}

func (c *Client) send(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, b)
	}
	if result != nil && len(b) > 0 {
		if err := json.Unmarshal(b, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) *APIError {
	var env struct {
		RequestID string `json:"request_id"`
		Code      string `json:"code"`
		Message   string `json:"message"`
	}
	ae := &APIError{Status: status}
	if err := json.Unmarshal(body, &env); err == nil {
		ae.Code, ae.Message, ae.RequestID = env.Code, env.Message, env.RequestID
	} else {
		ae.Message = strings.TrimSpace(string(body))
	}
	return ae
}
