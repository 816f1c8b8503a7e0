package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
)

const (
	defaultAPITimeout = 10 * time.Second
	maxErrorBody      = 64 << 10
)

// APIClient talks to the demo gate server. Nothing is retried: a validate
// call consumes a token and must be sent at most once.
type APIClient struct {
	baseURL     string
	adminSecret string
	http        *http.Client
}

// APIOption configures an APIClient.
type APIOption func(*apiOptions)

type apiOptions struct {
	timeout            time.Duration
	insecureSkipVerify bool
	adminSecret        string
	httpClient         *http.Client
}

// WithAPITimeout bounds every request.
func WithAPITimeout(d time.Duration) APIOption {
	return func(o *apiOptions) { o.timeout = d }
}

// WithAdminSecret sets the secret sent with admin operations.
func WithAdminSecret(secret string) APIOption {
	return func(o *apiOptions) { o.adminSecret = secret }
}

// WithInsecureTLS disables certificate checks, for local testing only.
func WithInsecureTLS(skip bool) APIOption {
	return func(o *apiOptions) { o.insecureSkipVerify = skip }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) APIOption {
	return func(o *apiOptions) { o.httpClient = c }
}

// NewAPIClient creates a client for the server at baseURL.
func NewAPIClient(baseURL string, opts ...APIOption) (*APIClient, error) {
	o := apiOptions{timeout: defaultAPITimeout}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		var err error
		hc, err = httpclient.NewAuthClient(
			httpclient.AuthModeNone,
			"",
			httpclient.WithTimeout(o.timeout),
			httpclient.WithInsecureSkipVerify(o.insecureSkipVerify),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create http client: %w", err)
		}
	}

	return &APIClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		adminSecret: o.adminSecret,
		http:        hc,
	}, nil
}

// GenerateParams selects how many tokens to issue and for how long.
// Zero values let the server apply its defaults.
type GenerateParams struct {
	Count          int
	ExpiresInHours int
	Note           string
}

// GenerateResult is the server's answer to a generate call.
type GenerateResult struct {
	Success        bool      `json:"success"`
	Tokens         []string  `json:"tokens"`
	ExpiresAt      time.Time `json:"expiresAt"`
	ExpiresInHours int       `json:"expiresInHours"`
}

// TokenInfo is one listed token.
type TokenInfo struct {
	Token     string     `json:"token"`
	Used      bool       `json:"used"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	Note      string     `json:"note,omitempty"`
	Status    string     `json:"status"`
}

// ListResult is the server's answer to a list call.
type ListResult struct {
	Success bool        `json:"success"`
	Tokens  []TokenInfo `json:"tokens"`
	Total   int         `json:"total"`
	Active  int         `json:"active"`
	Used    int         `json:"used"`
	Expired int         `json:"expired"`
	Warning string      `json:"warning,omitempty"`
}

// DeleteParams picks tokens to delete; see the server for precedence.
type DeleteParams struct {
	Token   string
	All     bool
	Used    bool
	Expired bool
}

// LeadForm is the contact form submitted instead of a token.
type LeadForm struct {
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"countryCode"`
	Scenario    string    `json:"scenario"`
	Message     string    `json:"message,omitempty"`
	Source      string    `json:"source,omitempty"`
	StartedAt   time.Time `json:"-"`
}

// LeadReceipt acknowledges an accepted lead.
type LeadReceipt struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Scenario string `json:"scenario"`
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// ValidateToken consumes token on the server. A rejected token yields an
// *APIError; transport failures wrap ErrNetwork.
func (c *APIClient) ValidateToken(ctx context.Context, token string) error {
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.post(ctx, "/api/tokens/validate", map[string]string{"token": token}, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return &APIError{StatusCode: http.StatusOK, Message: "token not accepted"}
	}
	return nil
}

// GenerateTokens issues new tokens.
func (c *APIClient) GenerateTokens(ctx context.Context, p GenerateParams) (*GenerateResult, error) {
	body := map[string]any{"adminPassword": c.adminSecret}
	if p.Count > 0 {
		body["count"] = p.Count
	}
	if p.ExpiresInHours > 0 {
		body["expiresInHours"] = p.ExpiresInHours
	}
	if p.Note != "" {
		body["note"] = p.Note
	}

	var res GenerateResult
	if err := c.post(ctx, "/api/tokens/generate", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListTokens returns every live token.
func (c *APIClient) ListTokens(ctx context.Context) (*ListResult, error) {
	var res ListResult
	if err := c.post(ctx, "/api/tokens/list", map[string]string{"adminPassword": c.adminSecret}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteTokens removes tokens and returns how many existed.
func (c *APIClient) DeleteTokens(ctx context.Context, p DeleteParams) (int, error) {
	body := map[string]any{
		"adminPassword": c.adminSecret,
		"token":         p.Token,
		"deleteAll":     p.All,
		"deleteUsed":    p.Used,
		"deleteExpired": p.Expired,
	}
	var res struct {
		Deleted int `json:"deleted"`
	}
	if err := c.post(ctx, "/api/tokens/delete", body, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

// SubmitLead sends the contact form.
func (c *APIClient) SubmitLead(ctx context.Context, form LeadForm) (*LeadReceipt, error) {
	type payload struct {
		LeadForm
		StartedAt int64 `json:"startedAt,omitempty"`
	}
	p := payload{LeadForm: form}
	if !form.StartedAt.IsZero() {
		p.StartedAt = form.StartedAt.UnixMilli()
	}

	var res LeadReceipt
	if err := c.post(ctx, "/api/leads", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) post(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrEndpointNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Field: eb.Field}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrNetwork, err)
	}
	return nil
}
