package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"

	retry "github.com/appleboy/go-httpretry"
)

var _ core.LeadForwarder = (*FormBackendForwarder)(nil)

// formSubmission is the JSON body posted to the form backend.
type formSubmission struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Scenario    string `json:"scenario"`
	Message     string `json:"message,omitempty"`
	Source      string `json:"source,omitempty"`
	SubmittedAt string `json:"submittedAt"`
	Subject     string `json:"_subject"`
}

type formBackendResponse struct {
	Error  string `json:"error,omitempty"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// FormBackendForwarder posts accepted leads to a hosted form endpoint.
type FormBackendForwarder struct {
	url         string
	retryClient *retry.Client
	metrics     core.Recorder
}

// NewFormBackendForwarder creates a forwarder. An empty url leaves it
// unconfigured; Forward then returns ErrFormBackendUnavailable.
func NewFormBackendForwarder(
	url string,
	retryClient *retry.Client,
	m core.Recorder,
) *FormBackendForwarder {
	return &FormBackendForwarder{
		url:         url,
		retryClient: retryClient,
		metrics:     m,
	}
}

// Configured reports whether a form endpoint was supplied.
func (f *FormBackendForwarder) Configured() bool {
	return f.url != "" && f.retryClient != nil
}

// Forward delivers lead. Non-2xx responses surface as ErrFormBackendRejected.
func (f *FormBackendForwarder) Forward(ctx context.Context, lead *models.Lead) error {
	if !f.Configured() {
		return ErrFormBackendUnavailable
	}

	payload := formSubmission{
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.FullPhone(),
		Scenario:    string(lead.Scenario),
		Message:     lead.Message,
		Source:      lead.Source,
		SubmittedAt: lead.SubmittedAt.UTC().Format(time.RFC3339),
		Subject:     "New demo request: " + string(lead.Scenario),
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	start := time.Now()
	resp, err := f.retryClient.Post(
		ctx,
		f.url,
		retry.WithBody("application/json", bytes.NewBuffer(jsonData)),
	)
	if err != nil {
		f.metrics.RecordFormBackendCall(false, time.Since(start))
		return fmt.Errorf("%w: %v", ErrFormBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	f.metrics.RecordFormBackendCall(ok, time.Since(start))
	if !ok {
		return fmt.Errorf("%w: HTTP %d - %s", ErrFormBackendRejected, resp.StatusCode,
			rejectionReason(body))
	}
	return nil
}

func rejectionReason(body []byte) string {
	var r formBackendResponse
	if err := json.Unmarshal(body, &r); err == nil {
		if r.Error != "" {
			return r.Error
		}
		if len(r.Errors) > 0 && r.Errors[0].Message != "" {
			return r.Errors[0].Message
		}
	}
	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return preview
}
