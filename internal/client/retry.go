package client

import (
	"fmt"
	"time"

	"github.com/tolutally/matchbox-web/internal/config"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"
)

// DefaultAuthHeader carries the shared secret in "simple" auth mode.
const DefaultAuthHeader = "X-API-Secret"

// RetryOptions describes an authenticated outbound client with retries.
type RetryOptions struct {
	AuthMode           string
	AuthSecret         string
	AuthHeader         string
	Timeout            time.Duration
	InsecureSkipVerify bool
	MaxRetries         int
	RetryDelay         time.Duration
	MaxRetryDelay      time.Duration
}

// FormBackendOptions derives the lead forwarder's client settings from cfg.
func FormBackendOptions(cfg *config.Config) RetryOptions {
	return RetryOptions{
		AuthMode:      cfg.FormBackendAuthMode,
		AuthSecret:    cfg.FormBackendAuthSecret,
		AuthHeader:    cfg.FormBackendAuthHeader,
		Timeout:       cfg.FormBackendTimeout,
		MaxRetries:    cfg.FormBackendMaxRetries,
		RetryDelay:    cfg.FormBackendRetryDelay,
		MaxRetryDelay: cfg.FormBackendMaxRetryDelay,
	}
}

// NewRetryClient builds an HTTP client that signs requests according to
// AuthMode and retries transport failures and 5xx responses.
func NewRetryClient(o RetryOptions) (*retry.Client, error) {
	if o.AuthMode == "" {
		o.AuthMode = httpclient.AuthModeNone
	}

	if o.AuthHeader == "" {
		o.AuthHeader = DefaultAuthHeader
	}

	client, err := httpclient.NewAuthClient(
		o.AuthMode,
		o.AuthSecret,
		httpclient.WithTimeout(o.Timeout),
		httpclient.WithHeaderName(o.AuthHeader),
		httpclient.WithInsecureSkipVerify(o.InsecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	retryClient, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(client),
		retry.WithMaxRetries(o.MaxRetries),
		retry.WithInitialRetryDelay(o.RetryDelay),
		retry.WithMaxRetryDelay(o.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	return retryClient, nil
}
