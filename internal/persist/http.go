package persist

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/termify/floatspace/internal/workspace"
)

// HTTPOptions configures the remote layout store.
type HTTPOptions struct {
	BaseURL       string
	Workspace     string
	Token         string
	Timeout       time.Duration
	// RetryCount is how many times a failed request is resent. Callers that
	// retry on their own leave it at zero.
	RetryCount    int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
	RatePerSecond float64
	UserAgent     string
}

// HTTPStore talks to a dashboard API that owns workspace layouts.
type HTTPStore struct {
	client    *resty.Client
	limiter   *rate.Limiter
	workspace string
}

// NewHTTPStore builds a resty client over a retryablehttp client.
func NewHTTPStore(opts HTTPOptions) (*HTTPStore, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("storage url is required")
	}
	if strings.TrimSpace(opts.Workspace) == "" {
		return nil, fmt.Errorf("workspace name is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 200 * time.Millisecond
	}
	if opts.RetryMaxWait < opts.RetryWait {
		opts.RetryMaxWait = 2 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "floatspace/1.0"
	}

	// retryablehttp is the only retry layer; resty sends each request once.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryCount
	retryClient.RetryWaitMin = opts.RetryWait
	retryClient.RetryWaitMax = opts.RetryMaxWait
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient())
	client.
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &HTTPStore{client: client, limiter: limiter, workspace: opts.Workspace}, nil
}

func (s *HTTPStore) request(ctx context.Context) (*resty.Request, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetPathParam("workspace", s.workspace), nil
}

// LoadLayout fetches the workspace layout.
func (s *HTTPStore) LoadLayout(ctx context.Context) (*workspace.Layout, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}

	var layout workspace.Layout
	resp, err := req.SetResult(&layout).Get("/api/workspaces/{workspace}/layout")
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrLayoutNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to load layout: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return &layout, nil
}

// UpdateLayout replaces the workspace layout.
func (s *HTTPStore) UpdateLayout(ctx context.Context, layout workspace.Layout) error {
	req, err := s.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(layout).
		Put("/api/workspaces/{workspace}/layout")
	if err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to save layout: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return nil
}
