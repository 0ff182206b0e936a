package account

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPInvoker calls the account service directly; target is its base URL.
type HTTPInvoker struct {
	client *http.Client
	log    zerolog.Logger
}

func NewHTTPInvoker(timeout time.Duration, log zerolog.Logger) *HTTPInvoker {
	return &HTTPInvoker{
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("client", "account_http").Logger(),
	}
}

func (i *HTTPInvoker) Invoke(ctx context.Context, target string, req Request) (*Response, error) {
	url := strings.TrimRight(target, "/") + req.Path

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.HTTPMethod, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s %s: %w", req.HTTPMethod, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	i.log.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Msg("account service responded")

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: headers, Body: string(raw)}, nil
}
