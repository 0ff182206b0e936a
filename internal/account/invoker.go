// Package account talks to the remote account service that owns user balances.
package account

import "context"

// Request is an HTTP-shaped call forwarded to the account service.
type Request struct {
	HTTPMethod string            `json:"httpMethod"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
}

// Response is what the account service answered, whatever the transport.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Invoker delivers a Request to target: a base URL or a function ARN depending on the implementation.
type Invoker interface {
	Invoke(ctx context.Context, target string, req Request) (*Response, error)
}
