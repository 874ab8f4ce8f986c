package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request is the outbound request a Dispatcher hands to its Transport.
type Request struct {
	URL     string
	Method  string
	Timeout time.Duration
	Query   url.Values // GET parameters
	Form    url.Values // POST parameters
	Header  http.Header
}

// TransportResponse is the raw reply of a Transport.
type TransportResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs live requests.
type Transport interface {
	Do(ctx context.Context, req *Request) (*TransportResponse, error)
}

// HTTPTransport is the net/http Transport. Any HTTP status is a successful
// exchange; only network failures are errors.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport backed by a client without a global
// timeout; per-request timeouts come from the profile.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{}}
}

// Do sends req.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*TransportResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for key, vals := range req.Query {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for key, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
