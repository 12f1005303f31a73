// Package apicaller performs JSON API calls: one HTTP exchange, a status check
// and a JSON decode, with every failure logged once and returned to the caller.
package apicaller

import (
	"context"
	"net/http"

	"github.com/samvad-hq/jsonfetch/pkg/httpclient"
	"github.com/samvad-hq/jsonfetch/pkg/jsonvalue"
)

// Logger is the logging surface the caller relies on.
type Logger interface {
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) ErrorObj(string, string, interface{}) {}

// Caller issues JSON API calls. It holds no per-call state and is safe for concurrent use.
type Caller struct {
	client httpclient.Client
	log    Logger
}

// NewCaller builds a Caller. A nil client gets a resty transport without
// timeout or retries; a nil logger discards diagnostics.
func NewCaller(client httpclient.Client, log Logger) *Caller {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.Options{})
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Caller{client: client, log: log}
}

// Call sends a request to endpoint and decodes the JSON response. Only the
// first RequestOptions is used. Transport errors are returned unchanged, a
// non-2xx status yields *ResponseStatusError and an invalid body yields *ParseError.
func (c *Caller) Call(ctx context.Context, endpoint string, opts ...RequestOptions) (jsonvalue.Value, error) {
	var o RequestOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	req := o.toRequest(endpoint)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return c.fail(req, o, err)
	}

	if !resp.IsSuccess() {
		return c.fail(req, o, &ResponseStatusError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       bodySnippet(resp.Body()),
		})
	}

	v, err := jsonvalue.Parse(resp.Body())
	if err != nil {
		return c.fail(req, o, &ParseError{Err: err, Body: bodySnippet(resp.Body())})
	}
	return v, nil
}

// fail emits the single diagnostic entry for a failed call and hands err back untouched.
func (c *Caller) fail(req httpclient.Request, o RequestOptions, err error) (jsonvalue.Value, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	fields := map[string]any{
		"endpoint": req.URL,
		"method":   method,
		"error":    err.Error(),
	}
	if code, ok := StatusCode(err); ok {
		fields["status"] = code
	}
	if keys := transportKeys(o.Transport); len(keys) > 0 {
		fields["transport_options"] = keys
	}
	c.log.ErrorObj("api call failed", "api_call_error", fields)
	return jsonvalue.Value{}, err
}
