package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the resty-backed transport. The zero value means no base URL,
// no client timeout and resty's default logger.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  resty.Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient. Retries stay disabled.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// newRestyBaseClient creates a new resty.Client from opts.
func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		c.SetBaseURL(base)
	}
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	c.SetRetryCount(0)
	return c
}

// Do performs the request described by req with the specified context.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if len(req.PathParams) > 0 {
		rr.SetPathParams(req.PathParams)
	}
	for name, value := range req.Cookies {
		rr.SetCookie(&http.Cookie{Name: name, Value: value})
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(normalizeMethod(req.Method), req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// standardMethods are upper-cased whatever case they arrive in, the way browser
// fetch treats them. Any other method is sent exactly as given.
var standardMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPost,
	http.MethodPut,
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	for _, m := range standardMethods {
		if strings.EqualFold(method, m) {
			return m
		}
	}
	return method
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string  { return r.resp.Status() }
func (r *restyResponseAdapter) IsSuccess() bool { return r.resp.IsSuccess() }
