package httpclient

import "context"

// Request describes a single HTTP exchange. Empty fields are left to the transport defaults.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       []byte
	Query      map[string]string
	PathParams map[string]string
	Cookies    map[string]string
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	// IsSuccess reports a 2xx status.
	IsSuccess() bool
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
