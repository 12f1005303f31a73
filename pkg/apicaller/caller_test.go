package apicaller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/samvad-hq/jsonfetch/internal/logger"
	"github.com/samvad-hq/jsonfetch/pkg/httpclient"
	"github.com/samvad-hq/jsonfetch/pkg/jsonvalue"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeResponse lets us stub the httpclient.Response interface.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }
func (f fakeResponse) Status() string  { return http.StatusText(f.statusCode) }
func (f fakeResponse) IsSuccess() bool { return f.statusCode > 199 && f.statusCode < 300 }

// fakeHTTPClient records requests and returns a canned response or error.
type fakeHTTPClient struct {
	mu       sync.Mutex
	resp     fakeResponse
	err      error
	requests []httpclient.Request
}

func (f *fakeHTTPClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newObservedCaller(client httpclient.Client) (*Caller, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewCaller(client, logger.New(core)), logs
}

func TestCallReturnsParsedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/examples" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items":[1,2,3]}`))
	}))
	defer srv.Close()

	caller, logs := newObservedCaller(httpclient.NewRestyClient(httpclient.Options{BaseURL: srv.URL}))

	got, err := caller.Call(context.Background(), "/api/examples")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := jsonvalue.MustParse(`{"items":[1,2,3]}`)
	if !got.Equal(want) {
		t.Fatalf("Call = %s want %s", got, want)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no log entries on success, got %d", logs.Len())
	}
}

func TestCallAcceptsAnyJSONValue(t *testing.T) {
	for _, body := range []string{`null`, `true`, `42`, `"text"`, `[{"a":1}]`} {
		client := &fakeHTTPClient{resp: fakeResponse{body: []byte(body), statusCode: http.StatusOK}}
		caller, _ := newObservedCaller(client)

		got, err := caller.Call(context.Background(), "/anything")
		if err != nil {
			t.Fatalf("Call with body %s: %v", body, err)
		}
		if !got.Equal(jsonvalue.MustParse(body)) {
			t.Fatalf("Call = %s want %s", got, body)
		}
	}
}

func TestCallStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	caller, logs := newObservedCaller(httpclient.NewRestyClient(httpclient.Options{BaseURL: srv.URL}))

	_, err := caller.Call(context.Background(), "/api/missing")
	var se *ResponseStatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ResponseStatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d", se.StatusCode)
	}
	if code, ok := StatusCode(err); !ok || code != 404 {
		t.Fatalf("StatusCode(err) = %d, %v", code, ok)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log entry, got %d", logs.Len())
	}
	fields, ok := logs.All()[0].ContextMap()["api_call_error"].(map[string]any)
	if !ok {
		t.Fatalf("missing api_call_error field: %#v", logs.All()[0].ContextMap())
	}
	if fields["status"] != 404 {
		t.Fatalf("logged status = %v", fields["status"])
	}
}

func TestCallParseError(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{body: []byte("<html>oops</html>"), statusCode: http.StatusOK}}
	caller, logs := newObservedCaller(client)

	_, err := caller.Call(context.Background(), "/api/html")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T %v", err, err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("ParseError should wrap the decoder error")
	}
	if IsTransportError(err) {
		t.Fatalf("parse error misclassified as transport error")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log entry, got %d", logs.Len())
	}
}

func TestCallEmptyBodyIsParseError(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: http.StatusNoContent}}
	caller, logs := newObservedCaller(client)

	if _, err := caller.Call(context.Background(), "/api/empty"); !IsParseError(err) {
		t.Fatalf("expected parse error for empty body, got %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log entry, got %d", logs.Len())
	}
}

func TestCallRejectsMalformedBodies(t *testing.T) {
	bodies := []string{`nul`, `tru`, `01`, `1.`, "\"a\tb\"", `[1,]`}

	for _, body := range bodies {
		client := &fakeHTTPClient{resp: fakeResponse{body: []byte(body), statusCode: http.StatusOK}}
		caller, logs := newObservedCaller(client)

		v, err := caller.Call(context.Background(), "/api/malformed")
		if !IsParseError(err) {
			t.Fatalf("body %q: expected parse error, got value %s err %v", body, v, err)
		}
		if logs.Len() != 1 {
			t.Fatalf("body %q: expected exactly one log entry, got %d", body, logs.Len())
		}
	}
}

func TestCallKeepsOutOfRangeNumber(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{body: []byte(`1e400`), statusCode: http.StatusOK}}
	caller, logs := newObservedCaller(client)

	v, err := caller.Call(context.Background(), "/api/huge")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v.Kind() != jsonvalue.Number || v.Literal() != "1e400" {
		t.Fatalf("value = %s (%s)", v, v.Kind())
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no log entries, got %d", logs.Len())
	}
}

func TestCallPropagatesTransportErrorUnchanged(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	client := &fakeHTTPClient{err: boom}
	caller, logs := newObservedCaller(client)

	_, err := caller.Call(context.Background(), "http://unreachable.invalid/api")
	if err != boom {
		t.Fatalf("expected the transport error itself, got %v", err)
	}
	if !IsTransportError(err) {
		t.Fatalf("expected IsTransportError to be true")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log entry, got %d", logs.Len())
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(client.requests))
	}
}

func TestCallRealTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	caller, logs := newObservedCaller(nil)
	_, err := caller.Call(context.Background(), url+"/api/examples")
	if err == nil || !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log entry, got %d", logs.Len())
	}
}

func TestCallMergesHeaders(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{body: []byte(`{}`), statusCode: http.StatusOK}}
	caller, _ := newObservedCaller(client)

	if _, err := caller.Call(context.Background(), "/h", RequestOptions{Headers: map[string]string{"X-Foo": "1"}}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	h := client.requests[0].Headers
	if h["Content-Type"] != "application/json" || h["X-Foo"] != "1" {
		t.Fatalf("merged headers = %#v", h)
	}

	if _, err := caller.Call(context.Background(), "/h", RequestOptions{Headers: map[string]string{"content-type": "text/plain"}}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	h = client.requests[1].Headers
	if len(h) != 1 || h["Content-Type"] != "text/plain" {
		t.Fatalf("caller Content-Type should win, got %#v", h)
	}
}

func TestCallSendsHeadersOverTheWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "text/plain" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-Foo"); got != "1" {
			t.Errorf("X-Foo = %q", got)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer srv.Close()

	caller, _ := newObservedCaller(httpclient.NewRestyClient(httpclient.Options{BaseURL: srv.URL}))
	opts := RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Foo": "1", "Content-Type": "text/plain"},
	}.BodyString("hello")

	got, err := caller.Call(context.Background(), "/api/echo", opts)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v, _ := got.Get("received"); !v.Bool() {
		t.Fatalf("unexpected response %s", got)
	}
}

func TestCallPassesTransportOptions(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{body: []byte(`[]`), statusCode: http.StatusOK}}
	caller, _ := newObservedCaller(client)

	_, err := caller.Call(context.Background(), "/api/examples/{id}", RequestOptions{
		Transport: map[string]any{
			TransportQuery:      map[string]any{"page": 2},
			TransportPathParams: map[string]string{"id": "9"},
			"mode":              "cors",
		},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	req := client.requests[0]
	if req.Query["page"] != "2" || req.PathParams["id"] != "9" {
		t.Fatalf("transport options not applied: %#v", req)
	}
	if req.Cookies != nil {
		t.Fatalf("unexpected cookies %#v", req.Cookies)
	}
}
