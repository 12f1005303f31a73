package apicaller

import (
	"fmt"
	"net/textproto"
	"sort"

	"github.com/samvad-hq/jsonfetch/pkg/httpclient"
)

// Keys understood in RequestOptions.Transport.
const (
	TransportQuery      = "query"
	TransportPathParams = "path_params"
	TransportCookies    = "cookies"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

// RequestOptions configures a single call. The zero value issues a plain GET.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Headers are merged over the default Content-Type: application/json.
	// Keys compare case-insensitively and caller entries win.
	Headers map[string]string
	// Body is sent as-is when non-nil. Use BodyString for text payloads.
	Body []byte
	// Transport carries pass-through options for the underlying request.
	// Recognised keys: "query", "path_params" and "cookies", each a
	// map[string]string. Other keys are ignored.
	Transport map[string]any
}

// BodyString returns a copy of o with a string body.
func (o RequestOptions) BodyString(s string) RequestOptions {
	o.Body = []byte(s)
	return o
}

// mergeHeaders returns the default headers overlaid with the caller's.
func mergeHeaders(headers map[string]string) map[string]string {
	out := map[string]string{headerContentType: mimeJSON}
	for k, v := range headers {
		out[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return out
}

func (o RequestOptions) toRequest(endpoint string) httpclient.Request {
	return httpclient.Request{
		Method:     o.Method,
		URL:        endpoint,
		Headers:    mergeHeaders(o.Headers),
		Body:       o.Body,
		Query:      stringMap(o.Transport[TransportQuery]),
		PathParams: stringMap(o.Transport[TransportPathParams]),
		Cookies:    stringMap(o.Transport[TransportCookies]),
	}
}

// stringMap accepts the map shapes callers typically build, including values
// decoded from JSON or YAML.
func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = fmt.Sprint(val)
		}
		return out
	default:
		return nil
	}
}

// transportKeys lists the transport option names, sorted, for diagnostics.
func transportKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
