package mcpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// endpointRewriter sends every POST to a fixed endpoint instead of the one
// the request was built for. Query parameters of the original request, such
// as the SSE session id, are carried over unless the endpoint sets them.
// Other methods pass through unchanged.
type endpointRewriter struct {
	target *url.URL
	base   http.RoundTripper
}

func newEndpointRewriter(endpoint string, base http.RoundTripper) (*endpointRewriter, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q is not an absolute URL", endpoint)
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &endpointRewriter{target: u, base: base}, nil
}

func (r *endpointRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost {
		return r.base.RoundTrip(req)
	}

	target := *r.target
	query := target.Query()
	for key, values := range req.URL.Query() {
		if query.Has(key) {
			continue
		}
		for _, v := range values {
			query.Add(key, v)
		}
	}
	target.RawQuery = query.Encode()

	out := req.Clone(req.Context())
	out.URL = &target
	out.Host = target.Host
	return r.base.RoundTrip(out)
}

// streamWatcher reports the end of the server's event stream. Only GET
// responses of type text/event-stream are watched; onEnd runs at most once
// per stream, with io.ErrUnexpectedEOF when the server closed it cleanly.
type streamWatcher struct {
	base  http.RoundTripper
	onEnd func(error)
}

func newStreamWatcher(base http.RoundTripper, onEnd func(error)) *streamWatcher {
	if base == nil {
		base = http.DefaultTransport
	}
	return &streamWatcher{base: base, onEnd: onEnd}
}

func (w *streamWatcher) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := w.base.RoundTrip(req)
	if err != nil || req.Method != http.MethodGet {
		return resp, err
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return resp, nil
	}
	resp.Body = &watchedBody{ReadCloser: resp.Body, onEnd: w.onEnd}
	return resp, nil
}

type watchedBody struct {
	io.ReadCloser
	once  sync.Once
	onEnd func(error)
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil {
		b.once.Do(func() {
			if errors.Is(err, io.EOF) {
				b.onEnd(fmt.Errorf("event stream closed by server: %w", io.ErrUnexpectedEOF))
				return
			}
			b.onEnd(fmt.Errorf("event stream failed: %w", err))
		})
	}
	return n, err
}
