package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ScriptedResponse is one canned HTTP response.
type ScriptedResponse struct {
	Status int
	Body   string
}

// ScriptedTransport is an http.RoundTripper that serves queued responses in
// order and records every request it sees, including a copy of each body.
type ScriptedTransport struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	requests  []*http.Request
	bodies    []string
}

func NewScriptedTransport() *ScriptedTransport {
	return &ScriptedTransport{}
}

// Queue appends a canned response.
func (t *ScriptedTransport) Queue(status int, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = append(t.responses, ScriptedResponse{Status: status, Body: body})
}

func (t *ScriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests = append(t.requests, req)
	t.bodies = append(t.bodies, string(body))

	if len(t.responses) == 0 {
		return nil, fmt.Errorf("unexpected request: %s %s", req.Method, req.URL)
	}
	resp := t.responses[0]
	t.responses = t.responses[1:]

	return &http.Response{
		StatusCode: resp.Status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(resp.Body))),
		Request:    req,
	}, nil
}

// Requests returns the recorded requests in order.
func (t *ScriptedTransport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*http.Request(nil), t.requests...)
}

// LastRequest returns the most recent request, or nil.
func (t *ScriptedTransport) LastRequest() *http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}

// Body returns the recorded body of request i.
func (t *ScriptedTransport) Body(i int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bodies[i]
}

// Count returns the number of requests served.
func (t *ScriptedTransport) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

var _ http.RoundTripper = (*ScriptedTransport)(nil)
