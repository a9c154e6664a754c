// Package github wraps the GitHub API access used to notify downstream
// repositories after a publish.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency). Logs go to a caller-chosen writer
// (typically stderr) so structured output on stdout stays clean.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	_, _ = fmt.Fprintf(t.w, "[verbose] github api: %s %s\n", req.Method, req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if err != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] github api: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
	} else {
		_, _ = fmt.Fprintf(t.w, "[verbose] github api: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
	}
	return resp, err
}

// NewClient builds an API client. An empty token yields an unauthenticated
// client; a non-nil verbose writer gets one log line per request/response.
func NewClient(ctx context.Context, token string, verbose io.Writer) (*github.Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	transport := http.DefaultTransport
	if verbose != nil {
		transport = &loggingRoundTripper{base: transport, w: verbose}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}

	return github.NewClient(&http.Client{Transport: transport}), nil
}
