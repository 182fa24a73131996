package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/replicate/mget/pkg/logging"
)

// Options configures the HTTP client used for probes and fetches.
type Options struct {
	// Transport replaces the default transport. Tests use it to inject mocks.
	Transport http.RoundTripper
}

// HTTPClient is a plain *http.Client built on top of retryablehttp with retries disabled.
// retryablehttp still gives us request/response hooks for debug logging and a single place to
// decide how transport errors are surfaced.
type HTTPClient struct {
	*http.Client
}

// NewHTTPClient returns a client that sends requests with default headers, never retries, never
// times out and hands non-2xx responses back to the caller untouched.
func NewHTTPClient(opts Options) *HTTPClient {
	transport := opts.Transport
	if transport == nil {
		transport = newTransport()
	}

	retryClient := &retryablehttp.Client{
		HTTPClient: &http.Client{
			Transport:     transport,
			CheckRedirect: checkRedirectFunc,
		},
		Logger:          nil,
		RetryMax:        0,
		CheckRetry:      noRetryPolicy,
		Backoff:         retryablehttp.DefaultBackoff,
		ErrorHandler:    retryablehttp.PassthroughErrorHandler,
		RequestLogHook:  requestLogHook,
		ResponseLogHook: responseLogHook,
	}

	return &HTTPClient{Client: retryClient.StandardClient()}
}

func newTransport() *http.Transport {
	// No dial, TLS or header timeouts: a request waits on the server as long as it takes.
	// Proxy is left nil so proxy environment variables are ignored.
	return &http.Transport{
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2: true,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
		DisableKeepAlives: false,
	}
}

// noRetryPolicy never asks for another attempt. Any status code is a valid answer; transport
// errors are returned as-is.
func noRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

func requestLogHook(_ retryablehttp.Logger, req *http.Request, _ int) {
	logger := logging.GetLogger()
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Request")
}

func responseLogHook(_ retryablehttp.Logger, resp *http.Response) {
	logger := logging.GetLogger()
	logger.Debug().
		Str("method", resp.Request.Method).
		Str("url", resp.Request.URL.String()).
		Int("status", resp.StatusCode).
		Int64("content_length", resp.ContentLength).
		Msg("Response")
}

// checkRedirectFunc follows redirects and records them at trace level
func checkRedirectFunc(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	logger := logging.GetLogger()
	logger.Trace().
		Str("redirect_url", req.URL.String()).
		Str("url", via[0].URL.String()).
		Int("status", req.Response.StatusCode).
		Msg("Redirect")
	return nil
}
