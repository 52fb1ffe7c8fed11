package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrHTTPClient marks every failure returned by Client.Send.
var ErrHTTPClient = errors.New("http client error")

// maxResponseBody caps how much of a response body is kept for logging.
const maxResponseBody = 64 << 10

// Request represents an outbound HTTP request.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents a successful (2xx) HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client sends HTTP requests to third-party endpoints.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig holds configuration for the HTTP client.
type ClientConfig struct {
	Timeout time.Duration
	// RetryMax is the number of retries after the first attempt on connection
	// errors and 5xx responses. Zero sends exactly once.
	RetryMax int
}

type retryingClient struct {
	client *retryablehttp.Client
}

// NewClient creates a Client backed by go-retryablehttp.
func NewClient(cfg ClientConfig) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	// keep the last response so callers can read and log the error body
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &retryingClient{client: rc}
}

// NewJSONRequest builds a POST request with body encoded as JSON.
func NewJSONRequest(url string, body any) (*Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "encode request body"), ErrHTTPClient)
	}
	return &Request{
		Method:  http.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, nil
}

// Send performs req. Non-2xx responses are returned as *Error.
func (c *retryingClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body any
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "build request"), ErrHTTPClient)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		// the transport error embeds the full url, query credentials included
		return nil, errors.Mark(errors.Wrapf(errors.UnwrapAll(err), "%s %s", req.Method, redact(req.URL)), ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read response body"), ErrHTTPClient)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewError(resp.StatusCode, respBody)
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}
