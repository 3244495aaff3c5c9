package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"
)

const (
	ContentTypeTextXml        string = "text/xml"
	ContentTypeApplicationXml string = "application/xml"
	ContentTypeForm           string = "application/x-www-form-urlencoded"
	ContentType               string = "Content-Type"
	Accept                    string = "Accept"
)

const DefaultMaxResponseSize int64 = 1024 * 1024 * 10 // 10MB

const DefaultTimeout = 20 * time.Second

type HttpError struct {
	StatusCode int
	Body       []byte
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

// Response is the raw outcome of a request that reached the server.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Check returns an HttpError unless the status is one of ok (any 2xx when ok is empty).
func (r *Response) Check(ok ...int) error {
	if len(ok) == 0 {
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			return nil
		}
	} else if slices.Contains(ok, r.StatusCode) {
		return nil
	}
	return &HttpError{r.StatusCode, r.Body}
}

type HttpClient struct {
	Headers         http.Header
	MaxResponseSize int64
	Timeout         time.Duration
	// CheckRedirect is passed on to the http.Client used for each request.
	CheckRedirect func(req *http.Request, via []*http.Request) error
}

func NewClient() *HttpClient {
	return &HttpClient{Headers: http.Header{}, MaxResponseSize: DefaultMaxResponseSize, Timeout: DefaultTimeout}
}

func (c *HttpClient) WithMaxSize(maxResponseSize int64) *HttpClient {
	c.MaxResponseSize = maxResponseSize
	return c
}

func (c *HttpClient) WithTimeout(timeout time.Duration) *HttpClient {
	c.Timeout = timeout
	return c
}

func (c *HttpClient) WithoutRedirects() *HttpClient {
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

func (c *HttpClient) WithHeaders(headers ...string) *HttpClient {
	if c.Headers == nil {
		c.Headers = http.Header{}
	}
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i] == "" {
			continue
		}
		c.Headers.Add(headers[i], headers[i+1])
	}
	return c
}

// Send performs one request on a client of its own. Any HTTP status is returned as a
// Response; only failures to complete the exchange are errors.
func (c *HttpClient) Send(method string, url string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if c.Headers != nil {
		req.Header = c.Headers.Clone()
	}
	client := &http.Client{Timeout: c.Timeout, CheckRedirect: c.CheckRedirect}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		dErr := resp.Body.Close()
		if dErr != nil {
			fmt.Printf("failed to close body: %v", dErr)
		}
	}()
	buf, err := c.readResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: buf}, nil
}

func (c *HttpClient) readResponse(body io.Reader) ([]byte, error) {
	if c.MaxResponseSize > 0 {
		body = NewLimitErrorReader(body, c.MaxResponseSize)
	}
	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

type LimitErrorReader struct {
	reader *io.LimitedReader
}

func NewLimitErrorReader(r io.Reader, limit int64) *LimitErrorReader {
	return &LimitErrorReader{
		reader: &io.LimitedReader{R: r, N: limit},
	}
}

func (ler *LimitErrorReader) Read(p []byte) (int, error) {
	if ler.reader.N <= 0 {
		return 0, errors.New("response body too large")
	}
	return ler.reader.Read(p)
}
