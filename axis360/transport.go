package axis360

import (
	"time"

	"github.com/indexdata/crosslink/econtent/httpclient"
)

type Transport interface {
	Send(method string, url string, body []byte) (*httpclient.Response, error)
}

// TransportFactory returns a transport carrying the given header name/value pairs.
// The client asks for a new one for every request.
type TransportFactory func(headers ...string) Transport

func NewTransportFactory(timeout time.Duration, maxResponseSize int64) TransportFactory {
	return func(headers ...string) Transport {
		return httpclient.NewClient().
			WithTimeout(timeout).
			WithMaxSize(maxResponseSize).
			WithHeaders(headers...)
	}
}

// NewLoginTransportFactory is used for the reader login form, where the session cookie
// comes with the redirect response itself.
func NewLoginTransportFactory(timeout time.Duration) TransportFactory {
	return func(headers ...string) Transport {
		return httpclient.NewClient().
			WithTimeout(timeout).
			WithoutRedirects().
			WithHeaders(headers...)
	}
}
