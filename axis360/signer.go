package axis360

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/indexdata/crosslink/econtent/httpclient"
)

const (
	HeaderDatetime      = "3mcl-Datetime"
	HeaderAuthorization = "3mcl-Authorization"
	HeaderApiVersion    = "3mcl-APIVersion"
	AuthScheme          = "3MCLAUTH"
	ApiVersion          = "3.0"
)

// Sign returns the base64 HMAC-SHA256 of "timestamp\nmethod\npath" keyed with accountKey.
// path includes the query string exactly as sent.
func Sign(accountKey, timestamp, method, path string) string {
	mac := hmac.New(sha256.New, []byte(accountKey))
	mac.Write([]byte(timestamp + "\n" + method + "\n" + path))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// FormatTimestamp renders t the way the vendor expects it in 3mcl-Datetime.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

type Signer struct {
	AccountID  string
	AccountKey string
	Now        func() time.Time
}

func NewSigner(accountId, accountKey string) *Signer {
	return &Signer{AccountID: accountId, AccountKey: accountKey, Now: time.Now}
}

// Headers returns name/value pairs for one request. A signature is only valid together
// with the timestamp it was computed for, so a new pair is produced on every call.
func (s *Signer) Headers(method, path string) []string {
	ts := FormatTimestamp(s.Now())
	return []string{
		HeaderDatetime, ts,
		HeaderAuthorization, AuthScheme + " " + s.AccountID + ":" + Sign(s.AccountKey, ts, method, path),
		HeaderApiVersion, ApiVersion,
		httpclient.ContentType, httpclient.ContentTypeApplicationXml,
		httpclient.Accept, httpclient.ContentTypeApplicationXml,
	}
}
