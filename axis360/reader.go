package axis360

import (
	"net/http"
	"net/url"
	"strings"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/httpclient"
	"github.com/indexdata/crosslink/econtent/patron"
)

const (
	sessionCookiePrefix = "sessionid_"
	audioFormat         = "MP3"
)

// GetReaderRedirect returns the vendor reader location for a checked out title. The
// patron is logged in to the vendor site first so the reader opens with the session;
// without a session the plain reader page is returned.
func (c *Client) GetReaderRedirect(ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (string, error) {
	if p == nil {
		return "", ErrNoPatron
	}
	s, err := c.vendorSettings(ctx)
	if err != nil {
		return "", err
	}
	uiUrl := strings.TrimSuffix(s.UserInterfaceURL, "/")
	audio := false
	if record, err := c.record(ctx, itemId); err == nil {
		audio = record.Format == audioFormat
	}
	escapedId := url.PathEscape(itemId)
	redirect := uiUrl + "/EPubRead/" + escapedId
	if audio {
		redirect = uiUrl + "/AudioPlayer/" + escapedId
	}
	session := c.login(ctx, uiUrl, p)
	if session == "" {
		return redirect, nil
	}
	if audio {
		return uiUrl + "/audiobooks/" + escapedId + "?auth_cookie=" + url.QueryEscape(session), nil
	}
	return uiUrl + "/ebooks/" + escapedId + "?auth_cookie=" + url.QueryEscape(session), nil
}

// login posts the patron credentials to the vendor site and returns the session cookie
// value, or "" when no session was granted.
func (c *Client) login(ctx extctx.ExtendedContext, uiUrl string, p *patron.Patron) string {
	form := url.Values{}
	form.Set("username", p.Barcode)
	form.Set("password", p.Pin)
	transport := c.f.NewLoginTransport(httpclient.ContentType, httpclient.ContentTypeForm)
	resp, err := transport.Send(http.MethodPost, uiUrl+"/login", []byte(form.Encode()))
	if err != nil {
		ctx.Logger().Warn("Axis 360 reader login failed", "error", err)
		return ""
	}
	for _, line := range resp.Header.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		if strings.HasPrefix(cookie.Name, sessionCookiePrefix) {
			return cookie.Value
		}
	}
	ctx.Logger().Debug("Axis 360 reader login returned no session", "status", resp.StatusCode)
	return ""
}
