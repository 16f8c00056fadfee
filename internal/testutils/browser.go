package testutils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Browser sends requests to an echo instance and keeps the cookies it is
// given between them.
type Browser struct {
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

// NewBrowser creates a Browser for e.
func NewBrowser(e *echo.Echo) *Browser {
	return &Browser{e: e, cookies: map[string]*http.Cookie{}}
}

// Do sends req with the stored cookies and records the response's cookies.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

// Get sends a GET request.
func (b *Browser) Get(target string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, target, nil))
}

// PostForm sends a url-encoded form.
func (b *Browser) PostForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.Do(req)
}

// PostJSON sends a JSON body.
func (b *Browser) PostJSON(target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return b.Do(req)
}

// Cookie returns a stored cookie by name.
func (b *Browser) Cookie(name string) (*http.Cookie, bool) {
	c, ok := b.cookies[name]
	return c, ok
}
