// Package nse fetches option-chain data from the NSE public API,
// emulating the browser session the exchange's anti-bot gate expects.
package nse

import (
	"net/http"
	"sort"
	"strings"
)

// Session holds per-fetch transport state: a fixed set of browser-like
// headers plus cookies accumulated from upstream responses. A session is
// created fresh for each logical fetch operation and never shared between
// concurrent fetches.
type Session struct {
	cookies map[string]string
}

// Base headers presented on every request. The Referer matters: NSE
// rejects API calls that do not look like they came from its own pages.
var baseHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "gzip, deflate, br",
	"Referer":         "https://www.nseindia.com/option-chain",
	"Connection":      "keep-alive",
}

// NewSession creates a session with base headers and no cookies.
func NewSession() *Session {
	return &Session{cookies: make(map[string]string)}
}

// AbsorbResponse stores name=value pairs from any Set-Cookie entries in
// the response headers, overwriting existing names. Cookies accumulate
// monotonically over a session's lifetime.
func (s *Session) AbsorbResponse(h http.Header) {
	for _, sc := range h.Values("Set-Cookie") {
		// Only the name=value pair matters; attributes like Path and
		// Expires are irrelevant for this short-lived emulation.
		pair := sc
		if i := strings.Index(sc, ";"); i >= 0 {
			pair = sc[:i]
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s.cookies[name] = strings.TrimSpace(value)
	}
}

// CookieCount returns the number of stored cookies.
func (s *Session) CookieCount() int {
	return len(s.cookies)
}

// Apply sets the session's base headers and, when cookies are stored, a
// single joined Cookie header on the request.
func (s *Session) Apply(req *http.Request) {
	for name, value := range baseHeaders {
		req.Header.Set(name, value)
	}
	if cookie := s.cookieHeader(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
}

// cookieHeader joins all stored cookies as "name=value; name=value".
// Names are sorted so the header is deterministic.
func (s *Session) cookieHeader() string {
	if len(s.cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.cookies))
	for name := range s.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + s.cookies[name]
	}
	return strings.Join(parts, "; ")
}
