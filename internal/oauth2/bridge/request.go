// Package bridge adapts generic HTTP-shaped gateway events to an OAuth2
// protocol engine and turns the engine's verdicts into gateway authorization
// decisions. Only domain projections cross it; stored record shapes and
// password hashes never do.
package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Event is the HTTP-shaped request a gateway hands to the bridge. Bodies may
// arrive base64-encoded depending on the transport; Resource identifies what
// the caller is trying to reach and is echoed back on decisions.
type Event struct {
	Method          string
	Path            string
	Resource        string
	Headers         map[string]string
	Query           map[string]string
	Body            string
	IsBase64Encoded bool
}

// Request is a normalized Event: header names lowercased, body decoded, and
// form or JSON payloads parsed according to the content type.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
	Form    url.Values
	JSON    map[string]any
}

// NewRequest normalizes an Event. Header lookups downstream rely on the
// lowercased keys; gateways disagree on header casing.
func NewRequest(ev Event) (*Request, error) {
	req := &Request{
		Method:  ev.Method,
		Path:    ev.Path,
		Headers: make(map[string]string, len(ev.Headers)),
		Query:   ev.Query,
	}
	for name, value := range ev.Headers {
		req.Headers[strings.ToLower(name)] = value
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}
	req.Body = body

	if len(body) == 0 {
		return req, nil
	}

	contentType := req.Headers["content-type"]
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	switch contentType {
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse form body: %w", err)
		}
		req.Form = form
	case "application/json":
		if err := json.Unmarshal(body, &req.JSON); err != nil {
			return nil, fmt.Errorf("parse json body: %w", err)
		}
	}
	return req, nil
}

// FormValue returns the first form value for key, or "" when absent.
func (r *Request) FormValue(key string) string {
	if r.Form == nil {
		return ""
	}
	return r.Form.Get(key)
}

// BasicCredentials extracts a username and password from the request's
// Basic Authorization header. ok is false when the header is missing,
// malformed, or not Basic.
func (r *Request) BasicCredentials() (username, password string, ok bool) {
	auth := r.Headers["authorization"]
	const prefix = "Basic "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

// BearerToken extracts the opaque token from the request's Bearer
// Authorization header, or "" when absent.
func (r *Request) BearerToken() string {
	auth := r.Headers["authorization"]
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}
