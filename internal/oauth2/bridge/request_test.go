package bridge

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequestNormalizesHeaders(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(Event{
		Method: "POST",
		Path:   "/oauth/token",
		Headers: map[string]string{
			"Content-Type":  "application/x-www-form-urlencoded",
			"AUTHORIZATION": "Bearer tok",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", req.Headers["content-type"])
	require.Equal(t, "tok", req.BearerToken())
}

func TestNewRequestDecodesBase64FormBody(t *testing.T) {
	t.Parallel()

	body := "grant_type=password&username=alice&password=s3cret"
	req, err := NewRequest(Event{
		Method: "POST",
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded; charset=utf-8",
		},
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, "password", req.FormValue("grant_type"))
	require.Equal(t, "alice", req.FormValue("username"))
	require.Equal(t, "s3cret", req.FormValue("password"))
}

func TestNewRequestParsesJSONBody(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(Event{
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    `{"grant_type":"client_credentials","scope":"read"}`,
	})
	require.NoError(t, err)
	require.Equal(t, "client_credentials", req.JSON["grant_type"])
}

func TestNewRequestRejectsBadBase64(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(Event{Body: "not-base64!!!", IsBase64Encoded: true})
	require.Error(t, err)
}

func TestBasicCredentials(t *testing.T) {
	t.Parallel()

	basic := func(payload string) *Request {
		req, err := NewRequest(Event{Headers: map[string]string{
			"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(payload)),
		}})
		require.NoError(t, err)
		return req
	}

	username, password, ok := basic("alice:s3cret").BasicCredentials()
	require.True(t, ok)
	require.Equal(t, "alice", username)
	require.Equal(t, "s3cret", password)

	// Passwords may contain colons; the first one splits.
	username, password, ok = basic("alice:pa:ss").BasicCredentials()
	require.True(t, ok)
	require.Equal(t, "alice", username)
	require.Equal(t, "pa:ss", password)

	_, _, ok = basic("no-separator").BasicCredentials()
	require.False(t, ok)

	req, err := NewRequest(Event{Headers: map[string]string{"Authorization": "Bearer tok"}})
	require.NoError(t, err)
	_, _, ok = req.BasicCredentials()
	require.False(t, ok)
}
