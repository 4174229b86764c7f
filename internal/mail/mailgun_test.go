package mail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		Domain:  "mg.example.com",
		APIKey:  "key-test",
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: time.Second},
	}
}

func TestSendRegistrationEmail(t *testing.T) {
	var gotPath, gotUser, gotKey string
	var gotForm map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotKey, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostForm.Get("from"),
			"to":      r.PostForm.Get("to"),
			"subject": r.PostForm.Get("subject"),
			"text":    r.PostForm.Get("text"),
			"html":    r.PostForm.Get("html"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	require.NoError(t, c.SendRegistrationEmail(context.Background(), "alice@example.com", "alice"))

	assert.Equal(t, "/v3/mg.example.com/messages", gotPath)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-test", gotKey)
	assert.Equal(t, "alice@example.com", gotForm["to"])
	assert.Equal(t, "Successfully signed up!", gotForm["subject"])
	assert.Contains(t, gotForm["from"], "mg.example.com")
	assert.Contains(t, gotForm["text"], "alice")
	assert.Contains(t, gotForm["html"], "alice")
}

func TestSend_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	err := c.Send(context.Background(), "alice@example.com", "subj", "text", "<p>html</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTemplateEscapesUsername(t *testing.T) {
	var gotHTML string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotHTML = r.PostForm.Get("html")
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	require.NoError(t, c.SendRegistrationEmail(context.Background(), "a@example.com", "<script>x</script>"))
	assert.NotContains(t, gotHTML, "<script>")
}
