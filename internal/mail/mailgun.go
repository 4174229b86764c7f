// Package mail delivers notification email through the Mailgun messages API.
package mail

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type Client struct {
	Domain  string
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(domain, apiKey string) *Client {
	return &Client{
		Domain:  domain,
		APIKey:  apiKey,
		BaseURL: "https://api.mailgun.net",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Send(ctx context.Context, to, subject, text, html string) error {
	form := url.Values{}
	form.Set("from", fmt.Sprintf("Stores API <postmaster@%s>", c.Domain))
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", text)
	form.Set("html", html)

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.BaseURL, c.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail: mailgun returned %d: %s", resp.StatusCode, body)
	}

	return nil
}

func (c *Client) SendRegistrationEmail(ctx context.Context, email, username string) error {
	var html strings.Builder
	if err := templates.ExecuteTemplate(&html, "action.html", map[string]string{"Username": username}); err != nil {
		return fmt.Errorf("mail: render template: %w", err)
	}

	return c.Send(ctx, email,
		"Successfully signed up!",
		fmt.Sprintf("Hi %s, you have registered!", username),
		html.String(),
	)
}
