// Package breach checks candidate passwords against the Pwned Passwords
// corpus using the k-anonymity range API: only the first five characters of
// the SHA-1 digest ever leave the process.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Checker interface {
	IsBreached(ctx context.Context, password string) (bool, error)
}

type PwnedClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewPwnedClient() *PwnedClient {
	return &PwnedClient{
		BaseURL: "https://api.pwnedpasswords.com",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *PwnedClient) IsBreached(ctx context.Context, password string) (bool, error) {
	digest := fmt.Sprintf("%X", sha1.Sum([]byte(password)))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/range/"+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("breach check: %w", err)
	}

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("breach check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("breach check: unexpected status %d", resp.StatusCode)
	}

	// Response lines look like "SUFFIX:COUNT".
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		got, _, found := strings.Cut(line, ":")
		if found && strings.EqualFold(got, suffix) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("breach check: %w", err)
	}

	return false, nil
}
