// Package bugzilla is the Bugzilla REST backend of the issue resolver.
package bugzilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/manifest"
)

const (
	defaultConnTimeoutSec = 20
	apiPathBug            = "/rest/bug/"
	showBugPath           = "/show_bug.cgi?id="
)

type bugResponse struct {
	Bugs []struct {
		ID      int    `json:"id"`
		Summary string `json:"summary"`
	} `json:"bugs"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Bugzilla queries the bug summaries from a Bugzilla server.
type Bugzilla struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Bugzilla {
	return &Bugzilla{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultConnTimeoutSec * time.Second},
	}
}

// WithHTTPClient replaces the underlying http client.
func (b *Bugzilla) WithHTTPClient(hc *http.Client) *Bugzilla {
	b.client = hc
	return b
}

func (b *Bugzilla) Name() string { return "Bugzilla" }
func (b *Bugzilla) Key() string  { return manifest.KeyBugzilla }
func (b *Bugzilla) Noun() string { return "bug" }

func (b *Bugzilla) URL(id string) string {
	return b.baseURL + showBugPath + id
}

// Summary returns the summary field of the bug.
func (b *Bugzilla) Summary(ctx context.Context, id string) (string, error) {
	u, err := url.Parse(b.baseURL + apiPathBug + url.PathEscape(id))
	if err != nil {
		return "", fmt.Errorf("malformed URL: %+v", err)
	}
	params := url.Values{}
	params.Add("include_fields", "id,summary")
	if b.apiKey != "" {
		params.Add("api_key", b.apiKey)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("couldn't create the request: %+v", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("couldn't call Bugzilla for bug %s: %+v", id, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("couldn't read response body. %+v", err)
	}

	out := bugResponse{}
	if err := json.Unmarshal(body, &out); err != nil && res.StatusCode < 300 {
		return "", fmt.Errorf("couldn't unmarshal response body: %+v", err)
	}
	if out.Error {
		return "", fmt.Errorf("bug %s: %s", id, out.Message)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("invalid status code: %d", res.StatusCode)
	}
	if len(out.Bugs) == 0 {
		return "", fmt.Errorf("bug %s not returned by Bugzilla", id)
	}
	return out.Bugs[0].Summary, nil
}
