// Package jira is the Jira backend of the issue resolver.
package jira

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"strings"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/pkg/errors"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/manifest"
)

const (
	defaultConnTimeoutSec = 20
	browsePath            = "/browse/"
)

// Options configures the connection to the Jira server.
type Options struct {
	// Certificate is a PEM CA bundle used to verify the server, when set.
	Certificate string
	// Token is a personal access token, sent as a bearer token when set.
	Token string
}

// Jira queries the ticket summaries from a Jira server.
type Jira struct {
	baseURL string
	client  *gojira.Client
}

// New creates the Jira client. Failing to set up the connection is fatal to
// a report run, so errors are returned instead of degraded.
func New(baseURL string, opts Options) (*Jira, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Certificate != "" {
		pem, err := os.ReadFile(opts.Certificate)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading certificate %s", opts.Certificate)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificate found in %s", opts.Certificate)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	hc := &http.Client{Timeout: defaultConnTimeoutSec * time.Second, Transport: transport}
	if opts.Token != "" {
		tp := gojira.BearerAuthTransport{Token: opts.Token, Transport: transport}
		hc = tp.Client()
		hc.Timeout = defaultConnTimeoutSec * time.Second
	}
	return NewWithHTTPClient(baseURL, hc)
}

// NewWithHTTPClient creates the Jira client on top of hc.
func NewWithHTTPClient(baseURL string, hc *http.Client) (*Jira, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	client, err := gojira.NewClient(hc, baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to Jira at %s", baseURL)
	}
	return &Jira{baseURL: baseURL, client: client}, nil
}

func (j *Jira) Name() string { return "Jira" }
func (j *Jira) Key() string  { return manifest.KeyJira }
func (j *Jira) Noun() string { return "ticket" }

func (j *Jira) URL(id string) string {
	return j.baseURL + browsePath + id
}

// Summary returns the summary field of the issue.
func (j *Jira) Summary(ctx context.Context, id string) (string, error) {
	issue, _, err := j.client.Issue.GetWithContext(ctx, id, &gojira.GetQueryOptions{Fields: "summary"})
	if err != nil {
		return "", errors.Wrapf(err, "couldn't get issue %s", id)
	}
	if issue == nil || issue.Fields == nil {
		return "", errors.Errorf("issue %s returned without fields", id)
	}
	return issue.Fields.Summary, nil
}
