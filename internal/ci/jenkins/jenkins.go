// Package jenkins is a small client of the Jenkins JSON API covering what the
// status report needs: the job list, the last completed build of a job and the
// identity of the calling user.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultConnTimeoutSec       = 30
	defaultMaxIdleConns         = 100
	defaultMaxConnsPerHost      = 100
	defaultMaxIddleConnsPerHost = 100

	apiPathJobs   = "/api/json"
	apiPathWhoAmI = "/me/api/json"
	versionHeader = "X-Jenkins"
)

// ErrNoCompletedBuild is returned by Snapshot when the job never completed a build.
var ErrNoCompletedBuild = errors.New("job has no completed build")

// Job is an entry of the server job list.
type Job struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type jobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// BuildRef points to a build of a job.
type BuildRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

type jobInfoResponse struct {
	URL                string    `json:"url"`
	LastCompletedBuild *BuildRef `json:"lastCompletedBuild"`
}

type buildInfoResponse struct {
	Result *string `json:"result"`
}

type whoAmIResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Property []struct {
		Address string `json:"address,omitempty"`
	} `json:"property"`
}

// User is the Jenkins account the client authenticates as.
type User struct {
	ID       string
	FullName string
	Email    string
}

// BuildSnapshot is the state of the last completed build of a job.
type BuildSnapshot struct {
	JobName     string
	JobURL      string
	BuildNumber int
	BuildURL    string
	// Result is the raw build result; nil while Jenkins reports no result.
	Result *string
}

// Client is the Jenkins API client.
type Client struct {
	baseURL  string
	username string
	token    string
	client   *http.Client
}

// NewClient creates a client for the server at baseURL, setting the http
// attributes to improve the connection reuse across the per-job calls.
func NewClient(baseURL, username, token string) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = defaultMaxIdleConns
	t.MaxConnsPerHost = defaultMaxConnsPerHost
	t.MaxIdleConnsPerHost = defaultMaxIddleConnsPerHost

	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		token:    token,
		client: &http.Client{
			Timeout:   defaultConnTimeoutSec * time.Second,
			Transport: t,
		},
	}
}

// WithHTTPClient replaces the underlying http client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// ListJobs returns the jobs in the order the server lists them.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	out := jobsResponse{}
	if _, err := c.get(ctx, apiPathJobs, url.Values{"tree": {"jobs[name,url]"}}, &out); err != nil {
		return nil, errors.Wrap(err, "couldn't list jobs")
	}
	return out.Jobs, nil
}

// Snapshot fetches the last completed build of a job.
func (c *Client) Snapshot(ctx context.Context, name string) (*BuildSnapshot, error) {
	info := jobInfoResponse{}
	if _, err := c.get(ctx, jobPath(name)+apiPathJobs, nil, &info); err != nil {
		return nil, errors.Wrapf(err, "couldn't get job info for %s", name)
	}
	if info.LastCompletedBuild == nil {
		return nil, errors.Wrapf(ErrNoCompletedBuild, "job %s", name)
	}

	build := buildInfoResponse{}
	path := fmt.Sprintf("%s/%d%s", jobPath(name), info.LastCompletedBuild.Number, apiPathJobs)
	if _, err := c.get(ctx, path, nil, &build); err != nil {
		return nil, errors.Wrapf(err, "couldn't get build info for %s #%d", name, info.LastCompletedBuild.Number)
	}

	return &BuildSnapshot{
		JobName:     name,
		JobURL:      info.URL,
		BuildNumber: info.LastCompletedBuild.Number,
		BuildURL:    info.LastCompletedBuild.URL,
		Result:      build.Result,
	}, nil
}

// WhoAmI returns the authenticated user. The e-mail is the last address
// found in the user properties, as Jenkins lists the mailer property last.
func (c *Client) WhoAmI(ctx context.Context) (*User, error) {
	out := whoAmIResponse{}
	if _, err := c.get(ctx, apiPathWhoAmI, nil, &out); err != nil {
		return nil, errors.Wrap(err, "couldn't get the authenticated user")
	}
	user := &User{ID: out.ID, FullName: out.FullName}
	for i := len(out.Property) - 1; i >= 0; i-- {
		if out.Property[i].Address != "" {
			user.Email = out.Property[i].Address
			break
		}
	}
	if user.Email == "" {
		return nil, errors.Errorf("user %q has no e-mail address configured", out.ID)
	}
	return user, nil
}

// Version returns the server version advertised in the X-Jenkins header.
func (c *Client) Version(ctx context.Context) (string, error) {
	header, err := c.get(ctx, apiPathJobs, url.Values{"tree": {"mode"}}, nil)
	if err != nil {
		return "", errors.Wrap(err, "couldn't get the server version")
	}
	v := header.Get(versionHeader)
	if v == "" {
		return "", errors.Errorf("missing %s header, is %s a Jenkins server?", versionHeader, c.baseURL)
	}
	return v, nil
}

// get calls the API path and decodes the JSON body into out when not nil.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) (http.Header, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("malformed URL: %+v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create the request: %+v", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't call URL %s: %+v", u.String(), err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read response body. %+v", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("invalid status code %d from %s", res.StatusCode, u.Path)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("couldn't unmarshal response body: %+v", err)
		}
	}
	return res.Header, nil
}

// jobPath builds the URL path of a job, supporting folder/job names.
func jobPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = "/job/" + url.PathEscape(p)
	}
	return strings.Join(parts, "")
}

// String implements fmt.Stringer for log messages.
func (s *BuildSnapshot) String() string {
	result := "<none>"
	if s.Result != nil {
		result = *s.Result
	}
	return s.JobName + " #" + strconv.Itoa(s.BuildNumber) + " " + result
}
