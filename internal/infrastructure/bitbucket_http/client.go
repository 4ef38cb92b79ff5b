package bitbucket_http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://api.bitbucket.org/2.0"
	DefaultTimeout = 30 * time.Second

	pageLen             = 100
	latestPipelineLimit = 20
)

// Client is safe for concurrent use; it keeps nothing but the auth header.
type Client struct {
	baseUrl string
	auth    string
	hc      *http.Client
}

func New(baseUrl, username, appPassword string, timeout time.Duration) *Client {
	if baseUrl == "" {
		baseUrl = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))

	return &Client{
		baseUrl: trimSlash(baseUrl),
		auth:    "Basic " + creds,
		hc:      &http.Client{Transport: tr, Timeout: timeout},
	}
}

func Factory(baseUrl string, timeout time.Duration) domain.ClientFactory {
	return func(c domain.Credentials) domain.PipelineClient {
		return New(baseUrl, c.Username, c.AppPassword, timeout)
	}
}

type page[T any] struct {
	Values []T     `json:"values"`
	Page   *int    `json:"page,omitempty"`
	Size   *int    `json:"size,omitempty"`
	Next   *string `json:"next,omitempty"`
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	q := url.Values{"pagelen": {strconv.Itoa(pageLen)}}
	return getValues[domain.Workspace](ctx, c, "/workspaces", q)
}

func (c *Client) ListProjects(ctx context.Context, workspace string) ([]domain.Project, error) {
	q := url.Values{"pagelen": {strconv.Itoa(pageLen)}}
	return getValues[domain.Project](ctx, c, "/workspaces/"+url.PathEscape(workspace)+"/projects", q)
}

// ListRepositories lists repositories most recently updated first. A non-empty
// projectKey restricts the list to that project.
func (c *Client) ListRepositories(ctx context.Context, workspace, projectKey string) ([]domain.Repository, error) {
	q := url.Values{
		"pagelen": {strconv.Itoa(pageLen)},
		"sort":    {"-updated_on"},
	}
	if projectKey != "" {
		q.Set("q", fmt.Sprintf("project.key=%q", projectKey))
	}
	return getValues[domain.Repository](ctx, c, "/repositories/"+url.PathEscape(workspace), q)
}

func (c *Client) ListPipelines(ctx context.Context, workspace, repoSlug string, limit int) ([]domain.Pipeline, error) {
	if limit <= 0 || limit > pageLen {
		limit = pageLen
	}
	q := url.Values{
		"sort":    {"-created_on"},
		"pagelen": {strconv.Itoa(limit)},
	}
	path := "/repositories/" + url.PathEscape(workspace) + "/" + url.PathEscape(repoSlug) + "/pipelines/"
	return getValues[domain.Pipeline](ctx, c, path, q)
}

// LatestPipeline returns the newest pipeline, restricted to branch when set.
// Only the most recent pipelines are inspected, so an old branch may yield nil.
func (c *Client) LatestPipeline(ctx context.Context, workspace, repoSlug, branch string) (*domain.Pipeline, error) {
	list, err := c.ListPipelines(ctx, workspace, repoSlug, latestPipelineLimit)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if branch == "" || list[i].Branch() == branch {
			p := list[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (c *Client) PipelineSteps(ctx context.Context, workspace, repoSlug, pipelineID string) ([]domain.PipelineStep, error) {
	path := "/repositories/" + url.PathEscape(workspace) + "/" + url.PathEscape(repoSlug) +
		"/pipelines/" + url.PathEscape(bracedID(pipelineID)) + "/steps/"
	return getValues[domain.PipelineStep](ctx, c, path, nil)
}

// ValidateCredentials returns false only when the server rejects the
// credentials; any other failure is returned as an error.
func (c *Client) ValidateCredentials(ctx context.Context) (bool, error) {
	_, err := c.ListWorkspaces(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAuthenticationFailed):
		return false, nil
	default:
		return false, err
	}
}

func getValues[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	var p page[T]
	if err := c.get(ctx, path, q, &p); err != nil {
		return nil, err
	}
	if p.Values == nil {
		return []T{}, nil
	}
	return p.Values, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseUrl + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Err: fmt.Errorf("decode %s: %w", path, err)}
		}
		return nil
	case http.StatusUnauthorized:
		return ErrAuthenticationFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return &NotFoundError{Resource: u}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
}

// bracedID accepts "{uuid}" or a bare uuid and returns the braced form the API
// expects. Anything that is not a uuid is passed through.
func bracedID(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return "{" + u.String() + "}"
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
