package bitbucket_http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "alice", "s3cret", 2*time.Second)
}

func pipelinesJSON(branches ...string) string {
	var items []string
	for i, b := range branches {
		items = append(items, fmt.Sprintf(`{
			"uuid": "{00000000-0000-0000-0000-00000000000%d}",
			"build_number": %d,
			"created_on": "2024-05-01T10:0%d:00.000000+00:00",
			"state": {"name": "COMPLETED", "type": "pipeline_state_completed", "result": {"name": "SUCCESSFUL"}},
			"target": {"ref_type": "branch", "ref_name": %q}
		}`, i, 100-i, 9-i, b))
	}
	return `{"page": 1, "size": 3, "pagelen": 20, "next": "https://example/next", "values": [` + strings.Join(items, ",") + `]}`
}

func TestClient_SendsBasicAuth(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		assert.Equal(t, "/workspaces", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("pagelen"))
		_, _ = w.Write([]byte(`{"values": [{"uuid": "{w}", "slug": "acme", "name": "Acme"}]}`))
	})

	ws, err := c.ListWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, "acme", ws[0].Slug)
}

func TestClient_ListRepositoriesByProject(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/acme", r.URL.Path)
		assert.Equal(t, "-updated_on", r.URL.Query().Get("sort"))
		assert.Equal(t, `project.key="WEB"`, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"values": [{"uuid": "{r}", "slug": "site", "name": "Site", "full_name": "acme/site", "project": {"uuid": "{p}", "key": "WEB", "name": "Web"}}]}`))
	})

	repos, err := c.ListRepositories(context.Background(), "acme", "WEB")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	require.NotNil(t, repos[0].Project)
	assert.Equal(t, "WEB", repos[0].Project.Key)
}

func TestClient_ListProjectsIgnoresNextPage(t *testing.T) {
	calls := 0
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"values": [{"uuid": "{p}", "key": "K", "name": "N"}], "next": "https://example/page2"}`))
	})

	ps, err := c.ListProjects(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	assert.Equal(t, 1, calls)
}

func TestClient_LatestPipelineBranchFilter(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/acme/site/pipelines/", r.URL.Path)
		assert.Equal(t, "-created_on", r.URL.Query().Get("sort"))
		assert.Equal(t, "20", r.URL.Query().Get("pagelen"))
		_, _ = w.Write([]byte(pipelinesJSON("A", "A", "B")))
	})
	ctx := context.Background()

	p, err := c.LatestPipeline(ctx, "acme", "site", "B")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(98), p.BuildNumber)

	p, err = c.LatestPipeline(ctx, "acme", "site", "")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.BuildNumber)

	p, err = c.LatestPipeline(ctx, "acme", "site", "C")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestClient_LatestPipelineNone(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": []}`))
	})

	p, err := c.LatestPipeline(context.Background(), "acme", "site", "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestClient_PipelineStepsUsesBracedID(t *testing.T) {
	const id = "6c0b3c7e-0f53-4d8a-9d0e-2a3b4c5d6e7f"
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/acme/site/pipelines/{"+id+"}/steps/", r.URL.Path)
		_, _ = w.Write([]byte(`{"values": [{"uuid": "{s}", "name": "Deploy", "state": {"name": "PENDING", "type": "pipeline_step_state_pending"}}]}`))
	})

	for _, in := range []string{id, "{" + id + "}"} {
		steps, err := c.PipelineSteps(context.Background(), "acme", "site", in)
		require.NoError(t, err)
		require.Len(t, steps, 1)
		assert.True(t, steps[0].IsPending())
	}
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnauthorized, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrAuthenticationFailed) }},
		{http.StatusTooManyRequests, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrRateLimited) }},
		{http.StatusNotFound, func(t *testing.T, err error) {
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Contains(t, nf.Resource, "/workspaces")
		}},
		{http.StatusBadGateway, func(t *testing.T, err error) {
			var ae *APIError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, http.StatusBadGateway, ae.Status)
			assert.Equal(t, "upstream down", ae.Body)
		}},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("upstream down"))
			})
			_, err := c.ListWorkspaces(context.Background())
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, "alice", "s3cret", 50*time.Millisecond)

	_, err := c.ListWorkspaces(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestClient_ValidateCredentials(t *testing.T) {
	ok := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": []}`))
	})
	valid, err := ok.ValidateCredentials(context.Background())
	require.NoError(t, err)
	assert.True(t, valid)

	denied := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	valid, err = denied.ValidateCredentials(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)

	limited := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err = limited.ValidateCredentials(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}
