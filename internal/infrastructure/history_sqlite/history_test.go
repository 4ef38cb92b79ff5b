package history_sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordsNewestFirst(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Notify(ctx, domain.NotificationEvent{
		Kind: domain.NotificationFailed, Workspace: "acme", RepoSlug: "api",
		Title: "Pipeline Failed", Message: "api has failed", URL: "u1", At: base,
	}))
	require.NoError(t, s.Notify(ctx, domain.NotificationEvent{
		Kind: domain.NotificationFixed, Workspace: "acme", RepoSlug: "api",
		Title: "Pipeline Fixed", Message: "api is now healthy", At: base.Add(time.Minute),
	}))

	evs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, domain.NotificationFixed, evs[0].Kind)
	assert.Equal(t, domain.NotificationFailed, evs[1].Kind)
	assert.Equal(t, "u1", evs[1].URL)
	assert.True(t, evs[1].At.Equal(base))

	evs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}
