package application

import (
	"testing"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrayStateFor(t *testing.T) {
	assert.Equal(t, domain.TrayUnconfigured, TrayStateFor(nil))

	ok := snapshot(domain.Healthy, domain.Unknown)
	assert.Equal(t, domain.TrayHealthy, TrayStateFor(&ok))

	bad := snapshot(domain.Failed)
	assert.Equal(t, domain.TrayFailed, TrayStateFor(&bad))
}

func TestTooltip_Healthy(t *testing.T) {
	s := snapshot(domain.Healthy, domain.InProgress)
	s.LastChecked = "10:00:00"

	assert.Equal(t, "pipeline-watcher\n2 pipeline(s) healthy\n1 in progress\nLast checked: 10:00:00", Tooltip(s))
}

func TestTooltip_FailedTruncatesNames(t *testing.T) {
	s := snapshot(domain.Failed, domain.Failed, domain.Failed, domain.Failed, domain.Failed)
	s.LastChecked = "10:00:00"

	want := "pipeline-watcher\n5 pipeline(s) FAILED\nacme/a, acme/b, acme/c +2 more\nLast checked: 10:00:00"
	assert.Equal(t, want, Tooltip(s))
}

func TestBuildMenu_GroupsByProject(t *testing.T) {
	s := domain.BuildOverallStatus([]domain.PipelineStatusInfo{
		{Workspace: "acme", ProjectName: "Web", RepoSlug: "site", RepoName: "Site", Classification: domain.Failed, PipelineURL: "u0"},
		{Workspace: "acme", RepoSlug: "tools", Classification: domain.Unknown},
		{Workspace: "acme", ProjectName: "Web", RepoSlug: "cdn", RepoName: "CDN", Classification: domain.Paused, StageName: "Prod", PipelineURL: "u2"},
		{Workspace: "acme", ProjectName: "Web", RepoSlug: "blog", Classification: domain.InProgress, PipelineURL: "u3"},
	}, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	menu, links := BuildMenu(&s)

	require.Len(t, menu.Groups, 2)
	assert.Equal(t, "WEB", menu.Groups[0].Title)
	assert.Equal(t, "ACME", menu.Groups[1].Title)
	assert.Equal(t, "08:00:00", menu.LastChecked)

	web := menu.Groups[0].Items
	require.Len(t, web, 3)
	assert.Equal(t, "pipeline_0", web[0].ID)
	assert.Equal(t, "  Site - FAILED", web[0].Label)
	assert.Equal(t, "pipeline_2", web[1].ID)
	assert.Equal(t, "  CDN - (Prod)", web[1].Label)
	assert.Equal(t, "  blog - running", web[2].Label)

	tools := menu.Groups[1].Items[0]
	assert.Equal(t, "  tools", tools.Label)
	assert.False(t, tools.Enabled)

	assert.Equal(t, domain.MenuLinks{"pipeline_0": "u0", "pipeline_2": "u2", "pipeline_3": "u3"}, links)
}

func TestBuildMenu_NilStatus(t *testing.T) {
	menu, links := BuildMenu(nil)
	assert.Empty(t, menu.Groups)
	assert.Empty(t, links)
}
