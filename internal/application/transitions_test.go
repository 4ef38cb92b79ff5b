package application

import (
	"testing"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(cs ...domain.Classification) domain.OverallStatus {
	var in []domain.PipelineStatusInfo
	for i, c := range cs {
		in = append(in, domain.PipelineStatusInfo{
			Workspace:      "acme",
			RepoSlug:       string(rune('a' + i)),
			Classification: c,
		})
	}
	return domain.BuildOverallStatus(in, time.Now())
}

func TestDetectTransitions(t *testing.T) {
	cases := []struct {
		name     string
		from, to domain.Classification
		want     []domain.NotificationKind
	}{
		{"healthy to failed", domain.Healthy, domain.Failed, []domain.NotificationKind{domain.NotificationFailed}},
		{"unknown to failed", domain.Unknown, domain.Failed, []domain.NotificationKind{domain.NotificationFailed}},
		{"failed to failed", domain.Failed, domain.Failed, nil},
		{"failed to healthy", domain.Failed, domain.Healthy, []domain.NotificationKind{domain.NotificationFixed}},
		{"failed to paused", domain.Failed, domain.Paused, nil},
		{"failed to running", domain.Failed, domain.InProgress, nil},
		{"failed to unknown", domain.Failed, domain.Unknown, nil},
		{"healthy to healthy", domain.Healthy, domain.Healthy, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := snapshot(tc.from)
			evs := DetectTransitions(&prev, snapshot(tc.to), time.Now())

			var kinds []domain.NotificationKind
			for _, ev := range evs {
				kinds = append(kinds, ev.Kind)
			}
			assert.Equal(t, tc.want, kinds)
		})
	}
}

func TestDetectTransitions_FirstCycleIsSilent(t *testing.T) {
	assert.Empty(t, DetectTransitions(nil, snapshot(domain.Failed), time.Now()))
}

func TestDetectTransitions_MatchesByIdentityNotPosition(t *testing.T) {
	prev := domain.BuildOverallStatus([]domain.PipelineStatusInfo{
		{Workspace: "acme", RepoSlug: "api", Classification: domain.Healthy},
		{Workspace: "acme", RepoSlug: "web", Classification: domain.Failed},
	}, time.Now())
	next := domain.BuildOverallStatus([]domain.PipelineStatusInfo{
		{Workspace: "acme", RepoSlug: "web", RepoName: "Website", Classification: domain.Healthy, PipelineURL: "u"},
		{Workspace: "acme", RepoSlug: "api", Classification: domain.Healthy},
		{Workspace: "acme", RepoSlug: "new", Classification: domain.Failed},
	}, time.Now())

	evs := DetectTransitions(&prev, next, time.Now())
	require.Len(t, evs, 1)
	assert.Equal(t, domain.NotificationFixed, evs[0].Kind)
	assert.Equal(t, "web", evs[0].RepoSlug)
	assert.Equal(t, "Website is now healthy", evs[0].Message)
	assert.Equal(t, "u", evs[0].URL)
}

func TestStatusChanged(t *testing.T) {
	a := snapshot(domain.Healthy, domain.InProgress)
	b := snapshot(domain.Healthy, domain.InProgress)
	b.LastChecked = "23:59:59"
	b.PipelineStatuses[1].StageName = "ignored"

	assert.True(t, StatusChanged(nil, a))
	assert.False(t, StatusChanged(&a, b))

	c := snapshot(domain.Healthy, domain.Paused)
	assert.True(t, StatusChanged(&a, c))

	d := snapshot(domain.Healthy)
	assert.True(t, StatusChanged(&a, d))

	e := snapshot(domain.Failed, domain.InProgress)
	assert.True(t, StatusChanged(&a, e))
}
