package application

import (
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
)

// DetectTransitions compares two snapshots target by target, matched on
// (workspace, repo_slug). Targets without a previous entry never notify.
func DetectTransitions(prev *domain.OverallStatus, next domain.OverallStatus, at time.Time) []domain.NotificationEvent {
	if prev == nil {
		return nil
	}

	var out []domain.NotificationEvent
	for _, cur := range next.PipelineStatuses {
		old, ok := findStatus(prev.PipelineStatuses, cur.Workspace, cur.RepoSlug)
		if !ok {
			continue
		}

		wasFailed := old.Classification == domain.Failed
		isFailed := cur.Classification == domain.Failed

		switch {
		case !wasFailed && isFailed:
			out = append(out, event(domain.NotificationFailed, cur, at))
		case wasFailed && cur.Classification == domain.Healthy:
			out = append(out, event(domain.NotificationFixed, cur, at))
		}
	}
	return out
}

// StatusChanged decides whether the menu needs rebuilding. Only the kind of
// each entry counts; reasons, links and timestamps are ignored.
func StatusChanged(prev *domain.OverallStatus, next domain.OverallStatus) bool {
	if prev == nil {
		return true
	}
	if prev.IsHealthy != next.IsHealthy || len(prev.PipelineStatuses) != len(next.PipelineStatuses) {
		return true
	}
	for i := range next.PipelineStatuses {
		if prev.PipelineStatuses[i].Classification != next.PipelineStatuses[i].Classification {
			return true
		}
	}
	return false
}

func findStatus(list []domain.PipelineStatusInfo, workspace, repoSlug string) (domain.PipelineStatusInfo, bool) {
	for _, s := range list {
		if s.Workspace == workspace && s.RepoSlug == repoSlug {
			return s, true
		}
	}
	return domain.PipelineStatusInfo{}, false
}

func event(kind domain.NotificationKind, s domain.PipelineStatusInfo, at time.Time) domain.NotificationEvent {
	ev := domain.NotificationEvent{
		Kind:      kind,
		Workspace: s.Workspace,
		RepoSlug:  s.RepoSlug,
		URL:       s.PipelineURL,
		At:        at,
	}
	switch kind {
	case domain.NotificationFailed:
		ev.Title = "Pipeline Failed"
		ev.Message = s.DisplayName() + " has failed"
	case domain.NotificationFixed:
		ev.Title = "Pipeline Fixed"
		ev.Message = s.DisplayName() + " is now healthy"
	}
	return ev
}
