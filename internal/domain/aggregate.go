package domain

import "time"

const LastCheckedLayout = "15:04:05"

// BuildOverallStatus aggregates per-target statuses. The input slice is kept
// as-is and in order; only Failed entries affect health.
func BuildOverallStatus(statuses []PipelineStatusInfo, checkedAt time.Time) OverallStatus {
	failed := make([]FailedPipelineInfo, 0)
	inProgress := 0

	for _, s := range statuses {
		switch s.Classification {
		case Failed:
			reason := s.FailureReason
			if reason == "" {
				reason = UnknownFailureReason
			}
			failed = append(failed, FailedPipelineInfo{
				Workspace:     s.Workspace,
				RepoSlug:      s.RepoSlug,
				RepoName:      s.RepoName,
				Branch:        s.Branch,
				BuildNumber:   s.BuildNumber,
				FailureReason: reason,
			})
		case InProgress:
			inProgress++
		}
	}

	all := make([]PipelineStatusInfo, len(statuses))
	copy(all, statuses)

	return OverallStatus{
		IsHealthy:        len(failed) == 0,
		FailedPipelines:  failed,
		PipelineStatuses: all,
		InProgressCount:  inProgress,
		TotalMonitored:   len(statuses),
		LastChecked:      checkedAt.Format(LastCheckedLayout),
		CheckedAt:        checkedAt,
	}
}
