package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"go.uber.org/zap"
)

const webBaseURL = "https://bitbucket.org"

type PollUseCase struct {
	log     *zap.Logger
	state   *State
	clients domain.ClientFactory
	display domain.Display
	cache   domain.StatusCache
	notes   []domain.Notifier

	pubMu sync.Mutex
	shown *domain.OverallStatus

	now func() time.Time
}

func NewPollUseCase(l *zap.Logger, state *State, clients domain.ClientFactory, display domain.Display, cache domain.StatusCache, notes ...domain.Notifier) *PollUseCase {
	return &PollUseCase{
		log: l, state: state, clients: clients, display: display, cache: cache, notes: notes,
		now: time.Now,
	}
}

// CheckOnce returns nil when nothing is configured. Safe to call concurrently.
func (uc *PollUseCase) CheckOnce(ctx context.Context) *domain.OverallStatus {
	creds, targets := uc.state.Targets()

	switch {
	case creds == nil:
		uc.showIdle(TooltipNotConfigured)
		return nil
	case len(targets) == 0:
		uc.showIdle(TooltipNoPipelines)
		return nil
	case creds.AppPassword == "":
		uc.log.Warn("no app password found")
		uc.showIdle(TooltipAuthRequired)
		return nil
	}

	uc.log.Info("checking pipelines", zap.Int("count", len(targets)))

	api := uc.clients(*creds)
	statuses := make([]domain.PipelineStatusInfo, 0, len(targets))
	for _, t := range targets {
		statuses = append(statuses, uc.checkTarget(ctx, api, t))
	}

	now := uc.now()
	st := domain.BuildOverallStatus(statuses, now)

	prev := uc.state.swapStatus(st)

	for _, ev := range DetectTransitions(prev, st, now) {
		for _, n := range uc.notes {
			if err := n.Notify(ctx, ev); err != nil {
				uc.log.Warn("notify failed",
					zap.String("kind", string(ev.Kind)),
					zap.String("workspace", ev.Workspace),
					zap.String("repo", ev.RepoSlug),
					zap.Error(err),
				)
			}
		}
	}

	uc.publish()

	if uc.cache != nil {
		if err := uc.cache.Write(ctx, st); err != nil {
			uc.log.Warn("status cache write failed", zap.Error(err))
		}
	}

	uc.log.Debug("check complete",
		zap.Bool("healthy", st.IsHealthy),
		zap.Int("failed", len(st.FailedPipelines)),
		zap.Int("in_progress", st.InProgressCount),
	)
	return &st
}

// publish renders the newest stored snapshot, not this cycle's, so an older
// cycle finishing late cannot leave its menu on screen.
func (uc *PollUseCase) publish() {
	uc.pubMu.Lock()
	defer uc.pubMu.Unlock()

	latest := uc.state.LastStatus()
	if latest == nil {
		return
	}

	uc.display.SetTrayState(TrayStateFor(latest))
	uc.display.SetTooltip(Tooltip(*latest))

	if StatusChanged(uc.shown, *latest) {
		menu, links := BuildMenu(latest)
		uc.display.SetMenu(menu, links)
		uc.shown = latest
	}
}

func (uc *PollUseCase) showIdle(tooltip string) {
	uc.display.SetTrayState(domain.TrayUnconfigured)
	uc.display.SetTooltip(tooltip)
}

// checkTarget never fails: API errors become an Unknown entry carrying the error text.
func (uc *PollUseCase) checkTarget(ctx context.Context, api domain.PipelineClient, t domain.MonitoredPipeline) domain.PipelineStatusInfo {
	info := domain.PipelineStatusInfo{
		Workspace:   t.Workspace,
		ProjectKey:  t.ProjectKey,
		ProjectName: t.ProjectName,
		RepoSlug:    t.RepoSlug,
		RepoName:    t.RepoName,
		Branch:      t.Branch,
	}

	p, err := api.LatestPipeline(ctx, t.Workspace, t.RepoSlug, t.Branch)
	if err != nil {
		uc.log.Error("pipeline check failed",
			zap.String("workspace", t.Workspace),
			zap.String("repo", t.RepoSlug),
			zap.Error(err),
		)
		info.Classification = domain.Unknown
		info.FailureReason = "Error: " + err.Error()
		return info
	}

	if p == nil {
		uc.log.Debug("no pipelines found",
			zap.String("workspace", t.Workspace),
			zap.String("repo", t.RepoSlug),
		)
		info.Classification = domain.Unknown
		info.PipelineURL = fmt.Sprintf("%s/%s/%s/pipelines", webBaseURL, t.Workspace, t.RepoSlug)
		return info
	}

	if info.Branch == "" {
		info.Branch = p.Branch()
	}
	info.BuildNumber = p.BuildNumber
	info.PipelineURL = fmt.Sprintf("%s/%s/%s/pipelines/results/%d", webBaseURL, t.Workspace, t.RepoSlug, p.BuildNumber)
	info.Classification = domain.Classify(*p)

	switch info.Classification {
	case domain.Failed:
		info.FailureReason = p.State.Result.Name
	case domain.Paused:
		info.StageName = domain.DefaultStageName
		steps, err := api.PipelineSteps(ctx, t.Workspace, t.RepoSlug, p.UUID)
		if err != nil {
			uc.log.Debug("pipeline steps unavailable",
				zap.String("workspace", t.Workspace),
				zap.String("repo", t.RepoSlug),
				zap.Error(err),
			)
			break
		}
		info.StageName = domain.PendingStageName(steps)
	}

	return info
}
