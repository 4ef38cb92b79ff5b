package domain

import "context"

type PipelineClient interface {
	LatestPipeline(ctx context.Context, workspace, repoSlug, branch string) (*Pipeline, error)
	PipelineSteps(ctx context.Context, workspace, repoSlug, pipelineID string) ([]PipelineStep, error)
}

type ClientFactory func(c Credentials) PipelineClient

type Notifier interface {
	Notify(ctx context.Context, ev NotificationEvent) error
}

type StatusCache interface {
	Write(ctx context.Context, s OverallStatus) error
}

type Display interface {
	SetTrayState(s TrayState)
	SetTooltip(text string)
	SetMenu(m Menu, links MenuLinks)
}
