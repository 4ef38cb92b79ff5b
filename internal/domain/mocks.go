package domain

import (
	"context"
	"sync"
)

type MockBitbucket struct {
	mu sync.Mutex

	Pipelines map[string]*Pipeline
	Errors    map[string]error
	Steps     []PipelineStep
	StepsErr  error
	Called    int
}

func mockKey(workspace, repoSlug string) string { return workspace + "/" + repoSlug }

func (m *MockBitbucket) Set(workspace, repoSlug string, p *Pipeline, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Pipelines == nil {
		m.Pipelines = make(map[string]*Pipeline)
	}
	if m.Errors == nil {
		m.Errors = make(map[string]error)
	}
	m.Pipelines[mockKey(workspace, repoSlug)] = p
	m.Errors[mockKey(workspace, repoSlug)] = err
}

func (m *MockBitbucket) LatestPipeline(ctx context.Context, workspace, repoSlug, branch string) (*Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called++
	k := mockKey(workspace, repoSlug)
	if err := m.Errors[k]; err != nil {
		return nil, err
	}
	return m.Pipelines[k], nil
}

func (m *MockBitbucket) PipelineSteps(ctx context.Context, workspace, repoSlug, pipelineID string) ([]PipelineStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StepsErr != nil {
		return nil, m.StepsErr
	}
	return m.Steps, nil
}

func (m *MockBitbucket) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called
}

type MockNotifier struct {
	mu     sync.Mutex
	Events []NotificationEvent
	Err    error
}

func (n *MockNotifier) Notify(ctx context.Context, ev NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, ev)
	return n.Err
}

func (n *MockNotifier) Sent() []NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationEvent, len(n.Events))
	copy(out, n.Events)
	return out
}

type MockCache struct {
	mu        sync.Mutex
	Snapshots []OverallStatus
	Err       error
}

func (c *MockCache) Write(ctx context.Context, s OverallStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Snapshots = append(c.Snapshots, s)
	return nil
}

func (c *MockCache) Written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Snapshots)
}

type MockDisplay struct {
	mu      sync.Mutex
	Tray    TrayState
	Tooltip string
	Menus   []Menu
	Links   MenuLinks

	// BeforeMenu, when set, runs at the start of every SetMenu call.
	BeforeMenu func()
}

func (d *MockDisplay) SetTrayState(s TrayState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Tray = s
}

func (d *MockDisplay) SetTooltip(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Tooltip = text
}

func (d *MockDisplay) SetMenu(m Menu, links MenuLinks) {
	if d.BeforeMenu != nil {
		d.BeforeMenu()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Menus = append(d.Menus, m)
	d.Links = links
}

func (d *MockDisplay) LastMenu() Menu {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Menus) == 0 {
		return Menu{}
	}
	return d.Menus[len(d.Menus)-1]
}

func (d *MockDisplay) MenuUpdates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Menus)
}
