package domain

import "time"

type Workspace struct {
	UUID string `json:"uuid"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Project struct {
	UUID string `json:"uuid"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Repository struct {
	UUID     string   `json:"uuid"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	FullName string   `json:"full_name"`
	Project  *Project `json:"project,omitempty"`
}

type Pipeline struct {
	UUID        string         `json:"uuid"`
	BuildNumber int64          `json:"build_number"`
	State       PipelineState  `json:"state"`
	Target      PipelineTarget `json:"target"`
	CreatedOn   time.Time      `json:"created_on"`
	CompletedOn *time.Time     `json:"completed_on,omitempty"`
}

// PipelineState.Name is one of PENDING, IN_PROGRESS, COMPLETED.
// Type is e.g. "pipeline_state_in_progress_paused" while waiting for a manual step.
type PipelineState struct {
	Name   string          `json:"name"`
	Type   *string         `json:"type,omitempty"`
	Result *PipelineResult `json:"result,omitempty"`
	Stage  *PipelineStage  `json:"stage,omitempty"`
}

// PipelineResult.Name is one of SUCCESSFUL, FAILED, STOPPED, EXPIRED, ERROR.
type PipelineResult struct {
	Name string `json:"name"`
}

type PipelineStage struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

type PipelineTarget struct {
	RefType *string `json:"ref_type,omitempty"`
	RefName *string `json:"ref_name,omitempty"`
}

type PipelineStep struct {
	UUID  string     `json:"uuid"`
	Name  *string    `json:"name,omitempty"`
	State *StepState `json:"state,omitempty"`
}

type StepState struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

func (p Pipeline) Branch() string {
	if p.Target.RefName == nil {
		return ""
	}
	return *p.Target.RefName
}

type Credentials struct {
	Username    string
	AppPassword string
}

// MonitoredPipeline is a target chosen by the user. Identity is (workspace, repo_slug, branch).
type MonitoredPipeline struct {
	Workspace   string `yaml:"workspace" json:"workspace"`
	ProjectKey  string `yaml:"project_key,omitempty" json:"project_key,omitempty"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`
	RepoSlug    string `yaml:"repo_slug" json:"repo_slug"`
	RepoName    string `yaml:"repo_name,omitempty" json:"repo_name"`
	Branch      string `yaml:"branch,omitempty" json:"branch,omitempty"`
}

func (m MonitoredPipeline) SameTarget(o MonitoredPipeline) bool {
	return m.Workspace == o.Workspace && m.RepoSlug == o.RepoSlug && m.Branch == o.Branch
}

func (m MonitoredPipeline) DisplayName() string {
	if m.RepoName == "" {
		return m.RepoSlug
	}
	return m.RepoName
}

type Classification string

const (
	Healthy    Classification = "healthy"
	Failed     Classification = "failed"
	InProgress Classification = "in_progress"
	Paused     Classification = "paused"
	Unknown    Classification = "unknown"
)

// UnknownFailureReason is used wherever a failed target carries no recorded reason.
const UnknownFailureReason = "Unknown"

type PipelineStatusInfo struct {
	Workspace      string         `json:"workspace"`
	ProjectKey     string         `json:"project_key,omitempty"`
	ProjectName    string         `json:"project_name,omitempty"`
	RepoSlug       string         `json:"repo_slug"`
	RepoName       string         `json:"repo_name"`
	Branch         string         `json:"branch,omitempty"`
	BuildNumber    int64          `json:"build_number,omitempty"`
	Classification Classification `json:"state"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	PipelineURL    string         `json:"pipeline_url,omitempty"`
	StageName      string         `json:"stage_name,omitempty"`
}

func (s PipelineStatusInfo) DisplayName() string {
	if s.RepoName == "" {
		return s.RepoSlug
	}
	return s.RepoName
}

// Group is the menu section a status belongs to: project name, else workspace.
func (s PipelineStatusInfo) Group() string {
	if s.ProjectName == "" {
		return s.Workspace
	}
	return s.ProjectName
}

type FailedPipelineInfo struct {
	Workspace     string `json:"workspace"`
	RepoSlug      string `json:"repo_slug"`
	RepoName      string `json:"repo_name"`
	Branch        string `json:"branch,omitempty"`
	BuildNumber   int64  `json:"build_number"`
	FailureReason string `json:"failure_reason"`
}

type OverallStatus struct {
	IsHealthy        bool                 `json:"is_healthy"`
	FailedPipelines  []FailedPipelineInfo `json:"failed_pipelines"`
	PipelineStatuses []PipelineStatusInfo `json:"pipeline_statuses"`
	InProgressCount  int                  `json:"in_progress_count"`
	TotalMonitored   int                  `json:"total_monitored"`
	LastChecked      string               `json:"last_checked"`
	CheckedAt        time.Time            `json:"checked_at"`
}

type NotificationKind string

const (
	NotificationFailed NotificationKind = "failed"
	NotificationFixed  NotificationKind = "fixed"
)

type NotificationEvent struct {
	Kind      NotificationKind `json:"kind"`
	Workspace string           `json:"workspace"`
	RepoSlug  string           `json:"repo_slug"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	URL       string           `json:"url,omitempty"`
	At        time.Time        `json:"at"`
}

type TrayState string

const (
	TrayHealthy      TrayState = "healthy"
	TrayFailed       TrayState = "failed"
	TrayUnconfigured TrayState = "unconfigured"
)

type MenuItem struct {
	ID             string         `json:"id"`
	Label          string         `json:"label"`
	Classification Classification `json:"state"`
	URL            string         `json:"url,omitempty"`
	StageName      string         `json:"stage_name,omitempty"`
	Enabled        bool           `json:"enabled"`
}

type MenuGroup struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// Menu is an empty Groups slice with an empty LastChecked when nothing is configured.
type Menu struct {
	Groups      []MenuGroup `json:"groups"`
	LastChecked string      `json:"last_checked,omitempty"`
}

type MenuLinks map[string]string
