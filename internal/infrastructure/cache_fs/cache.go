package cache_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/davarch/pipeline-watcher/internal/domain"
)

type FSCache struct {
	path string
}

func New(path string) *FSCache { return &FSCache{path: path} }

func (c *FSCache) Write(_ context.Context, s domain.OverallStatus) error {
	if c.path == "" {
		return errors.New("cache path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	type failed struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}
	type out struct {
		Class      string                      `json:"class"`
		Text       string                      `json:"text"`
		Tooltip    string                      `json:"tooltip"`
		Healthy    bool                        `json:"healthy"`
		Failed     []failed                    `json:"failed"`
		InProgress int                         `json:"in_progress"`
		Total      int                         `json:"total"`
		Checked    string                      `json:"last_checked"`
		Retrieved  int64                       `json:"retrieved"`
		Pipelines  []domain.PipelineStatusInfo `json:"pipelines"`
	}

	o := out{
		Class:      "healthy",
		Healthy:    s.IsHealthy,
		Failed:     make([]failed, 0, len(s.FailedPipelines)),
		InProgress: s.InProgressCount,
		Total:      s.TotalMonitored,
		Checked:    s.LastChecked,
		Retrieved:  s.CheckedAt.Unix(),
		Pipelines:  s.PipelineStatuses,
	}
	for _, f := range s.FailedPipelines {
		o.Failed = append(o.Failed, failed{Name: f.Workspace + "/" + f.RepoSlug, Reason: f.FailureReason})
	}
	if !s.IsHealthy {
		o.Class = "failed"
	}
	o.Text, o.Tooltip = summary(s)

	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func summary(s domain.OverallStatus) (text, tooltip string) {
	okCount := s.TotalMonitored - len(s.FailedPipelines)
	text = "CI " + strconv.Itoa(okCount) + "/" + strconv.Itoa(s.TotalMonitored)
	tooltip = "Last checked: " + s.LastChecked
	if s.InProgressCount > 0 {
		tooltip = strconv.Itoa(s.InProgressCount) + " in progress\n" + tooltip
	}
	return text, tooltip
}
