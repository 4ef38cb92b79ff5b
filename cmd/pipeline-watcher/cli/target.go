package cli

import (
	"fmt"
	"strings"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/bitbucket_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
)

// parseTarget accepts "workspace/repo" or "workspace/repo@branch".
func parseTarget(s string) (domain.MonitoredPipeline, error) {
	var m domain.MonitoredPipeline

	path, branch, _ := strings.Cut(s, "@")
	ws, repo, ok := strings.Cut(path, "/")
	if !ok || ws == "" || repo == "" || strings.Contains(repo, "/") {
		return m, fmt.Errorf("invalid target %q: want workspace/repo[@branch]", s)
	}

	m.Workspace = ws
	m.RepoSlug = repo
	m.Branch = branch
	return m, nil
}

func formatTarget(m domain.MonitoredPipeline) string {
	s := m.Workspace + "/" + m.RepoSlug
	if m.Branch != "" {
		s += "@" + m.Branch
	}
	return s
}

func matchTargets(list []domain.MonitoredPipeline, prefix string) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		if t := formatTarget(p); strings.HasPrefix(t, prefix) {
			out = append(out, t)
		}
	}
	return out
}

// apiClient builds a client from the saved login.
func apiClient() (*bitbucket_http.Client, config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfg, err
	}

	creds := cfg.Credentials()
	if creds == nil || creds.AppPassword == "" {
		return nil, cfg, fmt.Errorf("not logged in: run `pipeline-watcher login` first")
	}

	return bitbucket_http.New(cfg.Bitbucket.BaseURL, creds.Username, creds.AppPassword, cfg.Bitbucket.Timeout), cfg, nil
}
