package application

import (
	"fmt"
	"strings"

	"github.com/davarch/pipeline-watcher/internal/domain"
)

const (
	AppName = "pipeline-watcher"

	TooltipLoading       = AppName + " - Loading..."
	TooltipNotConfigured = AppName + " - Not configured"
	TooltipNoPipelines   = AppName + " - No pipelines selected"
	TooltipAuthRequired  = AppName + " - Auth required"

	maxTooltipFailures = 3
)

func TrayStateFor(s *domain.OverallStatus) domain.TrayState {
	switch {
	case s == nil:
		return domain.TrayUnconfigured
	case s.IsHealthy:
		return domain.TrayHealthy
	default:
		return domain.TrayFailed
	}
}

func Tooltip(s domain.OverallStatus) string {
	var b strings.Builder
	b.WriteString(AppName)

	if s.IsHealthy {
		fmt.Fprintf(&b, "\n%d pipeline(s) healthy", s.TotalMonitored)
		if s.InProgressCount > 0 {
			fmt.Fprintf(&b, "\n%d in progress", s.InProgressCount)
		}
	} else {
		fmt.Fprintf(&b, "\n%d pipeline(s) FAILED", len(s.FailedPipelines))

		names := make([]string, 0, maxTooltipFailures)
		for i, f := range s.FailedPipelines {
			if i == maxTooltipFailures {
				break
			}
			names = append(names, f.Workspace+"/"+f.RepoSlug)
		}
		b.WriteString("\n" + strings.Join(names, ", "))
		if extra := len(s.FailedPipelines) - maxTooltipFailures; extra > 0 {
			fmt.Fprintf(&b, " +%d more", extra)
		}
	}

	fmt.Fprintf(&b, "\nLast checked: %s", s.LastChecked)
	return b.String()
}

// BuildMenu groups statuses by project in order of first appearance. The
// returned links map item ids to pipeline pages; items without a link are
// disabled.
func BuildMenu(s *domain.OverallStatus) (domain.Menu, domain.MenuLinks) {
	links := make(domain.MenuLinks)
	if s == nil {
		return domain.Menu{Groups: []domain.MenuGroup{}}, links
	}

	var groups []domain.MenuGroup
	index := make(map[string]int)

	for i, p := range s.PipelineStatuses {
		title := p.Group()
		gi, ok := index[title]
		if !ok {
			gi = len(groups)
			index[title] = gi
			groups = append(groups, domain.MenuGroup{Title: strings.ToUpper(title)})
		}

		item := domain.MenuItem{
			ID:             fmt.Sprintf("pipeline_%d", i),
			Label:          "  " + p.DisplayName() + labelSuffix(p),
			Classification: p.Classification,
			URL:            p.PipelineURL,
			StageName:      p.StageName,
			Enabled:        p.PipelineURL != "",
		}
		if item.Enabled {
			links[item.ID] = p.PipelineURL
		}
		groups[gi].Items = append(groups[gi].Items, item)
	}

	if groups == nil {
		groups = []domain.MenuGroup{}
	}
	return domain.Menu{Groups: groups, LastChecked: s.LastChecked}, links
}

func labelSuffix(p domain.PipelineStatusInfo) string {
	switch p.Classification {
	case domain.Failed:
		return " - FAILED"
	case domain.InProgress:
		return " - running"
	case domain.Paused:
		stage := p.StageName
		if stage == "" {
			stage = domain.DefaultStageName
		}
		return " - (" + stage + ")"
	default:
		return ""
	}
}
