package display_term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/davarch/pipeline-watcher/internal/domain"
)

// Display is a terminal stand-in for a tray icon. It keeps the latest menu
// and its link table so item clicks can be resolved by id.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	tray    domain.TrayState
	tooltip string
	menu    domain.Menu
	links   domain.MenuLinks
}

func New(out io.Writer) *Display {
	return &Display{
		out:   out,
		tray:  domain.TrayUnconfigured,
		menu:  domain.Menu{Groups: []domain.MenuGroup{}},
		links: domain.MenuLinks{},
	}
}

func (d *Display) SetTrayState(s domain.TrayState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s == d.tray {
		return
	}
	d.tray = s
	if d.out != nil {
		_, _ = fmt.Fprintln(d.out, RenderTray(s))
	}
}

func (d *Display) SetTooltip(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tooltip = text
}

func (d *Display) SetMenu(m domain.Menu, links domain.MenuLinks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.menu = m
	d.links = links
	if d.out != nil {
		_, _ = fmt.Fprintln(d.out, RenderMenu(m))
	}
}

func (d *Display) Tray() domain.TrayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tray
}

func (d *Display) Tooltip() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tooltip
}

func (d *Display) Menu() domain.Menu {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.menu
}

func (d *Display) URLFor(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.links[id]
	return u, ok
}

func RenderTray(s domain.TrayState) string {
	return lipgloss.NewStyle().Foreground(trayColor(s)).Render("●") + " " + headerStyle.Render(strings.ToUpper(string(s)))
}

func RenderMenu(m domain.Menu) string {
	if len(m.Groups) == 0 {
		return dimStyle.Render("No pipelines configured")
	}

	var lines []string
	for i, g := range m.Groups {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, headerStyle.Render(g.Title))
		for _, it := range g.Items {
			dot := lipgloss.NewStyle().Foreground(colorFor(it.Classification)).Render("●")
			label := it.Label
			if !it.Enabled {
				label = dimStyle.Render(label)
			}
			lines = append(lines, dot+label)
		}
	}
	if m.LastChecked != "" {
		lines = append(lines, "", dimStyle.Render("Last checked: "+m.LastChecked))
	}
	return strings.Join(lines, "\n")
}
