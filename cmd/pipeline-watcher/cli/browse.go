package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	browseJSON    bool
	reposProject  string
	pipelineLimit int
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List workspaces visible to the saved login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _, err := apiClient()
		if err != nil {
			return err
		}
		ws, err := api.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		if browseJSON {
			return printJSON(ws)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "SLUG\tNAME")
		for _, x := range ws {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", x.Slug, x.Name)
		}
		return w.Flush()
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects <workspace>",
	Short: "List projects in a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _, err := apiClient()
		if err != nil {
			return err
		}
		ps, err := api.ListProjects(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if browseJSON {
			return printJSON(ps)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tNAME")
		for _, p := range ps {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", p.Key, p.Name)
		}
		return w.Flush()
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos <workspace>",
	Short: "List repositories in a workspace, most recently updated first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _, err := apiClient()
		if err != nil {
			return err
		}
		rs, err := api.ListRepositories(cmd.Context(), args[0], reposProject)
		if err != nil {
			return err
		}
		if browseJSON {
			return printJSON(rs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "SLUG\tNAME\tPROJECT")
		for _, r := range rs {
			project := "-"
			if r.Project != nil {
				project = r.Project.Key
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Slug, r.Name, project)
		}
		return w.Flush()
	},
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines <workspace/repo>",
	Short: "Show recent pipelines of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		api, _, err := apiClient()
		if err != nil {
			return err
		}
		ps, err := api.ListPipelines(cmd.Context(), target.Workspace, target.RepoSlug, pipelineLimit)
		if err != nil {
			return err
		}
		if browseJSON {
			return printJSON(ps)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "BUILD\tBRANCH\tSTATE\tCLASS\tCREATED")
		for _, p := range ps {
			if target.Branch != "" && p.Branch() != target.Branch {
				continue
			}
			state := p.State.Name
			if p.State.Result != nil {
				state += "/" + p.State.Result.Name
			}
			_, _ = fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n",
				p.BuildNumber, p.Branch(), state, domain.Classify(p), humanize.Time(p.CreatedOn))
		}
		return w.Flush()
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{workspacesCmd, projectsCmd, reposCmd, pipelinesCmd} {
		c.Flags().BoolVar(&browseJSON, "json", false, "print JSON")
		rootCmd.AddCommand(c)
	}
	reposCmd.Flags().StringVar(&reposProject, "project", "", "only repositories in this project key")
	pipelinesCmd.Flags().IntVar(&pipelineLimit, "limit", 10, "number of pipelines to fetch (max 100)")
}
