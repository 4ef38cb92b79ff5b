package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/bitbucket_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	addName        string
	addProjectKey  string
	addProjectName string
	addLookup      bool
)

var addCmd = &cobra.Command{
	Use:   "add <workspace/repo[@branch]>",
	Short: "Start monitoring a repository's pipelines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		target.RepoName = addName
		target.ProjectKey = addProjectKey
		target.ProjectName = addProjectName

		if addLookup {
			eff, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := lookupRepository(cmd.Context(), eff, &target); err != nil {
				return err
			}
		}

		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return err
		}

		if err := cfg.AddPipeline(target); err != nil {
			if errors.Is(err, config.ErrDuplicatePipeline) {
				fmt.Printf("no change (%s already monitored)\n", formatTarget(target))
				return nil
			}
			return err
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("added: %s\n", formatTarget(target))
		return nil
	},
}

// lookupRepository fills names and project from the API, keeping anything set by flags.
func lookupRepository(ctx context.Context, cfg config.Config, target *domain.MonitoredPipeline) error {
	creds := cfg.Credentials()
	if creds == nil || creds.AppPassword == "" {
		return fmt.Errorf("--lookup needs a saved login: run `pipeline-watcher login` first")
	}
	api := bitbucket_http.New(cfg.Bitbucket.BaseURL, creds.Username, creds.AppPassword, cfg.Bitbucket.Timeout)

	repos, err := api.ListRepositories(ctx, target.Workspace, target.ProjectKey)
	if err != nil {
		return err
	}
	for _, r := range repos {
		if r.Slug != target.RepoSlug {
			continue
		}
		if target.RepoName == "" {
			target.RepoName = r.Name
		}
		if r.Project != nil {
			if target.ProjectKey == "" {
				target.ProjectKey = r.Project.Key
			}
			if target.ProjectName == "" {
				target.ProjectName = r.Project.Name
			}
		}
		return nil
	}
	return fmt.Errorf("repository %s/%s not found in the first page of results", target.Workspace, target.RepoSlug)
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "display name (defaults to the repo slug)")
	addCmd.Flags().StringVar(&addProjectKey, "project-key", "", "project key")
	addCmd.Flags().StringVar(&addProjectName, "project-name", "", "project name used to group the menu")
	addCmd.Flags().BoolVar(&addLookup, "lookup", false, "fill names and project from the Bitbucket API")

	rootCmd.AddCommand(addCmd)
}
