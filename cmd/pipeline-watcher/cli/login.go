package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davarch/pipeline-watcher/internal/infrastructure/bitbucket_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate and save Bitbucket username and app password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginUsername == "" {
			return fmt.Errorf("--username is required")
		}

		password, err := resolvePassword(loginPassword, os.Stdin, os.Stderr)
		if err != nil {
			return err
		}

		eff, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		api := bitbucket_http.New(eff.Bitbucket.BaseURL, loginUsername, password, eff.Bitbucket.Timeout)
		ok, err := api.ValidateCredentials(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not validate credentials (network or service problem): %w", err)
		}
		if !ok {
			return fmt.Errorf("invalid credentials: check username and app password")
		}

		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return err
		}
		cfg.Username = loginUsername
		if err := config.SaveAppPassword(filepath.Dir(cfgPath), password); err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("logged in as %s\n", loginUsername)
		return nil
	},
}

// resolvePassword prefers the flag, then BITBUCKET_APP_PASSWORD, then a line from in.
func resolvePassword(flag string, in io.Reader, prompt io.Writer) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if pw := os.Getenv("BITBUCKET_APP_PASSWORD"); pw != "" {
		return pw, nil
	}

	_, _ = fmt.Fprint(prompt, "App password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read app password: %w", err)
	}
	pw := strings.TrimSpace(line)
	if pw == "" {
		return "", errors.New("empty app password")
	}
	return pw, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", os.Getenv("BITBUCKET_USERNAME"), "Bitbucket username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "app password; visible in the process list, prefer stdin or BITBUCKET_APP_PASSWORD")

	rootCmd.AddCommand(loginCmd)
}
