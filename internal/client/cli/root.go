// Package cli implements the command-line client for the file sharing
// server.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/secureshare/internal/client/api"
)

var serverURL string

var RootCmd = &cobra.Command{
	Use:   "secureshare",
	Short: "SecureShare - encrypted file storage with verified share links",
	Long: `SecureShare stores your files encrypted on the server and lets you share
them through time-limited links. A recipient opening a link must enter a
verification code that the server sends to you, the owner, so nobody
downloads your files without your say-so.

Usage:
  secureshare <command> [flags]

Run 'secureshare help <command>' for details on a specific command.
`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8800", "server base URL")

	RootCmd.AddCommand(registerCmd)
	RootCmd.AddCommand(loginCmd)
	RootCmd.AddCommand(profileCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(uploadCmd)
	RootCmd.AddCommand(downloadCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(shareCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// effectiveServer prefers an explicit --server flag, then the saved session,
// then the default.
func effectiveServer() string {
	if RootCmd.PersistentFlags().Changed("server") {
		return serverURL
	}
	if s, err := loadSession(); err == nil && s.Server != "" {
		return s.Server
	}
	return serverURL
}

func newClient() *api.Client {
	return api.New(effectiveServer())
}

// newAuthedClient returns a client carrying the saved session token.
func newAuthedClient() (*api.Client, error) {
	s, err := loadSession()
	if err != nil || s.AccessToken == "" {
		return nil, fmt.Errorf("not logged in, run 'secureshare login' first")
	}
	c := api.New(effectiveServer())
	c.SetToken(s.AccessToken)
	return c, nil
}

// promptPassword reads a password from stdin. Used when the --password flag
// is not given.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
