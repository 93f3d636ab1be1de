package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/stash/internal/actor"
	"github.com/hyperengineering/stash/internal/config"
)

var (
	usersRootOverride string
	usersJSONOutput   bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user stores",
	Long:  "List, inspect, and delete per-user stores without running the server.",
}

func init() {
	usersCmd.PersistentFlags().StringVar(&usersRootOverride, "root", "",
		"Users root path (overrides config and STASH_USERS_ROOT)")
	usersCmd.PersistentFlags().BoolVar(&usersJSONOutput, "json", false,
		"Output in JSON format")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersInfoCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	rootCmd.AddCommand(usersCmd)
}

// resolveManager creates an actor.Manager from config with an optional
// --root override. Admin commands never require the API key to be set.
func resolveManager() (*actor.Manager, error) {
	rootPath := usersRootOverride
	if rootPath == "" {
		usersCfg, err := config.LoadUsersConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		rootPath = usersCfg.RootPath
	}

	return actor.NewManager(rootPath)
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
