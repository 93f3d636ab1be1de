package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var usersInfoCmd = &cobra.Command{
	Use:   "info <user-id>",
	Short: "Show detailed information about a user store",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersInfo,
}

func runUsersInfo(cmd *cobra.Command, args []string) error {
	userID := args[0]
	ctx := context.Background()

	mgr, err := resolveManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	info, err := mgr.GetUserInfo(ctx, userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if usersJSONOutput {
		return printJSON(out, info)
	}

	fmt.Fprintf(out, "User:          %s\n", info.UserID)
	fmt.Fprintf(out, "Created:       %s\n", info.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Last Accessed: %s\n", info.LastAccessed.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Size:          %s\n", formatSize(info.SizeBytes))

	return nil
}
