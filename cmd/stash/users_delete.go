package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/stash/internal/actor"
)

var deleteForce bool

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user store and all its data",
	Long:  "Permanently delete a user's store and all its data. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersDeleteCmd.Flags().BoolVar(&deleteForce, "force", false,
		"Skip confirmation prompt")
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	userID := args[0]
	ctx := context.Background()

	if err := actor.ValidateUserID(userID); err != nil {
		return err
	}

	mgr, err := resolveManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	// Interactive confirmation unless --force
	if !deleteForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will permanently delete all data for user %q.\n", userID)
		fmt.Fprint(errOut, "Type the user ID to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if strings.TrimSpace(input) != userID {
			fmt.Fprintln(errOut, "Aborted. User ID did not match.")
			return nil
		}
	}

	if err := mgr.DeleteUser(ctx, userID); err != nil {
		return err
	}

	if usersJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"user_id": userID,
			"deleted": true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %q\n", userID)
	return nil
}
