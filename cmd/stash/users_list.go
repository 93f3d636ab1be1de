package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user stores",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mgr, err := resolveManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	users, err := mgr.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})

	if usersJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"users": users,
			"total": len(users),
		})
	}

	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No user stores found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "USER\tSIZE\tCREATED\tLAST ACCESSED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			u.UserID,
			formatSize(u.SizeBytes),
			u.Created.Format("2006-01-02 15:04"),
			u.LastAccessed.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}
