package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/bloggu/internal/user"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users or manage your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList()
		},
	}

	cmd.AddCommand(newUsersMeCmd(), newUsersUpdateCmd(), newUsersDeleteCmd())
	return cmd
}

func runUsersList() error {
	users, err := newAPIClient().ListUsers()
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(users)
	}
	return printUserTable(users)
}

func newUsersMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newAPIClient().Me()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(u)
			}
			printUser(u)
			return nil
		},
	}
}

func newUsersUpdateCmd() *cobra.Command {
	var username, group string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your username or group",
		Long:  "Change your username and/or group. Changing the username invalidates your stored token; log in again afterwards.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req user.UpdateRequest
			if cmd.Flags().Changed("username") {
				req.Username = &username
			}
			if cmd.Flags().Changed("group") {
				req.Group = &group
			}
			if req.Username == nil && req.Group == nil {
				return fmt.Errorf("nothing to update: pass --username and/or --group")
			}

			u, err := newAPIClient().UpdateMe(req)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(u)
			}
			fmt.Println("✓ Account updated.")
			printUser(u)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "new username")
	cmd.Flags().StringVarP(&group, "group", "g", "", "new group")
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and all your comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := newAPIClient().DeleteMe()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]bool{"deleted": deleted})
			}
			if deleted {
				fmt.Println("✓ Account deleted.")
			}
			return runLogout()
		},
	}
}

// parseID parses a positive numeric identifier argument.
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, arg)
	}
	return id, nil
}
