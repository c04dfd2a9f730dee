package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignupCmd() *cobra.Command {
	var username, group string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long:  "Create an account on the server. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd, username, group)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted if empty)")
	cmd.Flags().StringVarP(&group, "group", "g", "", "group name (prompted if empty)")

	return cmd
}

func runSignup(cmd *cobra.Command, username, group string) error {
	p := newPrompter(cmd)

	username, err := p.valueOr(username, "Username: ")
	if err != nil {
		return err
	}
	group, err = p.valueOr(group, "Group: ")
	if err != nil {
		return err
	}
	password, err := p.ask("Password: ")
	if err != nil {
		return err
	}
	if username == "" || password == "" || group == "" {
		return fmt.Errorf("username, password and group are required")
	}

	u, err := newAPIClient().Signup(username, password, group)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(u)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Account %q created in group %q. Run 'bloggu login' to get a token.\n", u.Username, u.Group)
	return nil
}
