package cli

import (
	"github.com/spf13/cobra"
)

func newCommentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible comments",
		Long:  "List every comment written by a member of your group.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentList()
		},
	}
}

func runCommentList() error {
	comments, err := newAPIClient().ListComments()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(comments)
	}

	return printCommentTable(comments)
}
