package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCommentRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove one of your comments",
		Long:    "Remove one of your comments together with its history.",
		Args:    cobra.ExactArgs(1),
		RunE:    runCommentRemove,
	}
}

func runCommentRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID("comment", args[0])
	if err != nil {
		return err
	}

	deleted, err := newAPIClient().DeleteComment(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      id,
			"deleted": deleted,
		})
	}

	if !deleted {
		fmt.Printf("Comment #%d does not exist.\n", id)
		return nil
	}
	fmt.Printf("Comment #%d removed.\n", id)
	return nil
}
