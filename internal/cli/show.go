package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCommentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a comment and its history",
		Long:  "Show full details for a comment, including every recorded edit.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCommentShow,
	}
}

func runCommentShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("comment", args[0])
	if err != nil {
		return err
	}

	c := newAPIClient()

	comm, err := c.GetComment(id)
	if err != nil {
		return err
	}
	history, err := c.CommentHistory(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"comment":   comm,
			"histories": history,
		})
	}

	printComment(comm)
	fmt.Println()
	if len(history) > 0 {
		fmt.Printf("History (%d):\n", len(history))
		return printHistoryTable(history)
	}
	fmt.Println("Never edited.")
	return nil
}
