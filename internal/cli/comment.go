package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comment",
		Aliases: []string{"comments"},
		Short:   "Read and write comments",
		Long:    "List, show, add, edit and remove comments. Only comments written by members of your group are visible.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentList()
		},
	}

	cmd.AddCommand(
		newCommentListCmd(),
		newCommentShowCmd(),
		newCommentAddCmd(),
		newCommentEditCmd(),
		newCommentRemoveCmd(),
	)

	return cmd
}

func newCommentEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `edit <id> "text"`,
		Short: "Edit one of your comments",
		Long:  "Replace the content of one of your comments. The previous content is kept in the comment's history.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCommentEdit,
	}
}

func runCommentEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID("comment", args[0])
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("comment text is required")
	}

	comm, err := newAPIClient().EditComment(id, text)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(comm)
	}

	fmt.Printf("Comment #%d updated.\n  %s\n", comm.ID, comm.Content)
	return nil
}
