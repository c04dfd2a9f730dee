package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `add "text"`,
		Short: "Post a comment",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCommentAdd,
	}
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("comment text is required")
	}

	comm, err := newAPIClient().AddComment(text)
	if err != nil {
		return fmt.Errorf("adding comment: %w", err)
	}

	if isJSON() {
		return printJSON(comm)
	}

	fmt.Printf("Comment #%d added.\n  %s\n", comm.ID, comm.Content)
	return nil
}
