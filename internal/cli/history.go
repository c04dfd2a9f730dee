package cli

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse comment edit history",
		Long:  "List the edit history of comments visible to your group.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every visible history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList()
		},
	}, &cobra.Command{
		Use:   "show <id>",
		Short: "Show one history entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	})

	return cmd
}

func runHistoryList() error {
	entries, err := newAPIClient().ListHistory()
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(entries)
	}
	return printHistoryTable(entries)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("history", args[0])
	if err != nil {
		return err
	}

	h, err := newAPIClient().GetHistory(id)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(h)
	}
	printHistory(h)
	return nil
}
