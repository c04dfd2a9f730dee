package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/user"
)

const timeLayout = "2006-01-02 15:04"

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printComment prints a single comment in text format.
func printComment(c *comment.Comment) {
	fmt.Printf("Comment #%d\n", c.ID)
	fmt.Printf("  Author:   user #%d\n", c.UserID)
	fmt.Printf("  Created:  %s\n", c.CreatedAt.Local().Format(timeLayout))
	fmt.Printf("  Updated:  %s\n", formatUpdated(c.UpdatedAt))
	fmt.Printf("  Content:  %s\n", c.Content)
}

// printCommentTable prints a list of comments as a formatted table.
func printCommentTable(comments []*comment.Comment) error {
	if len(comments) == 0 {
		fmt.Println("No comments.")
		return nil
	}

	rows := make([][]interface{}, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, []interface{}{
			c.ID, c.UserID, c.CreatedAt.Local().Format(timeLayout), formatUpdated(c.UpdatedAt), truncate(c.Content, 50),
		})
	}
	if err := printTable([]string{"ID", "AUTHOR", "CREATED", "UPDATED", "CONTENT"}, rows); err != nil {
		return err
	}

	fmt.Printf("\nTotal: %d comments\n", len(comments))
	return nil
}

// printHistory prints a single history entry in text format.
func printHistory(h *comment.History) {
	fmt.Printf("History #%d (comment #%d)\n", h.ID, h.CommentID)
	fmt.Printf("  When:  %s\n", h.Timestamp.Local().Format(timeLayout))
	fmt.Printf("  Old:   %s\n", h.OldValue)
	fmt.Printf("  New:   %s\n", h.NewValue)
}

// printHistoryTable prints history entries as a formatted table.
func printHistoryTable(entries []*comment.History) error {
	if len(entries) == 0 {
		fmt.Println("No history.")
		return nil
	}

	rows := make([][]interface{}, 0, len(entries))
	for _, h := range entries {
		rows = append(rows, []interface{}{
			h.ID, h.CommentID, h.Timestamp.Local().Format(timeLayout), truncate(h.OldValue, 30), truncate(h.NewValue, 30),
		})
	}
	return printTable([]string{"ID", "COMMENT", "WHEN", "OLD", "NEW"}, rows)
}

// printUser prints a single user in text format.
func printUser(u *user.User) {
	fmt.Printf("User #%d\n", u.ID)
	fmt.Printf("  Username: %s\n", u.Username)
	fmt.Printf("  Group:    %s\n", u.Group)
	fmt.Printf("  Joined:   %s\n", u.CreatedAt.Local().Format(timeLayout))
}

// printUserTable prints users as a formatted table.
func printUserTable(users []*user.User) error {
	if len(users) == 0 {
		fmt.Println("No users.")
		return nil
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{u.ID, u.Username, u.Group, u.CreatedAt.Local().Format(timeLayout)})
	}
	return printTable([]string{"ID", "USERNAME", "GROUP", "JOINED"}, rows)
}

// printTable writes a header, a dashed separator and rows through a tabwriter.
func printTable(header []string, rows [][]interface{}) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, "\t")); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// formatUpdated renders an edit timestamp, or "-" for a comment never edited.
func formatUpdated(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
