package app

import (
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id-or-title>",
		Short: "Remove a book from your shelves",
		Long:  "Removes the book and its page progress and notes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, entry, err := findEntry(args[0])
			if err != nil {
				return err
			}
			if _, err := shelves.Remove(from, entry.ID); err != nil {
				return err
			}
			ok("removed %q from %s", entry.Title, from.Label())
			return nil
		},
	}
	return cmd
}
