package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/spf13/cobra"
)

func newMoveCmd() *cobra.Command {
	var (
		to    string
		start string
		end   string
		page  int
	)

	cmd := &cobra.Command{
		Use:   "move <id-or-title>",
		Short: "Move a book between shelves",
		Long: `Move a shelved book to another shelf. Moving to reading records a
start date (default today); moving to finished records an end date and
counts toward your yearly goal. Dates are YYYY-MM-DD and may not be in
the future.

Examples:
  readtrack move "Left Hand" --to reading
  readtrack move ol:OL45883W --to reading --start 2026-08-01 --page 40
  readtrack move "Left Hand" --to finished --end 2026-08-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := shelf.Parse(to)
			if err != nil {
				return err
			}

			from, entry, err := findEntry(args[0])
			if err != nil {
				return err
			}
			if from == target {
				warn("%q is already on %s", entry.Title, target.Label())
				return nil
			}

			details := book.ReadingDetails{StartDate: start, EndDate: end, CurrentPage: page}

			var moved bool
			switch target {
			case shelf.CurrentlyReading:
				moved, err = shelves.MoveToReading(from, entry.ID, details)
			case shelf.Finished:
				moved, err = shelves.MoveToFinished(from, entry.ID, details)
			default:
				moved, err = shelves.Move(from, target, entry.ID)
			}
			if err != nil {
				var ierr *shelf.IntegrityError
				if errors.As(err, &ierr) {
					return fmt.Errorf("shelf state conflict for %q: %w (no changes made)", entry.Title, err)
				}
				return err
			}
			if !moved {
				return fmt.Errorf("%q is not on %s", entry.Title, from.Label())
			}

			ok("moved %q: %s → %s", entry.Title, from.Label(), target.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination shelf: want, reading, finished")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today when moving to reading)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default today when moving to finished)")
	cmd.Flags().IntVar(&page, "page", 0, "Current page when moving to reading")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
