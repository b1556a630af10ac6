package app

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <id-or-title> <page>",
		Short: "Record your current page in a book",
		Long: `Record the page you are on in a currently-reading book.

Examples:
  readtrack progress "Left Hand" 120
  readtrack progress note "Left Hand" "the Gethen chapters are stunning"
  readtrack progress goal 24
  readtrack progress stats`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("page must be a number, got %q", args[1])
			}

			_, entry, err := findEntry(args[0])
			if err != nil {
				return err
			}
			if err := shelves.UpdateProgress(entry.ID, page); err != nil {
				return err
			}

			pr, _, err := shelves.Progress(entry.ID)
			if err != nil {
				return err
			}
			if pr.TotalPages > 0 {
				ok("%q: page %d of %d (%d%%)", entry.Title, pr.CurrentPage, pr.TotalPages,
					pr.CurrentPage*100/pr.TotalPages)
			} else {
				ok("%q: page %d", entry.Title, pr.CurrentPage)
			}
			return nil
		},
	}

	cmd.AddCommand(newProgressNoteCmd(), newProgressGoalCmd(), newProgressStatsCmd())
	return cmd
}

func newProgressNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id-or-title> <text>",
		Short: "Attach a note to a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, entry, err := findEntry(args[0])
			if err != nil {
				return err
			}
			if err := shelves.AddNote(entry.ID, args[1]); err != nil {
				return err
			}
			ok("noted on %q", entry.Title)
			return nil
		},
	}
}

func newProgressGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal [count]",
		Short: "Show or set your yearly reading goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				goal, err := shelves.ReadingGoal()
				if err != nil {
					return err
				}
				if goal == 0 {
					fmt.Println("No goal set. Set one with: readtrack progress goal <count>")
					return nil
				}
				fmt.Printf("Goal: %d books this year\n", goal)
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("goal must be a non-negative number, got %q", args[0])
			}
			if err := shelves.SetReadingGoal(n); err != nil {
				return err
			}
			ok("goal set: %d books this year", n)
			return nil
		},
	}
}

func newProgressStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := shelves.Stats()
			if err != nil {
				return err
			}

			header("── Reading stats")
			fmt.Printf("  %-20s %d\n", "want to read:", st.WantToRead)
			fmt.Printf("  %-20s %d\n", "currently reading:", st.CurrentlyReading)
			fmt.Printf("  %-20s %d\n", "finished:", st.Finished)
			fmt.Printf("  %-20s %d\n", "finished this year:", st.FinishedThisYear)
			fmt.Printf("  %-20s %d\n", "pages this week:", st.PagesThisWeek)
			fmt.Printf("  %-20s %d days\n", "current streak:", st.CurrentStreak)
			if st.Goal > 0 {
				line := fmt.Sprintf("%d/%d (%d%%)", st.FinishedThisYear, st.Goal, st.GoalPercent)
				if st.GoalPercent >= 100 {
					line = color.GreenString(line + " — goal reached!")
				}
				fmt.Printf("  %-20s %s\n", "yearly goal:", line)
			}
			return nil
		},
	}
}
