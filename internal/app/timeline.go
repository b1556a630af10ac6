package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/readtrack/internal/pagelist"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// timelinePerPage matches the reading-history page length everywhere else
// in the UI.
const timelinePerPage = 10

func newTimelineCmd() *cobra.Command {
	var (
		year    int
		month   int
		page    int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show your finished books as a reading history",
		Long: `Show finished books newest first, grouped by the month you finished
them, with total pages and average reading time.

Examples:
  readtrack timeline
  readtrack timeline --year 2025
  readtrack timeline --year 2025 --month 3
  readtrack timeline --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := shelf.TimelineFilter{Year: year}
			if month != 0 {
				if month < 1 || month > 12 {
					return fmt.Errorf("month must be 1-12, got %d", month)
				}
				filter.Month = time.Month(month)
			}

			entries, err := shelves.Timeline(filter)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Println("No finished books in that range yet.")
				return nil
			}

			st := shelf.SummarizeTimeline(entries)
			header("── Reading history  (%d books, %d pages)", st.Books, st.Pages)
			if st.AvgDays > 0 {
				fmt.Printf("  %s\n", color.HiBlackString("average read time: %d days", st.AvgDays))
			}

			total := pagelist.TotalPages(len(entries), timelinePerPage)
			if page < 1 {
				page = 1
			}
			if page > total {
				page = total
			}

			lastPeriod := ""
			for _, e := range pagelist.Slice(entries, page, timelinePerPage) {
				end, _ := time.Parse("2006-01-02", e.Reading.EndDate)
				if period := end.Format("January 2006"); period != lastPeriod {
					fmt.Println()
					header("%s", period)
					lastPeriod = period
				}
				line := "  " + e.Title
				if e.Author != "" {
					line += " — " + color.CyanString(e.Author)
				}
				line += "  " + color.HiBlackString("finished %s", e.Reading.EndDate)
				if e.PageCount > 0 {
					line += color.HiBlackString(", %dp", e.PageCount)
				}
				fmt.Println(line)
			}

			if page < total {
				fmt.Printf("\npage %d of %d — next: readtrack timeline --page %d\n", page, total, page+1)
			} else if total > 1 {
				fmt.Printf("\npage %d of %d\n", page, total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Only books finished in this year")
	cmd.Flags().IntVar(&month, "month", 0, "Only books finished in this month (1-12)")
	cmd.Flags().IntVar(&page, "page", 1, "History page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
