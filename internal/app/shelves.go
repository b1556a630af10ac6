package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newShelvesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "shelves",
		Short: "Show your shelves and reading stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				out := map[string][]shelf.Entry{}
				for _, id := range shelf.All() {
					entries, err := shelves.List(id)
					if err != nil {
						return err
					}
					out[string(id)] = entries
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			empty := true
			for _, id := range shelf.All() {
				entries, err := shelves.List(id)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					continue
				}
				empty = false

				header("── %s  (%d)", id.Label(), len(entries))
				for _, e := range entries {
					line := "  " + e.Title
					if e.Author != "" {
						line += " — " + color.CyanString(e.Author)
					}
					fmt.Println(line)
					if id == shelf.CurrentlyReading {
						if pr, has, err := shelves.Progress(e.ID); err == nil && has && pr.TotalPages > 0 {
							pct := pr.CurrentPage * 100 / pr.TotalPages
							fmt.Printf("    %s\n", color.HiBlackString("page %d/%d (%d%%)", pr.CurrentPage, pr.TotalPages, pct))
						}
					}
					if id == shelf.Finished && e.Reading != nil && e.Reading.EndDate != "" {
						fmt.Printf("    %s\n", color.HiBlackString("finished %s", e.Reading.EndDate))
					}
				}
				fmt.Println()
			}

			if empty {
				fmt.Println("No books shelved yet. Try: readtrack search <title>")
				return nil
			}

			st, err := shelves.Stats()
			if err != nil {
				return err
			}
			if st.Goal > 0 {
				header("── %d finished this year — goal %d (%d%%)", st.FinishedThisYear, st.Goal, st.GoalPercent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
