package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/readtrack/internal/openlibrary"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "info <work-id>",
		Short: "Show full details for a book",
		Long: `Show the detail view for a work: description, page count, ISBN,
publish date, and community ratings. Gaps in the catalog record are
filled from the first edition and, when a Google Books API key is
configured, from Google Books.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Loading.Timeout())
			defer cancel()

			d, err := svc.Details(ctx, workID(args[0]))
			if err != nil {
				if errors.Is(err, openlibrary.ErrNotFound) {
					return fmt.Errorf("no work found for %q", args[0])
				}
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			header("%s", d.Title)
			if d.Author != "" {
				fmt.Println(color.CyanString(d.Author))
			}
			fmt.Println()
			if d.PublishDate != "" {
				fmt.Printf("  %-12s %s\n", "published:", d.PublishDate)
			}
			if d.PageCount > 0 {
				fmt.Printf("  %-12s %d\n", "pages:", d.PageCount)
			}
			if d.ISBN != "" {
				fmt.Printf("  %-12s %s\n", "isbn:", d.ISBN)
			}
			if d.Ratings.Count > 0 {
				fmt.Printf("  %-12s %.1f/5 (%d ratings)\n", "rating:", d.Ratings.Average, d.Ratings.Count)
			}
			if len(d.Subjects) > 0 {
				fmt.Printf("  %-12s %s\n", "subjects:", color.CyanString("%v", d.Subjects))
			}
			if d.Description != "" {
				fmt.Printf("\n%s\n", d.Description)
			}

			if id, found, err := shelves.FindShelfOf(d.ID); err == nil && found {
				fmt.Println()
				ok("on your %s shelf", id.Label())
				if pr, has, err := shelves.Progress(d.ID); err == nil && has && pr.TotalPages > 0 {
					fmt.Printf("  progress: page %d of %d\n", pr.CurrentPage, pr.TotalPages)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
